// Package lexical extracts surface signals from raw certificate text:
// verification links, time commitment and keyword categories.
package lexical

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Unit multipliers for time commitments expressed in weeks or months.
const (
	hoursPerWeek  = 10
	hoursPerMonth = 40
)

var (
	// A URL, or a bare 5-12 character alphanumeric token such as a credential id.
	verificationPattern = regexp.MustCompile(`(?i)(https?://[^\s]+|\b[A-Z0-9]{5,12}\b)`)

	timePattern = regexp.MustCompile(`(?i)(\d+\.?\d*)\s*(?:total\s*)?(hours|hrs|h|weeks|week|months|month)`)
)

// Category names one of the keyword families detected in certificate text.
type Category uint8

const (
	CategoryProject Category = iota
	CategoryAssessment
	CategoryPrerequisite
)

func (c Category) String() string {
	switch c {
	case CategoryProject:
		return "project"
	case CategoryAssessment:
		return "assessment"
	case CategoryPrerequisite:
		return "prerequisite"
	default:
		return "unknown"
	}
}

// Fold lowercases text for case-insensitive comparisons.
// A Caser is not safe for concurrent use, so one is built per call.
func Fold(text string) string {
	return cases.Lower(language.Und).String(text)
}

// FindVerificationLink returns the first URL or credential-like token in text.
func FindVerificationLink(text string) (string, bool) {
	m := verificationPattern.FindString(text)
	if m == "" {
		return "", false
	}
	link := strings.TrimSpace(m)
	return link, link != ""
}

// ParseTimeCommitment returns the first stated duration in hours, or 0.
func ParseTimeCommitment(text string) float64 {
	m := timePattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}

	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}

	switch unit := strings.ToLower(m[2]); {
	case strings.HasPrefix(unit, "week"):
		return value * hoursPerWeek
	case strings.HasPrefix(unit, "month"):
		return value * hoursPerMonth
	default:
		return value
	}
}

// DetectKeywords reports whether any keyword occurs in text, ignoring case.
// Matching is plain substring containment with no word boundaries.
func DetectKeywords(text string, keywords []string) bool {
	return ContainsAny(Fold(text), keywords)
}

// ContainsAny is DetectKeywords for text that has already been folded.
func ContainsAny(folded string, keywords []string) bool {
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(folded, Fold(kw)) {
			return true
		}
	}
	return false
}
