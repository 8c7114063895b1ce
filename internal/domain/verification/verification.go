// Package verification classifies how a certificate can be verified from
// its text and any verification link found in it.
package verification

import (
	"strings"

	"github.com/okian/certrep/internal/domain/lexical"
)

// Evidence is the input every rule inspects.
type Evidence struct {
	// Text is the folded certificate text.
	Text    string
	Link    string
	HasLink bool
}

// Rule maps evidence to a method. Rules are evaluated in order.
type Rule struct {
	Name   string
	Method Method
	Match  func(Evidence) bool
}

var registryMarkers = []string{"verify", "certificate", "registry", "credentials"}

// MentionsProctoring reports whether folded text refers to proctored or
// invigilated assessment.
func MentionsProctoring(folded string) bool {
	return strings.Contains(folded, "proct") || strings.Contains(folded, "invigil")
}

// DefaultRules returns the built-in rule table.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:   "proctoring mentioned",
			Method: MethodProctored,
			Match:  func(e Evidence) bool { return MentionsProctoring(e.Text) },
		},
		{
			Name:   "blockchain mentioned",
			Method: MethodBlockchain,
			Match:  func(e Evidence) bool { return strings.Contains(e.Text, "blockchain") },
		},
		{
			Name:   "registry link",
			Method: MethodRegistry,
			Match: func(e Evidence) bool {
				return e.HasLink && lexical.ContainsAny(lexical.Fold(e.Link), registryMarkers)
			},
		},
		{
			Name:   "any link",
			Method: MethodSimpleLink,
			Match:  func(e Evidence) bool { return e.HasLink },
		},
	}
}

// Outcome is the classification result.
type Outcome struct {
	Method   Method
	Verified bool
	Link     string
}

// Classifier applies an ordered rule table.
type Classifier struct {
	rules []Rule
}

// NewClassifier returns a classifier using rules, or DefaultRules when none are given.
func NewClassifier(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

// Classify finds the verification link in text and applies the rule table.
func (c *Classifier) Classify(text string) Outcome {
	link, ok := lexical.FindVerificationLink(text)
	return c.ClassifyEvidence(Evidence{Text: lexical.Fold(text), Link: link, HasLink: ok})
}

// ClassifyEvidence applies the rule table to prepared evidence.
// Verified depends on the link alone, never on the chosen method.
func (c *Classifier) ClassifyEvidence(e Evidence) Outcome {
	out := Outcome{Method: MethodNone, Verified: e.HasLink, Link: e.Link}
	for _, r := range c.rules {
		if r.Match != nil && r.Match(e) {
			out.Method = r.Method
			break
		}
	}
	return out
}
