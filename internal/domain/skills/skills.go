// Package skills tags certificate text with entries from a skill vocabulary.
package skills

import (
	"regexp"
	"slices"
)

// Tagger finds whole-word, case-insensitive vocabulary matches.
// Patterns are compiled once; a Tagger is safe for concurrent use.
type Tagger struct {
	entries []entry
}

type entry struct {
	skill   string
	pattern *regexp.Regexp
}

// NewTagger compiles a pattern for every vocabulary entry.
func NewTagger(vocabulary []string) *Tagger {
	t := &Tagger{entries: make([]entry, 0, len(vocabulary))}
	for _, skill := range vocabulary {
		if skill == "" {
			continue
		}
		t.entries = append(t.entries, entry{
			skill:   skill,
			pattern: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(skill) + `\b`),
		})
	}
	return t
}

// Tag returns the vocabulary spellings found in text, deduplicated and sorted.
func (t *Tagger) Tag(text string) []string {
	found := make([]string, 0)
	if text == "" {
		return found
	}
	for _, e := range t.entries {
		if e.pattern.MatchString(text) {
			found = append(found, e.skill)
		}
	}
	slices.Sort(found)
	return slices.Compact(found)
}
