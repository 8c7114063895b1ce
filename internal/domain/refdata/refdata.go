// Package refdata holds the reference tables consulted by the analyzer:
// issuer reputations, issuer aliases, the skill vocabulary and keyword sets.
//
// Tables are immutable once built. Reloading means building a new value and
// swapping it in wherever it is held.
package refdata

import (
	"fmt"
	"slices"
	"strings"

	"github.com/okian/certrep/internal/domain/lexical"
)

const (
	minReputation = 0
	maxReputation = 100
)

// Issuer is one row of the reputation table.
type Issuer struct {
	Key        string `yaml:"key" json:"key"`
	Reputation int    `yaml:"reputation" json:"reputation"`
}

// Alias maps a phrase found in certificate text to an issuer key.
type Alias struct {
	Phrase string `yaml:"phrase" json:"phrase"`
	Issuer string `yaml:"issuer" json:"issuer"`
}

// Keywords are the literal cues for each lexical.Category.
type Keywords struct {
	Project      []string `yaml:"project" json:"project"`
	Assessment   []string `yaml:"assessment" json:"assessment"`
	Prerequisite []string `yaml:"prerequisite" json:"prerequisite"`
}

// For returns the keywords of a category.
func (k Keywords) For(c lexical.Category) []string {
	switch c {
	case lexical.CategoryProject:
		return k.Project
	case lexical.CategoryAssessment:
		return k.Assessment
	case lexical.CategoryPrerequisite:
		return k.Prerequisite
	default:
		return nil
	}
}

// DefaultKeywords returns the built-in keyword sets.
func DefaultKeywords() Keywords {
	return Keywords{
		Project:      []string{"capstone", "project", "portfolio", "hands-on", "lab", "practical"},
		Assessment:   []string{"exam", "proctored", "invigilat", "graded", "assess", "final exam", "passing"},
		Prerequisite: []string{"prerequisite", "prereq", "prior knowledge", "experience required", "requirement"},
	}
}

// Stats summarizes table sizes.
type Stats struct {
	Issuers int `json:"issuers"`
	Aliases int `json:"aliases"`
	Skills  int `json:"skills"`
}

// Tables is an immutable snapshot of all reference data.
type Tables struct {
	issuers  []Issuer
	index    map[string]int
	aliases  []Alias
	skills   []string
	keywords Keywords
}

// New validates and normalizes the given rows into Tables.
// Keys, phrases and keywords are folded to lower case, reputations are
// clamped to [0,100] and empty keyword categories fall back to the defaults.
func New(issuers []Issuer, aliases []Alias, skills []string, keywords Keywords) (*Tables, error) {
	t := &Tables{
		issuers: make([]Issuer, 0, len(issuers)),
		index:   make(map[string]int, len(issuers)),
		aliases: make([]Alias, 0, len(aliases)),
		skills:  make([]string, 0, len(skills)),
	}

	for i, is := range issuers {
		key := normalize(is.Key)
		if key == "" {
			return nil, fmt.Errorf("%w: issuer %d has an empty key", ErrInvalidTables, i)
		}
		if _, dup := t.index[key]; dup {
			return nil, fmt.Errorf("%w: duplicate issuer key %q", ErrInvalidTables, key)
		}
		t.index[key] = len(t.issuers)
		t.issuers = append(t.issuers, Issuer{Key: key, Reputation: clampReputation(is.Reputation)})
	}

	for i, a := range aliases {
		phrase, target := normalize(a.Phrase), normalize(a.Issuer)
		if phrase == "" || target == "" {
			return nil, fmt.Errorf("%w: alias %d needs both a phrase and an issuer", ErrInvalidTables, i)
		}
		t.aliases = append(t.aliases, Alias{Phrase: phrase, Issuer: target})
	}

	seen := make(map[string]struct{}, len(skills))
	for i, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, fmt.Errorf("%w: skill %d is empty", ErrInvalidTables, i)
		}
		folded := lexical.Fold(s)
		if _, dup := seen[folded]; dup {
			continue
		}
		seen[folded] = struct{}{}
		t.skills = append(t.skills, s)
	}

	defaults := DefaultKeywords()
	t.keywords = Keywords{
		Project:      keywordsOr(keywords.Project, defaults.Project),
		Assessment:   keywordsOr(keywords.Assessment, defaults.Assessment),
		Prerequisite: keywordsOr(keywords.Prerequisite, defaults.Prerequisite),
	}

	return t, nil
}


// IssuerKeys returns the issuer keys in table order.
func (t *Tables) IssuerKeys() []string {
	keys := make([]string, len(t.issuers))
	for i, is := range t.issuers {
		keys[i] = is.Key
	}
	return keys
}

// Reputation looks up an issuer's reputation by key.
func (t *Tables) Reputation(key string) (int, bool) {
	i, ok := t.index[key]
	if !ok {
		return 0, false
	}
	return t.issuers[i].Reputation, true
}

// Aliases returns the alias table in evaluation order.
func (t *Tables) Aliases() []Alias { return slices.Clone(t.aliases) }

// Skills returns the skill vocabulary as spelled in the source data.
func (t *Tables) Skills() []string { return slices.Clone(t.skills) }

// Keywords returns the keyword sets.
func (t *Tables) Keywords() Keywords {
	return Keywords{
		Project:      slices.Clone(t.keywords.Project),
		Assessment:   slices.Clone(t.keywords.Assessment),
		Prerequisite: slices.Clone(t.keywords.Prerequisite),
	}
}

// Stats returns the number of entries per table.
func (t *Tables) Stats() Stats {
	return Stats{Issuers: len(t.issuers), Aliases: len(t.aliases), Skills: len(t.skills)}
}

func normalize(s string) string {
	return lexical.Fold(strings.TrimSpace(s))
}

func clampReputation(r int) int {
	return min(max(r, minReputation), maxReputation)
}

func keywordsOr(list, fallback []string) []string {
	out := make([]string, 0, len(list))
	for _, kw := range list {
		if kw = normalize(kw); kw != "" {
			out = append(out, kw)
		}
	}
	if len(out) == 0 {
		return slices.Clone(fallback)
	}
	return out
}
