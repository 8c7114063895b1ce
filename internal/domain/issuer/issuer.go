// Package issuer identifies the issuing organization of a certificate.
//
// Resolution tries the alias table first, then fuzzy similarity against the
// reputation table, and otherwise reports an unknown issuer.
package issuer

import (
	"strings"

	"github.com/okian/certrep/internal/domain/lexical"
	"github.com/okian/certrep/internal/domain/refdata"
)

const (
	// Unknown is the issuer name reported when nothing matched.
	Unknown = "unknown"

	// DefaultReputation applies to unknown issuers and to alias targets
	// missing from the reputation table.
	DefaultReputation = 25

	// DefaultCutoff is the minimum similarity for a fuzzy match.
	DefaultCutoff = 30.0
)

// Strategy records how an issuer was identified.
type Strategy uint8

const (
	StrategyNone Strategy = iota
	StrategyAlias
	StrategyFuzzy
)

func (s Strategy) String() string {
	switch s {
	case StrategyNone:
		return "none"
	case StrategyAlias:
		return "alias"
	case StrategyFuzzy:
		return "fuzzy"
	default:
		return "invalid"
	}
}

// MarshalText encodes the strategy by name.
func (s Strategy) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Match is the outcome of resolving an issuer.
type Match struct {
	Key        string   `json:"key,omitempty"`
	Reputation int      `json:"reputation"`
	Strategy   Strategy `json:"strategy"`
	Similarity float64  `json:"similarity,omitempty"`
}

// Found reports whether an issuer was identified.
func (m Match) Found() bool { return m.Key != "" }

// Name returns the issuer key, or Unknown.
func (m Match) Name() string {
	if m.Key == "" {
		return Unknown
	}
	return m.Key
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithSimilarity replaces the fuzzy similarity measure.
func WithSimilarity(s Similarity) Option {
	return func(r *Resolver) {
		if s != nil {
			r.similarity = s
		}
	}
}

// WithCutoff sets the minimum fuzzy similarity (0-100).
func WithCutoff(cutoff float64) Option {
	return func(r *Resolver) {
		if cutoff >= 0 && cutoff <= 100 {
			r.cutoff = cutoff
		}
	}
}

// Resolver maps certificate text to an issuer. It is safe for concurrent use.
type Resolver struct {
	tables     *refdata.Tables
	aliases    []refdata.Alias
	keys       []string
	similarity Similarity
	cutoff     float64
}

// NewResolver builds a resolver over the given tables.
func NewResolver(tables *refdata.Tables, opts ...Option) *Resolver {
	r := &Resolver{
		tables:     tables,
		aliases:    tables.Aliases(),
		keys:       tables.IssuerKeys(),
		similarity: LevenshteinSimilarity{},
		cutoff:     DefaultCutoff,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve identifies the issuer named in text.
func (r *Resolver) Resolve(text string) Match {
	return r.ResolveFolded(lexical.Fold(text))
}

// ResolveFolded is Resolve for text that has already been folded.
func (r *Resolver) ResolveFolded(folded string) Match {
	for _, a := range r.aliases {
		if strings.Contains(folded, a.Phrase) {
			return Match{Key: a.Issuer, Reputation: r.reputation(a.Issuer), Strategy: StrategyAlias, Similarity: 100}
		}
	}

	if folded != "" && len(r.keys) > 0 {
		i, score := r.similarity.Best(folded, r.keys)
		if i >= 0 && i < len(r.keys) && score >= r.cutoff {
			key := r.keys[i]
			return Match{Key: key, Reputation: r.reputation(key), Strategy: StrategyFuzzy, Similarity: score}
		}
	}

	return Match{Reputation: DefaultReputation, Strategy: StrategyNone}
}

func (r *Resolver) reputation(key string) int {
	if rep, ok := r.tables.Reputation(key); ok {
		return rep
	}
	return DefaultReputation
}
