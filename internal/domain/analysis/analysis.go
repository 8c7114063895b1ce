// Package analysis turns a certificate's raw text into its scored result.
package analysis

import (
	"slices"
	"time"

	"github.com/okian/certrep/internal/domain/features"
	"github.com/okian/certrep/internal/domain/issuer"
	"github.com/okian/certrep/internal/domain/refdata"
	"github.com/okian/certrep/internal/domain/scoring"
)

// DefaultSnippetLength is the number of characters of raw text kept in a Result.
const DefaultSnippetLength = 500

// Document is one certificate to analyze.
type Document struct {
	ID     string `json:"id"`
	Source string `json:"source,omitempty"`
	Text   string `json:"text"`
}

// Result is the full analysis of a Document.
type Result struct {
	ID             string          `json:"id"`
	Source         string          `json:"source,omitempty"`
	Issuer         string          `json:"issuer"`
	Features       features.Record `json:"features"`
	Skills         []string        `json:"skills"`
	Tags           []string        `json:"tags"`
	Result         scoring.Result  `json:"result"`
	Resolution     issuer.Match    `json:"issuer_resolution"`
	RawTextSnippet string          `json:"raw_text_snippet"`
	AnalyzedAt     time.Time       `json:"analyzed_at"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithSnippetLength sets how many characters of raw text a Result keeps.
func WithSnippetLength(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.snippetLength = n
		}
	}
}

// WithWeights overrides the scoring weights.
func WithWeights(w scoring.Weights) Option {
	return func(e *Engine) { e.weights = w }
}

// WithClock sets the time source for AnalyzedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithAssemblerOptions forwards options to the feature assembler.
func WithAssemblerOptions(opts ...features.Option) Option {
	return func(e *Engine) { e.assemblerOpts = append(e.assemblerOpts, opts...) }
}

// Engine analyzes documents against one snapshot of reference data.
// It is immutable after construction and safe for concurrent use.
type Engine struct {
	tables        *refdata.Tables
	assembler     *features.Assembler
	assemblerOpts []features.Option
	weights       scoring.Weights
	snippetLength int
	now           func() time.Time
}

// NewEngine prepares an engine over tables.
func NewEngine(tables *refdata.Tables, opts ...Option) *Engine {
	e := &Engine{
		tables:        tables,
		weights:       scoring.DefaultWeights(),
		snippetLength: DefaultSnippetLength,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.assembler = features.NewAssembler(tables, e.assemblerOpts...)
	return e
}

// Tables returns the reference data the engine was built from.
func (e *Engine) Tables() *refdata.Tables { return e.tables }

// Analyze never fails: unrecognizable text yields a low-tier default result.
func (e *Engine) Analyze(doc Document) Result {
	signals := e.assembler.Assemble(doc.Text)

	tags := make([]string, 0, len(signals.Skills)+1)
	if signals.Issuer.Found() {
		tags = append(tags, signals.Issuer.Key)
	}
	tags = append(tags, signals.Skills...)
	slices.Sort(tags)

	return Result{
		ID:             doc.ID,
		Source:         doc.Source,
		Issuer:         signals.Record.Issuer,
		Features:       signals.Record,
		Skills:         signals.Skills,
		Tags:           slices.Compact(tags),
		Result:         scoring.ComposeWith(signals.Record, e.weights),
		Resolution:     signals.Issuer,
		RawTextSnippet: Snippet(doc.Text, e.snippetLength),
		AnalyzedAt:     e.now().UTC(),
	}
}

// Analyze runs a one-off engine over tables.
func Analyze(doc Document, tables *refdata.Tables) Result {
	return NewEngine(tables).Analyze(doc)
}

// Snippet returns the first n characters of text.
func Snippet(text string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range text {
		if i == n {
			return text[:pos]
		}
		i++
	}
	return text
}
