// Package features assembles the typed feature record of a certificate from
// the lexical, issuer, skill and verification signals.
package features

import (
	"strings"

	"github.com/okian/certrep/internal/domain/issuer"
	"github.com/okian/certrep/internal/domain/lexical"
	"github.com/okian/certrep/internal/domain/refdata"
	"github.com/okian/certrep/internal/domain/skills"
	"github.com/okian/certrep/internal/domain/verification"
)

// Project complexity and assessment rigor levels.
const (
	ComplexityPortfolio = 70.0
	ComplexityProject   = 40.0
	ComplexityNone      = 0.0

	RigorProctored = 80.0
	RigorAssessed  = 60.0
	RigorBaseline  = 20.0
)

// Tags records which keyword categories were detected.
type Tags struct {
	Project      bool `json:"project"`
	Assessment   bool `json:"assessment"`
	Prerequisite bool `json:"prerequisite"`
}

// Record is the feature vector consumed by the scorer.
type Record struct {
	Issuer                string              `json:"issuer"`
	IssuerRep             int                 `json:"issuer_rep"`
	DurationHours         float64             `json:"duration_hours"`
	HasProject            bool                `json:"has_project"`
	ProjectComplexity     float64             `json:"project_complexity"`
	AssessmentRigor       float64             `json:"assessment_rigor"`
	PrerequisitesRequired bool                `json:"prerequisites_required"`
	IndustryRecognition   float64             `json:"industry_recognition"`
	Verified              bool                `json:"verified"`
	VerificationReason    verification.Method `json:"verification_reason"`
	Tags                  Tags                `json:"tags"`
}

// Signals is everything extracted from one document.
type Signals struct {
	Record       Record
	Skills       []string
	Issuer       issuer.Match
	Verification verification.Outcome
}

// Option configures an Assembler.
type Option func(*config)

type config struct {
	resolverOpts []issuer.Option
	rules        []verification.Rule
}

// WithResolverOptions forwards options to the issuer resolver.
func WithResolverOptions(opts ...issuer.Option) Option {
	return func(c *config) { c.resolverOpts = append(c.resolverOpts, opts...) }
}

// WithRules replaces the verification rule table.
func WithRules(rules ...verification.Rule) Option {
	return func(c *config) { c.rules = rules }
}

// Assembler extracts Signals using one snapshot of reference data.
// It holds no per-document state and is safe for concurrent use.
type Assembler struct {
	resolver   *issuer.Resolver
	tagger     *skills.Tagger
	classifier *verification.Classifier
	keywords   refdata.Keywords
}

// NewAssembler prepares an assembler over tables.
func NewAssembler(tables *refdata.Tables, opts ...Option) *Assembler {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Assembler{
		resolver:   issuer.NewResolver(tables, cfg.resolverOpts...),
		tagger:     skills.NewTagger(tables.Skills()),
		classifier: verification.NewClassifier(cfg.rules...),
		keywords:   tables.Keywords(),
	}
}

// Assemble is total: empty or unrecognizable text yields default signals.
func (a *Assembler) Assemble(text string) Signals {
	folded := lexical.Fold(text)

	match := a.resolver.ResolveFolded(folded)
	link, hasLink := lexical.FindVerificationLink(text)
	outcome := a.classifier.ClassifyEvidence(verification.Evidence{Text: folded, Link: link, HasLink: hasLink})

	tags := Tags{
		Project:      lexical.ContainsAny(folded, a.keywords.For(lexical.CategoryProject)),
		Assessment:   lexical.ContainsAny(folded, a.keywords.For(lexical.CategoryAssessment)),
		Prerequisite: lexical.ContainsAny(folded, a.keywords.For(lexical.CategoryPrerequisite)),
	}

	return Signals{
		Record: Record{
			Issuer:                match.Name(),
			IssuerRep:             match.Reputation,
			DurationHours:         lexical.ParseTimeCommitment(text),
			HasProject:            tags.Project,
			ProjectComplexity:     projectComplexity(folded, tags.Project),
			AssessmentRigor:       assessmentRigor(folded, tags.Assessment),
			PrerequisitesRequired: tags.Prerequisite,
			IndustryRecognition:   float64(match.Reputation),
			Verified:              outcome.Verified,
			VerificationReason:    outcome.Method,
			Tags:                  tags,
		},
		Skills:       a.tagger.Tag(text),
		Issuer:       match,
		Verification: outcome,
	}
}

// Assemble builds a one-off assembler over tables and runs it on text.
func Assemble(text string, tables *refdata.Tables) Signals {
	return NewAssembler(tables).Assemble(text)
}

func projectComplexity(folded string, hasProject bool) float64 {
	switch {
	case !hasProject:
		return ComplexityNone
	case strings.Contains(folded, "capstone") || strings.Contains(folded, "portfolio"):
		return ComplexityPortfolio
	default:
		return ComplexityProject
	}
}

func assessmentRigor(folded string, assessed bool) float64 {
	switch {
	case verification.MentionsProctoring(folded):
		return RigorProctored
	case assessed:
		return RigorAssessed
	default:
		return RigorBaseline
	}
}
