// Package scoring composes a bounded credibility score and tier from a
// certificate's feature record.
package scoring

import (
	"math"

	"github.com/okian/certrep/internal/domain/features"
)

// Score bounds, time normalization and the verification bonus.
const (
	MinScore = 0.0
	MaxScore = 100.0

	// Hours of study that earn the full time score.
	fullTimeHours = 200.0

	VerifyBonus = 10.0
)

// Tier thresholds, checked from the top. Anything below TierThreeMin is tier 4.
const (
	TierOneMin   = 80.0
	TierTwoMin   = 60.0
	TierThreeMin = 40.0
)

// Defaults applied by Partial for fields the caller leaves out.
const (
	DefaultIssuerRep           = 25.0
	DefaultAssessmentRigor     = 20.0
	DefaultIndustryRecognition = 20.0
)

// Weights are the linear coefficients of each component.
type Weights struct {
	IssuerRep     float64 `json:"issuer_rep"`
	Assessment    float64 `json:"assessment"`
	Project       float64 `json:"project"`
	Time          float64 `json:"time"`
	Industry      float64 `json:"industry"`
	Prerequisites float64 `json:"prerequisites"`
}

// DefaultWeights returns the standard weighting. Prerequisites carry no
// weight, so the prerequisite flag never moves the score.
func DefaultWeights() Weights {
	return Weights{
		IssuerRep:     0.35,
		Assessment:    0.25,
		Project:       0.20,
		Time:          0.10,
		Industry:      0.10,
		Prerequisites: 0.0,
	}
}

// Result is the composed score, rounded to two decimals, and its tier.
type Result struct {
	Score float64 `json:"score"`
	Tier  int     `json:"tier"`
}

// Inputs are the numeric and boolean features the composer reads.
type Inputs struct {
	IssuerRep             float64
	DurationHours         float64
	HasProject            bool
	ProjectComplexity     float64
	AssessmentRigor       float64
	PrerequisitesRequired bool
	IndustryRecognition   float64
	Verified              bool
}

// FromRecord extracts composer inputs from a feature record.
func FromRecord(r features.Record) Inputs {
	return Inputs{
		IssuerRep:             float64(r.IssuerRep),
		DurationHours:         r.DurationHours,
		HasProject:            r.HasProject,
		ProjectComplexity:     r.ProjectComplexity,
		AssessmentRigor:       r.AssessmentRigor,
		PrerequisitesRequired: r.PrerequisitesRequired,
		IndustryRecognition:   r.IndustryRecognition,
		Verified:              r.Verified,
	}
}

// Compose scores a feature record with the default weights.
func Compose(r features.Record) Result {
	return ComposeInputs(FromRecord(r), DefaultWeights())
}

// ComposeWith scores a feature record with custom weights.
func ComposeWith(r features.Record, w Weights) Result {
	return ComposeInputs(FromRecord(r), w)
}

// ComposeInputs is the scoring formula. Every input is clamped first, so any
// values, including NaN, produce a score in [0,100].
func ComposeInputs(in Inputs, w Weights) Result {
	issuerRep := clampUnit(in.IssuerRep)
	assessment := clampUnit(in.AssessmentRigor)
	industry := clampUnit(in.IndustryRecognition)

	duration := in.DurationHours
	if math.IsNaN(duration) || duration < 0 {
		duration = 0
	}
	timeScore := clampUnit(duration / fullTimeHours * 100)

	projectScore := 0.0
	if in.HasProject {
		projectScore = clampUnit(in.ProjectComplexity)
	}

	prereq := 0.0
	if in.PrerequisitesRequired {
		prereq = 100
	}

	composite := issuerRep*w.IssuerRep +
		assessment*w.Assessment +
		projectScore*w.Project +
		timeScore*w.Time +
		industry*w.Industry +
		prereq*w.Prerequisites

	if in.Verified {
		composite += VerifyBonus
	}

	score := round2(clampUnit(composite))
	return Result{Score: score, Tier: TierFor(score)}
}

// TierFor maps a score to its tier, 1 being the most credible.
func TierFor(score float64) int {
	switch {
	case score >= TierOneMin:
		return 1
	case score >= TierTwoMin:
		return 2
	case score >= TierThreeMin:
		return 3
	default:
		return 4
	}
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return MinScore
	}
	return math.Max(MinScore, math.Min(MaxScore, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
