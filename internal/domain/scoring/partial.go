package scoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Flag is a boolean that also accepts 0/1 style numbers when decoded.
type Flag bool

// UnmarshalJSON accepts true, false, null or any number (non-zero is true).
func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "true":
		*f = true
		return nil
	case "false", "null":
		*f = false
		return nil
	}
	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("flag must be a boolean or a number, got %s", data)
	}
	*f = n != 0
	return nil
}

// Partial is a possibly incomplete feature set, as accepted from callers that
// compute some features themselves. Missing fields take the scoring defaults.
type Partial struct {
	IssuerRep             *float64 `json:"issuer_rep,omitempty"`
	DurationHours         *float64 `json:"duration_hours,omitempty"`
	HasProject            *Flag    `json:"has_project,omitempty"`
	ProjectComplexity     *float64 `json:"project_complexity,omitempty"`
	AssessmentRigor       *float64 `json:"assessment_rigor,omitempty"`
	PrerequisitesRequired *Flag    `json:"prerequisites_required,omitempty"`
	IndustryRecognition   *float64 `json:"industry_recognition,omitempty"`
	Verified              *Flag    `json:"verified,omitempty"`
}

// Inputs resolves the partial set against the defaults.
func (p Partial) Inputs() Inputs {
	return Inputs{
		IssuerRep:             floatOr(p.IssuerRep, DefaultIssuerRep),
		DurationHours:         floatOr(p.DurationHours, 0),
		HasProject:            flagOr(p.HasProject),
		ProjectComplexity:     floatOr(p.ProjectComplexity, 0),
		AssessmentRigor:       floatOr(p.AssessmentRigor, DefaultAssessmentRigor),
		PrerequisitesRequired: flagOr(p.PrerequisitesRequired),
		IndustryRecognition:   floatOr(p.IndustryRecognition, DefaultIndustryRecognition),
		Verified:              flagOr(p.Verified),
	}
}

// ComposePartial scores a partial feature set with the default weights.
func ComposePartial(p Partial) Result {
	return ComposeInputs(p.Inputs(), DefaultWeights())
}

// DecodePartial reads a Partial from JSON. Unknown fields such as issuer or
// tags are ignored, so a full feature record decodes as well.
func DecodePartial(data []byte) (Partial, error) {
	var p Partial
	if err := json.Unmarshal(data, &p); err != nil {
		return Partial{}, fmt.Errorf("decode features: %w", err)
	}
	return p, nil
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func flagOr(v *Flag) bool {
	return v != nil && bool(*v)
}
