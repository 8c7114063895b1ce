// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/certrep/internal/domain/analysis"
)

// Submission is a certificate accepted for asynchronous analysis.
type Submission struct {
	ID          string    // unique id, also the idempotency key
	Source      string    // free-form origin, e.g. a file name
	Text        string    // extracted certificate text
	SubmittedAt time.Time // when the submission was accepted
}

// Document converts the submission into analyzer input.
func (s Submission) Document() analysis.Document {
	return analysis.Document{ID: s.ID, Source: s.Source, Text: s.Text}
}

// Receipt acknowledges an accepted or duplicate submission.
type Receipt struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// Receipt statuses.
const (
	StatusAccepted  = "accepted"
	StatusDuplicate = "duplicate"
)
