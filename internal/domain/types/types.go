// Package types contains common types used across the application
package types

import (
	"time"

	"github.com/okian/certrep/internal/domain/analysis"
)

// Entry represents a leaderboard row
type Entry struct {
	Rank       int       `json:"rank"`
	ID         string    `json:"id"`
	Source     string    `json:"source,omitempty"`
	Issuer     string    `json:"issuer"`
	Score      float64   `json:"score"`
	Tier       int       `json:"tier"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}

// Certificate is a stored analysis together with its current rank.
type Certificate struct {
	Rank int `json:"rank"`
	analysis.Result
}

// EntryFromResult builds a leaderboard row from an analysis result.
func EntryFromResult(rank int, r analysis.Result) Entry {
	return Entry{
		Rank:       rank,
		ID:         r.ID,
		Source:     r.Source,
		Issuer:     r.Issuer,
		Score:      r.Result.Score,
		Tier:       r.Result.Tier,
		AnalyzedAt: r.AnalyzedAt,
	}
}
