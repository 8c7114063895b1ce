// Package repository keeps analyzed certificates ranked by score.
package repository

import (
	"context"

	"github.com/okian/certrep/internal/domain/analysis"
	"github.com/okian/certrep/internal/domain/types"
)

// Store provides read/write access to the ranking state.
type Store interface {
	// Save inserts or replaces the analysis stored under r.ID.
	Save(ctx context.Context, r analysis.Result) error

	// Get returns a stored analysis and its current rank.
	// Returns ErrNotFound if the id is unknown.
	Get(ctx context.Context, id string) (types.Certificate, error)

	// TopN returns the best n entries ordered by score desc, id asc.
	TopN(ctx context.Context, n int) ([]types.Entry, error)

	// Count returns the number of stored certificates.
	Count(ctx context.Context) int
}
