package repository

import (
	"errors"
	"fmt"

	"github.com/okian/certrep/internal/domain/model"
)

// Sentinel kinds for repository errors.
var (
	ErrNotFound     = fmt.Errorf("certificate %w", model.ErrNotFound)
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
	ErrMissingID    = errors.New("certificate id is required")
)
