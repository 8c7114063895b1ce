package service

import (
	"errors"
	"fmt"

	"github.com/okian/certrep/internal/domain/model"
)

// Sentinel kinds for service errors.
var (
	ErrNotStarted          = fmt.Errorf("service not started: %w", model.ErrUnavailable)
	ErrNoReferenceDataPath = errors.New("no reference data path configured")
	ErrReload              = errors.New("reference data reload failed")
)
