package service

import (
	"time"

	"github.com/okian/certrep/internal/domain/refdata"
	"github.com/okian/certrep/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued submissions.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the submission id cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithReferenceData starts the service on the given tables.
func WithReferenceData(t *refdata.Tables) Option {
	return func(s *Service) {
		if t != nil {
			s.tables = t
		}
	}
}

// WithReferenceDataPath loads reference data from a YAML file at Start and
// makes the path the default for ReloadReferenceData.
func WithReferenceDataPath(path string) Option {
	return func(s *Service) { s.refPath = path }
}

// WithSnippetLength sets how much raw text each stored result keeps.
func WithSnippetLength(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.snippetLength = n
		}
	}
}

// WithIDGenerator replaces the generator used for submissions without an id.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithClock sets the time source for submission and analysis timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
