// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/certrep/internal/domain/analysis"
	"github.com/okian/certrep/internal/domain/model"
	"github.com/okian/certrep/internal/domain/types"
	"github.com/okian/certrep/pkg/logger"
)

// Default limits.
const (
	DefaultMaxLeaderboardLimit = 1000
	DefaultMaxBodyBytes        = 1 << 20
	maxIDLength                = 128
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SubmitDependencies
	AnalyzeDependencies
	CertificateDependencies
	LeaderboardDependencies
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// Option configures a Server.
type Option func(*Server)

// WithMaxLeaderboardLimit caps the limit accepted by GET /leaderboard.
func WithMaxLeaderboardLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithMaxBodyBytes caps request bodies of POST endpoints.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithLogger sets the logger used by handlers.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps         Dependencies
	stats        StatsProvider
	maxLimit     int
	maxBodyBytes int64
	logger       logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		deps:         deps,
		stats:        statsProvider,
		maxLimit:     DefaultMaxLeaderboardLimit,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("api")
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	health := NewHealthHandler()
	stats := NewStatsHandler(s.stats)
	submit := NewSubmitHandler(s.deps, s.logger)
	analyze := NewAnalyzeHandler(s.deps)
	score := NewScoreHandler()
	certs := NewCertificateHandler(s.deps)
	board := NewLeaderboardHandler(s.deps, s.maxLimit)

	mux.HandleFunc("/healthz", MetricsMiddleware(health.HandleHealth, "healthz"))
	mux.Handle("/metrics", health.MetricsHandler())
	mux.HandleFunc("/stats", MetricsMiddleware(stats.HandleStats, "stats"))
	mux.HandleFunc("/certificates", MetricsMiddleware(s.limitBody(submit.HandlePostCertificate), "certificates"))
	mux.HandleFunc("/certificates/", MetricsMiddleware(certs.HandleGetCertificate, "certificate"))
	mux.HandleFunc("/analyze", MetricsMiddleware(s.limitBody(analyze.HandleAnalyze), "analyze"))
	mux.HandleFunc("/score", MetricsMiddleware(s.limitBody(score.HandleScore), "score"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(board.HandleGetLeaderboard, "leaderboard"))
}

// Handler returns a mux with every route registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return mux
}

func (s *Server) limitBody(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
		next(w, r)
	}
}

// documentRequest is the body of POST /certificates and POST /analyze. Empty
// text is accepted and scores on defaults.
type documentRequest struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Text   string `json:"text"`
}

func (d documentRequest) validate() error {
	switch {
	case len(d.ID) > maxIDLength:
		return errors.New("id too long")
	case strings.Contains(d.ID, "/"):
		return errors.New("id must not contain '/'")
	}
	return nil
}

func (d documentRequest) document() analysis.Document {
	return analysis.Document{ID: d.ID, Source: d.Source, Text: d.Text}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeBody decodes a JSON body and returns the status to answer with on
// failure.
func decodeBody(r *http.Request, v any) (int, error) {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return bodyStatus(err), err
	}
	return http.StatusOK, nil
}

// bodyStatus reports oversized bodies as 413 and anything else as 400.
func bodyStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// statusFor maps an upstream error to a status code and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, model.ErrNotFound), errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, model.ErrBackpressure), errors.Is(err, ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, model.ErrUnavailable), errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
