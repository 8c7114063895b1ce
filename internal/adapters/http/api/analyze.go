package api

import (
	"context"
	"net/http"

	"github.com/okian/certrep/internal/domain/analysis"
)

// AnalyzeDependencies analyzes a certificate synchronously.
type AnalyzeDependencies interface {
	AnalyzeNow(ctx context.Context, doc analysis.Document) (analysis.Result, error)
}

// AnalyzeHandler handles POST /analyze.
type AnalyzeHandler struct {
	deps AnalyzeDependencies
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(deps AnalyzeDependencies) *AnalyzeHandler {
	return &AnalyzeHandler{deps: deps}
}

// HandleAnalyze returns the full analysis of the posted text.
func (h *AnalyzeHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req documentRequest
	if status, err := decodeBody(r, &req); err != nil {
		writeError(w, status, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := h.deps.AnalyzeNow(r.Context(), req.document())
	if err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
