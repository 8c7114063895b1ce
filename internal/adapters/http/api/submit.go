package api

import (
	"context"
	"net/http"

	"github.com/okian/certrep/internal/domain/model"
	"github.com/okian/certrep/pkg/logger"
)

// SubmitDependencies accepts certificates for asynchronous analysis.
type SubmitDependencies interface {
	// Submit queues s. A repeated id yields a duplicate receipt; a full
	// queue yields an error wrapping model.ErrBackpressure.
	Submit(ctx context.Context, s model.Submission) (model.Receipt, error)
}

// SubmitHandler handles POST /certificates.
type SubmitHandler struct {
	deps   SubmitDependencies
	logger logger.Logger
}

// NewSubmitHandler creates a new submit handler.
func NewSubmitHandler(deps SubmitDependencies, l logger.Logger) *SubmitHandler {
	return &SubmitHandler{deps: deps, logger: l}
}

// HandlePostCertificate queues a certificate and answers 202, or 200 for a
// duplicate id.
func (h *SubmitHandler) HandlePostCertificate(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_certificate"
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

	receipt, err := h.deps.Submit(r.Context(), model.Submission{
		ID:     req.ID,
		Source: req.Source,
		Text:   req.Text,
	})
	if err != nil {
		status, code := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error(r.Context(), "submit failed", logger.Error(err))
		}
		writeError(w, status, code, Wrap(op, err))
		return
	}
	if receipt.Duplicate {
		writeJSON(w, http.StatusOK, receipt)
		return
	}
	writeJSON(w, http.StatusAccepted, receipt)
}
