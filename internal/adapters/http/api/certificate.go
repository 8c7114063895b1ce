package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/certrep/internal/domain/types"
)

// CertificateDependencies reads stored analyses.
type CertificateDependencies interface {
	Get(ctx context.Context, id string) (types.Certificate, error)
}

// CertificateHandler handles GET /certificates/{id}.
type CertificateHandler struct {
	deps CertificateDependencies
}

// NewCertificateHandler creates a new certificate handler.
func NewCertificateHandler(deps CertificateDependencies) *CertificateHandler {
	return &CertificateHandler{deps: deps}
}

// HandleGetCertificate returns a stored analysis with its current rank.
func (h *CertificateHandler) HandleGetCertificate(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_certificate"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/certificates/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	cert, err := h.deps.Get(r.Context(), id)
	if err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, cert)
}
