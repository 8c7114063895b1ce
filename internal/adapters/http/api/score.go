package api

import (
	"io"
	"net/http"

	"github.com/okian/certrep/internal/domain/scoring"
)

// ScoreHandler handles POST /score. Missing features take their defaults.
type ScoreHandler struct {
	weights scoring.Weights
}

// NewScoreHandler creates a score handler using the default weights.
func NewScoreHandler() *ScoreHandler {
	return &ScoreHandler{weights: scoring.DefaultWeights()}
}

// HandleScore composes a score from a partial feature record.
func (h *ScoreHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.score"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, bodyStatus(err), "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	p, err := scoring.DecodePartial(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, scoring.ComposeInputs(p.Inputs(), h.weights))
}
