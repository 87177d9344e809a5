package ingest

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const maxPushBodyBytes = 1 << 20

type Handler struct {
	pipeline *Pipeline
}

func NewHandler(pipeline *Pipeline) *Handler {
	return &Handler{pipeline: pipeline}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/pubsub/push", h.handlePush)
}

// handlePush maps the pipeline outcome onto the delivery platform's contract:
// 2xx acknowledges, anything else requests redelivery.
func (h *Handler) handlePush(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPushBodyBytes))
	if err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	switch h.pipeline.Process(r.Context(), body) {
	case OutcomeRetry:
		w.WriteHeader(http.StatusServiceUnavailable)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
