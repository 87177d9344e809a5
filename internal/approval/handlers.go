package approval

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"payflow/internal/api"
	"payflow/internal/middleware"
	"payflow/internal/salary"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/drafts", h.handleList)
	r.Get("/drafts/{draftID}", h.handleGet)
	r.Get("/drafts/{draftID}/actions", h.handleActions)
	r.Post("/drafts/{draftID}/transition", h.handleTransition)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	if _, ok := middleware.GetUser(r.Context()); !ok {
		api.Fail(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", reqID)
		return
	}

	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)
	drafts, err := h.service.List(r.Context(), r.URL.Query().Get("status"), limit, offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "INTERNAL", "failed to list drafts", reqID)
		return
	}
	if drafts == nil {
		drafts = []salary.Draft{}
	}
	api.Success(w, map[string]any{"drafts": drafts}, reqID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	if _, ok := middleware.GetUser(r.Context()); !ok {
		api.Fail(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", reqID)
		return
	}

	draft, items, err := h.service.Get(r.Context(), chi.URLParam(r, "draftID"))
	if errors.Is(err, ErrDraftNotFound) {
		api.Fail(w, http.StatusNotFound, "NOT_FOUND", "draft not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "INTERNAL", "failed to load draft", reqID)
		return
	}
	api.Success(w, map[string]any{"draft": draft, "items": items}, reqID)
}

func (h *Handler) handleActions(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", reqID)
		return
	}

	actions, err := h.service.ActionsFor(r.Context(), chi.URLParam(r, "draftID"), user.Role)
	if errors.Is(err, ErrDraftNotFound) {
		api.Fail(w, http.StatusNotFound, "NOT_FOUND", "draft not found", reqID)
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "INTERNAL", "failed to load draft", reqID)
		return
	}
	api.Success(w, map[string]any{"actions": actions}, reqID)
}

type transitionRequest struct {
	ToStatus string `json:"toStatus"`
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required", reqID)
		return
	}

	var payload transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.ToStatus == "" {
		api.Fail(w, http.StatusBadRequest, "BAD_REQUEST", "toStatus is required", reqID)
		return
	}

	draft, err := h.service.Apply(r.Context(), chi.URLParam(r, "draftID"), payload.ToStatus, user.UserID, user.Role)
	switch {
	case errors.Is(err, ErrDraftNotFound):
		api.Fail(w, http.StatusNotFound, "NOT_FOUND", "draft not found", reqID)
	case errors.Is(err, ErrInvalidTransition):
		api.Fail(w, http.StatusUnprocessableEntity, "INVALID_TRANSITION", err.Error(), reqID)
	case errors.Is(err, ErrForbidden):
		api.Fail(w, http.StatusForbidden, "FORBIDDEN", err.Error(), reqID)
	case errors.Is(err, ErrChangeTypeMismatch):
		api.Fail(w, http.StatusUnprocessableEntity, "CHANGE_TYPE_MISMATCH", err.Error(), reqID)
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "INTERNAL", "transition failed", reqID)
	default:
		api.Success(w, map[string]any{"draft": draft}, reqID)
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}
