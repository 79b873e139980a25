package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskhive/engine/internal/api/types"
	"github.com/taskhive/engine/internal/repository"
	"github.com/taskhive/engine/internal/services"
)

type ActivityHandler struct {
	activity services.ActivityService
	users    repository.UserRepository
}

func NewActivityHandler(activity services.ActivityService, users repository.UserRepository) *ActivityHandler {
	return &ActivityHandler{activity: activity, users: users}
}

func (h *ActivityHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}
	entries, err := h.activity.ListMine(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: entries})
}

func (h *ActivityHandler) ListForTarget(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}
	targetType := chi.URLParam(r, "targetType")
	targetID := chi.URLParam(r, "targetID")
	entries, err := h.activity.ListForTarget(r.Context(), actor, targetType, targetID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: entries})
}
