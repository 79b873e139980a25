package handlers

import (
	"net/http"

	"github.com/taskhive/engine/internal/api/types"
	"github.com/taskhive/engine/internal/repository"
	"github.com/taskhive/engine/internal/services"
)

type TagsHandler struct {
	tags  services.TagService
	users repository.UserRepository
}

func NewTagsHandler(tags services.TagService, users repository.UserRepository) *TagsHandler {
	return &TagsHandler{tags: tags, users: users}
}

func (h *TagsHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}
	items, err := h.tags.List(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: items})
}

func (h *TagsHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}
	var req types.TagCreateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	tag, err := h.tags.Create(r.Context(), actor, req.Name, req.Color)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.APIResponse{Success: true, Data: tag})
}

func (h *TagsHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req types.TagUpdateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	tag, err := h.tags.Update(r.Context(), actor, id, req.Name, req.Color)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: tag})
}

func (h *TagsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.tags.Delete(r.Context(), actor, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true})
}
