package handlers

import (
	"net/http"

	"github.com/taskhive/engine/internal/api/types"
	"github.com/taskhive/engine/internal/repository"
	"github.com/taskhive/engine/internal/services"
)

type NotesHandler struct {
	notes services.NoteService
	users repository.UserRepository
}

func NewNotesHandler(notes services.NoteService, users repository.UserRepository) *NotesHandler {
	return &NotesHandler{notes: notes, users: users}
}

func (h *NotesHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}
	var archived *bool
	if v := r.URL.Query().Get("archived"); v != "" {
		b := v == "true" || v == "1"
		archived = &b
	}
	items, err := h.notes.List(r.Context(), actor, archived)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: items})
}

func (h *NotesHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}
	var req types.NoteCreateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	note, err := h.notes.Create(r.Context(), actor, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.APIResponse{Success: true, Data: note})
}

func (h *NotesHandler) Update(w http.ResponseWriter, r *http.Request) {
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
	var req types.NoteUpdateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	note, err := h.notes.Update(r.Context(), actor, id, req.Content, req.IsArchived)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: note})
}

func (h *NotesHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	if err := h.notes.Delete(r.Context(), actor, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true})
}

func (h *NotesHandler) Convert(w http.ResponseWriter, r *http.Request) {
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
	var req types.NoteConvertRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	var overrides *services.TaskCreateInput
	if req.Title != "" || req.ProjectID != nil {
		overrides = &services.TaskCreateInput{Title: req.Title, ProjectID: req.ProjectID}
	}
	note, task, err := h.notes.ConvertToTask(r.Context(), actor, id, overrides)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.APIResponse{
		Success: true,
		Data:    map[string]any{"note": note, "task": task},
	})
}
