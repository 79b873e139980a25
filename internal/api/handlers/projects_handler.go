package handlers

import (
	"net/http"

	"github.com/taskhive/engine/internal/api/types"
	"github.com/taskhive/engine/internal/repository"
	"github.com/taskhive/engine/internal/services"
)

type ProjectsHandler struct {
	projects services.ProjectService
	members  services.MemberService
	users    repository.UserRepository
}

func NewProjectsHandler(projects services.ProjectService, members services.MemberService, users repository.UserRepository) *ProjectsHandler {
	return &ProjectsHandler{projects: projects, members: members, users: users}
}

func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}
	items, err := h.projects.List(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: items})
}

func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}
	var req types.ProjectCreateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	project, err := h.projects.Create(r.Context(), actor, &services.ProjectCreateInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.APIResponse{Success: true, Data: project})
}

func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
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
	project, err := h.projects.Get(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{
		Success: true,
		Data: map[string]any{
			"project":       project,
			"board_columns": project.BoardColumns(),
		},
	})
}

func (h *ProjectsHandler) Update(w http.ResponseWriter, r *http.Request) {
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
	var req types.ProjectUpdateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	project, err := h.projects.Update(r.Context(), actor, id, &services.ProjectUpdateInput{
		Name:         req.Name,
		Description:  req.Description,
		BoardColumns: req.BoardColumns,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: project})
}

func (h *ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	if err := h.projects.Delete(r.Context(), actor, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true})
}

func (h *ProjectsHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
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
	members, err := h.members.List(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: members})
}

func (h *ProjectsHandler) AddMember(w http.ResponseWriter, r *http.Request) {
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
	var req types.MemberAddRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	member, err := h.members.Add(r.Context(), actor, id, req.Email, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.APIResponse{Success: true, Data: member})
}

func (h *ProjectsHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
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
	memberID, err := pathUUID(r, "memberID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req types.MemberUpdateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	member, err := h.members.UpdateRole(r.Context(), actor, id, memberID, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: member})
}

func (h *ProjectsHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
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
	memberID, err := pathUUID(r, "memberID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.members.Remove(r.Context(), actor, id, memberID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true})
}
