package handlers

import (
	"net/http"
	"strconv"

	"github.com/taskhive/engine/internal/api/types"
	"github.com/taskhive/engine/internal/repository"
	"github.com/taskhive/engine/internal/services"
)

type TasksHandler struct {
	tasks services.TaskService
	users repository.UserRepository
}

func NewTasksHandler(tasks services.TaskService, users repository.UserRepository) *TasksHandler {
	return &TasksHandler{tasks: tasks, users: users}
}

func (h *TasksHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}

	q := r.URL.Query()
	f := repository.TaskFilters{
		Priority: q.Get("priority"),
		Status:   q.Get("status"),
		Search:   q.Get("search"),
	}
	if v := q.Get("project_id"); v != "" {
		id, perr := parseUUIDParam(v, "project_id")
		if perr != nil {
			writeError(w, perr)
			return
		}
		f.ProjectID = &id
	}
	if v := q.Get("is_completed"); v != "" {
		b := v == "true" || v == "1"
		f.IsCompleted = &b
	}
	f.IncludeDeleted = q.Get("include_deleted") == "true"
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.PageSize, _ = strconv.Atoi(q.Get("page_size"))

	items, total, err := h.tasks.List(r.Context(), actor, f)
	if err != nil {
		writeError(w, err)
		return
	}
	page, size := f.Page, f.PageSize
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	writeJSON(w, http.StatusOK, types.APIResponse{
		Success: true,
		Data:    items,
		Meta:    &types.Meta{Page: page, PageSize: size, Total: total},
	})
}

func (h *TasksHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}
	var req types.TaskCreateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	task, err := h.tasks.Create(r.Context(), actor, &services.TaskCreateInput{
		Title:                req.Title,
		Description:          req.Description,
		Priority:             req.Priority,
		Status:               req.Status,
		TaskType:             req.TaskType,
		StartDate:            req.StartDate,
		DueDate:              req.DueDate,
		ActualCompletionDate: req.ActualCompletionDate,
		StoryPoints:          req.StoryPoints,
		TimeEstimate:         req.TimeEstimate,
		TimeSpent:            req.TimeSpent,
		ProjectID:            req.ProjectID,
		TagIDs:               req.TagIDs,
		AssigneeIDs:          req.AssigneeIDs,
		BlockedByIDs:         req.BlockedByIDs,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.APIResponse{Success: true, Data: task})
}

func (h *TasksHandler) Get(w http.ResponseWriter, r *http.Request) {
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
	withDeleted := r.URL.Query().Get("with_deleted") == "true"
	task, err := h.tasks.Get(r.Context(), actor, id, withDeleted)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: task})
}

func (h *TasksHandler) Update(w http.ResponseWriter, r *http.Request) {
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
	var req types.TaskUpdateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	task, err := h.tasks.Update(r.Context(), actor, id, &services.TaskUpdateInput{
		Title:                req.Title,
		Description:          req.Description,
		Priority:             req.Priority,
		Status:               req.Status,
		TaskType:             req.TaskType,
		StartDate:            req.StartDate,
		DueDate:              req.DueDate,
		ActualCompletionDate: req.ActualCompletionDate,
		StoryPoints:          req.StoryPoints,
		TimeEstimate:         req.TimeEstimate,
		TimeSpent:            req.TimeSpent,
		ProjectID:            req.ProjectID,
		IsCompleted:          req.IsCompleted,
		TagIDs:               req.TagIDs,
		AssigneeIDs:          req.AssigneeIDs,
		BlockedByIDs:         req.BlockedByIDs,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: task})
}

func (h *TasksHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
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
	var req types.StatusUpdateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	task, err := h.tasks.UpdateStatus(r.Context(), actor, id, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: task})
}

func (h *TasksHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	if err := h.tasks.Delete(r.Context(), actor, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true})
}

func (h *TasksHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}
	var req types.BulkActionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	n, err := h.tasks.Bulk(r.Context(), actor, &services.BulkActionInput{IDs: req.IDs, Action: req.Action, Value: req.Value})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: map[string]int{"affected": n}})
}

func (h *TasksHandler) CreateSubtask(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}
	taskID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req types.SubtaskCreateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sub, err := h.tasks.CreateSubtask(r.Context(), actor, taskID, req.Title)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.APIResponse{Success: true, Data: sub})
}

func (h *TasksHandler) UpdateSubtask(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}
	taskID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	subtaskID, err := pathUUID(r, "subtaskID")
	if err != nil {
		writeError(w, err)
		return
	}
	var req types.SubtaskUpdateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sub, err := h.tasks.UpdateSubtask(r.Context(), actor, taskID, subtaskID, &services.SubtaskUpdateInput{
		Title:       req.Title,
		IsCompleted: req.IsCompleted,
		SortOrder:   req.Order,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: sub})
}

func (h *TasksHandler) DeleteSubtask(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}
	taskID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	subtaskID, err := pathUUID(r, "subtaskID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.tasks.DeleteSubtask(r.Context(), actor, taskID, subtaskID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true})
}

func (h *TasksHandler) ReorderSubtasks(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}
	taskID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req types.SubtaskReorderRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	subs, err := h.tasks.ReorderSubtasks(r.Context(), actor, taskID, req.SubtaskIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: subs})
}

func (h *TasksHandler) AttachTag(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}
	taskID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	tagID, err := pathUUID(r, "tagID")
	if err != nil {
		writeError(w, err)
		return
	}
	link, err := h.tasks.AttachTag(r.Context(), actor, taskID, tagID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, types.APIResponse{Success: true, Data: link})
}

func (h *TasksHandler) DetachTag(w http.ResponseWriter, r *http.Request) {
	actor, err := currentUser(r, h.users)
	if err != nil {
		writeError(w, err)
		return
	}
	taskID, err := pathUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	tagID, err := pathUUID(r, "tagID")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.tasks.DetachTag(r.Context(), actor, taskID, tagID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true})
}
