package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/engine/internal/models"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type PreferencesRequest struct {
	Dashboard    map[string]any `json:"dashboard"`
	Notification map[string]any `json:"notification"`
	App          map[string]any `json:"app"`
}

type TaskCreateRequest struct {
	Title                string       `json:"title"`
	Description          string       `json:"description"`
	Priority             string       `json:"priority"`
	Status               string       `json:"status"`
	TaskType             string       `json:"task_type"`
	StartDate            *time.Time   `json:"start_date"`
	DueDate              *time.Time   `json:"due_date"`
	ActualCompletionDate *time.Time   `json:"actual_completion_date"`
	StoryPoints          int          `json:"story_points"`
	TimeEstimate         float64      `json:"time_estimate"`
	TimeSpent            float64      `json:"time_spent"`
	ProjectID            *uuid.UUID   `json:"project_id"`
	TagIDs               []uuid.UUID  `json:"tag_ids"`
	AssigneeIDs          []uint       `json:"assignee_ids"`
	BlockedByIDs         []uuid.UUID  `json:"blocked_by_ids"`
}

type TaskUpdateRequest struct {
	Title                *string       `json:"title"`
	Description          *string       `json:"description"`
	Priority             *string       `json:"priority"`
	Status               *string       `json:"status"`
	TaskType             *string       `json:"task_type"`
	StartDate            *time.Time    `json:"start_date"`
	DueDate              *time.Time    `json:"due_date"`
	ActualCompletionDate *time.Time    `json:"actual_completion_date"`
	StoryPoints          *int          `json:"story_points"`
	TimeEstimate         *float64      `json:"time_estimate"`
	TimeSpent            *float64      `json:"time_spent"`
	ProjectID            *uuid.UUID    `json:"project_id"`
	IsCompleted          *bool         `json:"is_completed"`
	TagIDs               *[]uuid.UUID  `json:"tag_ids"`
	AssigneeIDs          *[]uint       `json:"assignee_ids"`
	BlockedByIDs         *[]uuid.UUID  `json:"blocked_by_ids"`
}

type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}

type SubtaskCreateRequest struct {
	Title string `json:"title" validate:"required"`
}

type SubtaskUpdateRequest struct {
	Title       *string `json:"title"`
	IsCompleted *bool   `json:"is_completed"`
	Order       *int    `json:"order"`
}

type SubtaskReorderRequest struct {
	SubtaskIDs []uuid.UUID `json:"subtask_ids" validate:"required"`
}

type BulkActionRequest struct {
	IDs    []uuid.UUID `json:"ids" validate:"required"`
	Action string      `json:"action" validate:"required"`
	Value  string      `json:"value"`
}

type ProjectCreateRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type ProjectUpdateRequest struct {
	Name         *string              `json:"name"`
	Description  *string              `json:"description"`
	BoardColumns []models.BoardColumn `json:"board_columns"`
}

type MemberAddRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role"`
}

type MemberUpdateRequest struct {
	Role string `json:"role" validate:"required"`
}

type TagCreateRequest struct {
	Name  string `json:"name" validate:"required"`
	Color string `json:"color" validate:"required"`
}

type TagUpdateRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

type NoteCreateRequest struct {
	Content string `json:"content" validate:"required"`
}

type NoteUpdateRequest struct {
	Content    *string `json:"content"`
	IsArchived *bool   `json:"is_archived"`
}

type NoteConvertRequest struct {
	Title     string     `json:"title"`
	ProjectID *uuid.UUID `json:"project_id"`
}
