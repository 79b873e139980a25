package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task priority levels.
const (
	PriorityLow      = "Low"
	PriorityMedium   = "Medium"
	PriorityHigh     = "High"
	PriorityCritical = "Critical"
)

// Task workflow statuses.
const (
	StatusBacklog    = "backlog"
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusReview     = "review"
	StatusDone       = "done"
)

// Task types.
const (
	TypeFeature     = "Feature"
	TypeBug         = "Bug"
	TypeChore       = "Chore"
	TypeImprovement = "Improvement"
	TypeStory       = "Story"
)

// Priorities lists every valid priority, in ascending order.
func Priorities() []string {
	return []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
}

// Statuses lists every valid workflow status.
func Statuses() []string {
	return []string{StatusBacklog, StatusTodo, StatusInProgress, StatusReview, StatusDone}
}

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

func ValidStatus(s string) bool {
	switch s {
	case StatusBacklog, StatusTodo, StatusInProgress, StatusReview, StatusDone:
		return true
	}
	return false
}

func ValidTaskType(t string) bool {
	switch t {
	case TypeFeature, TypeBug, TypeChore, TypeImprovement, TypeStory:
		return true
	}
	return false
}

// Task is the aggregate root: subtasks, tag links, assignees and the
// blocked_by dependency graph all hang off it. Tasks are the only entity
// with soft delete; default queries exclude rows with a deletion timestamp.
type Task struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title" validate:"required"`
	Description string    `gorm:"type:text" json:"description"`
	IsCompleted bool      `gorm:"not null;default:false" json:"is_completed"`
	Priority    string    `gorm:"type:varchar(10);not null;default:Medium" json:"priority"`
	Status      string    `gorm:"type:varchar(20);not null;default:backlog;index" json:"status"`
	TaskType    string    `gorm:"type:varchar(20);not null;default:Feature" json:"task_type"`

	StoryPoints  int     `gorm:"not null;default:0" json:"story_points"`
	TimeEstimate float64 `gorm:"not null;default:0" json:"time_estimate"`
	TimeSpent    float64 `gorm:"not null;default:0" json:"time_spent"`

	StartDate            *time.Time `json:"start_date"`
	DueDate              *time.Time `json:"due_date"`
	ActualCompletionDate *time.Time `json:"actual_completion_date"`

	ProjectID *uuid.UUID `gorm:"type:uuid;index" json:"project_id"`
	OwnerID   uint       `gorm:"index;not null" json:"owner_id"`

	Assignees []User `gorm:"many2many:task_assignees" json:"assignees,omitempty"`
	// blocked_by is asymmetric: A blocked by B does not make B blocked by A.
	BlockedBy []Task `gorm:"many2many:task_blockers;joinForeignKey:TaskID;joinReferences:BlockedByID" json:"blocked_by,omitempty"`

	Subtasks []Subtask `gorm:"foreignKey:TaskID" json:"subtasks,omitempty"`
	TaskTags []TaskTag `gorm:"foreignKey:TaskID" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// SubtaskStats summarizes subtask completion for a task representation.
type SubtaskStats struct {
	Count     int     `json:"subtask_count"`
	Completed int     `json:"subtask_completed"`
	Progress  float64 `json:"subtask_progress"`
}
