package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subtask is a checklist item owned by exactly one task. SortOrder is dense
// and zero-based at assignment time but never re-validated: reordering
// rewrites only the ids it is given, so gaps and duplicates are tolerated.
type Subtask struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TaskID      uuid.UUID  `gorm:"type:uuid;index;not null" json:"task_id"`
	Title       string     `gorm:"not null" json:"title" validate:"required"`
	IsCompleted bool       `gorm:"not null;default:false" json:"is_completed"`
	SortOrder   int        `gorm:"not null;default:0" json:"order"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (s *Subtask) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// SyncCompletedAt stamps or clears the completion time to match the
// is_completed flag. Called on every save path, not just creation.
func (s *Subtask) SyncCompletedAt(now time.Time) {
	if s.IsCompleted && s.CompletedAt == nil {
		s.CompletedAt = &now
	} else if !s.IsCompleted && s.CompletedAt != nil {
		s.CompletedAt = nil
	}
}
