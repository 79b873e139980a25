package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuickNote is a free-form capture that can be converted into a task once.
// The converted-task link is SET NULL so the note survives task deletion.
type QuickNote struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uint       `gorm:"index;not null" json:"user_id"`
	Content         string     `gorm:"type:text;not null" json:"content" validate:"required"`
	IsArchived      bool       `gorm:"not null;default:false" json:"is_archived"`
	ConvertedTaskID *uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"converted_task_id"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (n *QuickNote) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
