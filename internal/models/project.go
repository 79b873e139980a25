package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Project is a collection of tasks exclusively owned by one user, with
// zero-or-more role-based memberships on top of that ownership.
type Project struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string         `gorm:"not null" json:"name" validate:"required"`
	Description   string         `gorm:"type:text" json:"description"`
	OwnerID       uint           `gorm:"index;not null" json:"owner_id"`
	BoardSettings datatypes.JSON `gorm:"type:jsonb" json:"board_settings"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// BoardColumn is one column of a project's kanban board configuration.
type BoardColumn struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Status  string `json:"status"`
	Visible bool   `json:"visible"`
}

// DefaultBoardColumns is the fixed four-column layout used when a project
// has no board configuration of its own.
func DefaultBoardColumns() []BoardColumn {
	return []BoardColumn{
		{ID: "backlog", Title: "Backlog", Status: StatusBacklog, Visible: false},
		{ID: "in_progress", Title: "In Progress", Status: StatusInProgress, Visible: true},
		{ID: "review", Title: "Review", Status: StatusReview, Visible: true},
		{ID: "done", Title: "Done", Status: StatusDone, Visible: true},
	}
}

// BoardColumns returns the configured columns, falling back to the defaults.
func (p *Project) BoardColumns() []BoardColumn {
	if len(p.BoardSettings) > 0 {
		var cfg struct {
			Columns []BoardColumn `json:"columns"`
		}
		if err := json.Unmarshal(p.BoardSettings, &cfg); err == nil && len(cfg.Columns) > 0 {
			return cfg.Columns
		}
	}
	return DefaultBoardColumns()
}
