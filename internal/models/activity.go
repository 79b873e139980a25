package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Activity actions.
const (
	ActionCreated       = "created"
	ActionUpdated       = "updated"
	ActionDeleted       = "deleted"
	ActionCompleted     = "completed"
	ActionStatusChanged = "status_changed"
	ActionAssigned      = "assigned"
	ActionTagged        = "tagged"
	ActionUntagged      = "untagged"
	ActionRemoved       = "removed"
)

// ActivityLog is one immutable row of the audit trail. Rows are written in
// the same transaction as the mutation they describe and are never updated
// or deleted once created, by any actor. The actor reference is SET NULL so
// entries survive actor deletion; target_title is a point-in-time snapshot
// that survives target deletion.
type ActivityLog struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ActorID     *uint          `gorm:"index:idx_activity_actor_created" json:"actor_id"`
	Action      string         `gorm:"type:varchar(20);not null" json:"action"`
	TargetType  string         `gorm:"type:varchar(50);not null;index:idx_activity_target" json:"target_type"`
	TargetID    string         `gorm:"type:varchar(50);not null;index:idx_activity_target" json:"target_id"`
	TargetTitle string         `gorm:"type:varchar(200);not null" json:"target_title"`
	Delta       datatypes.JSON `gorm:"type:jsonb" json:"delta"`
	Description string         `gorm:"type:text" json:"description"`
	CreatedAt   time.Time      `gorm:"index:idx_activity_actor_created,sort:desc" json:"created_at"`

	Actor *User `gorm:"foreignKey:ActorID;constraint:OnDelete:SET NULL" json:"actor,omitempty"`
}

func (a *ActivityLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
