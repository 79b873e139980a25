package models

import (
	"regexp"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var hslPattern = regexp.MustCompile(`^hsl\(.+\)$`)

// ValidTagColor reports whether color is in HSL notation, e.g. "hsl(210 100% 50%)".
func ValidTagColor(color string) bool {
	return hslPattern.MatchString(color)
}

// Tag is a user-owned label. Tag names are unique per owner.
type Tag struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(50);not null;index:idx_tags_owner_name,unique" json:"name" validate:"required"`
	Color     string    `gorm:"type:varchar(30);not null" json:"color"`
	OwnerID   uint      `gorm:"not null;index:idx_tags_owner_name,unique" json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TaskTag links a task to a tag. It is a real entity rather than a bare join
// table because its id and created_at are referenced by the audit trail.
type TaskTag struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TaskID    uuid.UUID `gorm:"type:uuid;not null;index:idx_task_tags_task_tag,unique" json:"task_id"`
	TagID     uuid.UUID `gorm:"type:uuid;not null;index:idx_task_tags_task_tag,unique" json:"tag_id"`
	CreatedAt time.Time `json:"created_at"`

	Tag Tag `gorm:"foreignKey:TagID" json:"tag"`
}

func (tt *TaskTag) BeforeCreate(tx *gorm.DB) error {
	if tt.ID == uuid.Nil {
		tt.ID = uuid.New()
	}
	return nil
}
