package models

import (
	"time"

	"gorm.io/datatypes"
)

// User is a platform user. Users keep a small integer id for legacy
// compatibility with the string-encoded activity target ids.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"uniqueIndex;not null" json:"username" validate:"required"`
	Email        string `gorm:"uniqueIndex;not null" json:"email" validate:"required,email"`
	PasswordHash string `gorm:"not null" json:"-"`

	DashboardPreferences    datatypes.JSON `gorm:"type:jsonb" json:"dashboard_preferences"`
	NotificationPreferences datatypes.JSON `gorm:"type:jsonb" json:"notification_preferences"`
	AppPreferences          datatypes.JSON `gorm:"type:jsonb" json:"app_preferences"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
