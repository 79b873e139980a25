package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Membership roles, ordered owner > admin > member > viewer for permission purposes.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleViewer = "viewer"
)

// ValidMemberRole reports whether role is one of the closed role set.
func ValidMemberRole(role string) bool {
	switch role {
	case RoleOwner, RoleAdmin, RoleMember, RoleViewer:
		return true
	}
	return false
}

// ProjectMember links a user to a project with a role. Exactly one membership
// may exist per (project, user); the project creator is auto-enrolled as owner
// atomically with project creation and that owner row is immutable.
type ProjectMember struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index:idx_members_project_user,unique" json:"project_id"`
	UserID    uint      `gorm:"not null;index:idx_members_project_user,unique" json:"user_id"`
	Role      string    `gorm:"type:varchar(20);not null;default:member" json:"role"`

	InvitedByID *uint     `gorm:"index" json:"invited_by_id"`
	InvitedAt   time.Time `gorm:"autoCreateTime" json:"invited_at"`
	Accepted    bool      `gorm:"not null;default:true" json:"accepted"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (m *ProjectMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
