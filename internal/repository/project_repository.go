package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/taskhive/engine/internal/models"
	appErr "github.com/taskhive/engine/pkg/errors"
	"gorm.io/gorm"
)

type ProjectRepository interface {
	BaseRepository[models.Project]
	// ListVisible returns projects the user owns or is a member of,
	// newest first, as a single OR query.
	ListVisible(ctx context.Context, userID uint) ([]models.Project, error)
}

type projectRepository struct {
	BaseRepository[models.Project]
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{BaseRepository: NewBaseRepository[models.Project](db), db: db}
}

func (r *projectRepository) ListVisible(ctx context.Context, userID uint) ([]models.Project, error) {
	var out []models.Project
	err := r.db.WithContext(ctx).
		Where("owner_id = ? OR id IN (?)", userID,
			r.db.Model(&models.ProjectMember{}).Select("project_id").Where("user_id = ?", userID)).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list projects failed")
	}
	return out, nil
}

type MemberRepository interface {
	BaseRepository[models.ProjectMember]
	// Get returns the membership row for (project, user), or nil if absent.
	Get(ctx context.Context, projectID uuid.UUID, userID uint) (*models.ProjectMember, error)
	List(ctx context.Context, projectID uuid.UUID) ([]models.ProjectMember, error)
}

type memberRepository struct {
	BaseRepository[models.ProjectMember]
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{BaseRepository: NewBaseRepository[models.ProjectMember](db), db: db}
}

func (r *memberRepository) Get(ctx context.Context, projectID uuid.UUID, userID uint) (*models.ProjectMember, error) {
	var m models.ProjectMember
	err := r.db.WithContext(ctx).Where("project_id = ? AND user_id = ?", projectID, userID).First(&m).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "get membership failed")
	}
	return &m, nil
}

func (r *memberRepository) List(ctx context.Context, projectID uuid.UUID) ([]models.ProjectMember, error) {
	var out []models.ProjectMember
	err := r.db.WithContext(ctx).Preload("User").
		Where("project_id = ?", projectID).
		Order("role, invited_at").
		Find(&out).Error
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list members failed")
	}
	return out, nil
}
