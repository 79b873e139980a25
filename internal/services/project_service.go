package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/taskhive/engine/internal/authz"
	"github.com/taskhive/engine/internal/models"
	"github.com/taskhive/engine/internal/repository"
	appErr "github.com/taskhive/engine/pkg/errors"
	"github.com/taskhive/engine/pkg/logger"
	"github.com/taskhive/engine/pkg/sanitize"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProjectService interface {
	Create(ctx context.Context, actor *models.User, in *ProjectCreateInput) (*models.Project, error)
	Get(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Project, error)
	List(ctx context.Context, actor *models.User) ([]models.Project, error)
	Update(ctx context.Context, actor *models.User, id uuid.UUID, in *ProjectUpdateInput) (*models.Project, error)
	Delete(ctx context.Context, actor *models.User, id uuid.UUID) error
}

type ProjectCreateInput struct {
	Name        string
	Description string
}

type ProjectUpdateInput struct {
	Name        *string
	Description *string
	// BoardColumns replaces the board configuration when non-nil.
	BoardColumns []models.BoardColumn
}

type projectService struct {
	db       *gorm.DB
	projects repository.ProjectRepository
	members  repository.MemberRepository
	recorder *ActivityRecorder
}

func NewProjectService(db *gorm.DB, projects repository.ProjectRepository, members repository.MemberRepository, recorder *ActivityRecorder) ProjectService {
	return &projectService{db: db, projects: projects, members: members, recorder: recorder}
}

var _ ProjectService = (*projectService)(nil)

// authorizeProject mirrors authorizeTask: no view reads as not_found, view
// without cap reads as forbidden.
func (s *projectService) authorizeProject(ctx context.Context, actor *models.User, project *models.Project, cap authz.Capability) error {
	membership, err := s.members.Get(ctx, project.ID, actor.ID)
	if err != nil {
		return err
	}
	if !authz.CanOnProject(actor.ID, project, membership, authz.CapView) {
		return appErr.New(appErr.CodeNotFound, "project not found")
	}
	if cap != authz.CapView && !authz.CanOnProject(actor.ID, project, membership, cap) {
		return appErr.New(appErr.CodeForbidden, "insufficient role")
	}
	return nil
}

// Create inserts the project and auto-enrolls the creator as owner in the
// same transaction: a project must never exist with zero members.
func (s *projectService) Create(ctx context.Context, actor *models.User, in *ProjectCreateInput) (*models.Project, error) {
	in.Name = sanitize.Text(in.Name)
	in.Description = sanitize.Text(in.Description)
	if in.Name == "" || len(in.Name) > maxTitleLen {
		return nil, appErr.FieldError("name", "must be between 1 and 200 characters")
	}
	if len(in.Description) > maxDescriptionLen {
		return nil, appErr.FieldError("description", "must be at most 2000 characters")
	}

	project := &models.Project{Name: in.Name, Description: in.Description, OwnerID: actor.ID}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "create project failed")
		}
		owner := models.ProjectMember{ProjectID: project.ID, UserID: actor.ID, Role: models.RoleOwner}
		if err := tx.Create(&owner).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "enroll project owner failed")
		}
		return s.recorder.Record(tx, actor, models.ActionCreated, "project", project.ID.String(), project.Name, nil, "")
	})
	if err != nil {
		return nil, err
	}

	logger.L().Info("project created", zap.String("project_id", project.ID.String()), zap.Uint("owner_id", actor.ID))
	return project, nil
}

func (s *projectService) Get(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Project, error) {
	var p models.Project
	if err := s.projects.GetByID(ctx, id, &p); err != nil {
		return nil, err
	}
	if err := s.authorizeProject(ctx, actor, &p, authz.CapView); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *projectService) List(ctx context.Context, actor *models.User) ([]models.Project, error) {
	return s.projects.ListVisible(ctx, actor.ID)
}

func (s *projectService) Update(ctx context.Context, actor *models.User, id uuid.UUID, in *ProjectUpdateInput) (*models.Project, error) {
	var p models.Project
	if err := s.projects.GetByID(ctx, id, &p); err != nil {
		return nil, err
	}
	if err := s.authorizeProject(ctx, actor, &p, authz.CapManageProject); err != nil {
		return nil, err
	}

	in.Name = sanitize.TextPtr(in.Name)
	in.Description = sanitize.TextPtr(in.Description)

	delta := map[string]any{}
	if in.Name != nil {
		if *in.Name == "" || len(*in.Name) > maxTitleLen {
			return nil, appErr.FieldError("name", "must be between 1 and 200 characters")
		}
		delta["name"] = *in.Name
		p.Name = *in.Name
	}
	if in.Description != nil {
		if len(*in.Description) > maxDescriptionLen {
			return nil, appErr.FieldError("description", "must be at most 2000 characters")
		}
		delta["description"] = *in.Description
		p.Description = *in.Description
	}
	if in.BoardColumns != nil {
		b, err := json.Marshal(map[string]any{"columns": in.BoardColumns})
		if err != nil {
			return nil, appErr.Wrap(err, appErr.CodeInvalid, "invalid board columns")
		}
		delta["board_columns"] = in.BoardColumns
		p.BoardSettings = datatypes.JSON(b)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&p).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "update project failed")
		}
		return s.recorder.Record(tx, actor, models.ActionUpdated, "project", p.ID.String(), p.Name, delta, "")
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete hard-deletes the project and cascades a real delete through every
// task (soft-deleted ones included), their subtasks, tag links and
// association rows. Cascade delete is never soft.
func (s *projectService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	var p models.Project
	if err := s.projects.GetByID(ctx, id, &p); err != nil {
		return err
	}
	if err := s.authorizeProject(ctx, actor, &p, authz.CapManageProject); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taskIDs []uuid.UUID
		err := tx.Unscoped().Model(&models.Task{}).Where("project_id = ?", p.ID).Pluck("id", &taskIDs).Error
		if err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "collect project tasks failed")
		}

		if len(taskIDs) > 0 {
			if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.Subtask{}).Error; err != nil {
				return appErr.Wrap(err, appErr.CodeInternal, "cascade delete subtasks failed")
			}
			if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.TaskTag{}).Error; err != nil {
				return appErr.Wrap(err, appErr.CodeInternal, "cascade delete task tags failed")
			}
			if err := tx.Exec("DELETE FROM task_assignees WHERE task_id IN ?", taskIDs).Error; err != nil {
				return appErr.Wrap(err, appErr.CodeInternal, "cascade delete assignees failed")
			}
			if err := tx.Exec("DELETE FROM task_blockers WHERE task_id IN ? OR blocked_by_id IN ?", taskIDs, taskIDs).Error; err != nil {
				return appErr.Wrap(err, appErr.CodeInternal, "cascade delete dependencies failed")
			}
			if err := tx.Unscoped().Where("id IN ?", taskIDs).Delete(&models.Task{}).Error; err != nil {
				return appErr.Wrap(err, appErr.CodeInternal, "cascade delete tasks failed")
			}
		}

		if err := tx.Where("project_id = ?", p.ID).Delete(&models.ProjectMember{}).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "delete memberships failed")
		}
		if err := tx.Delete(&p).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "delete project failed")
		}
		return s.recorder.Record(tx, actor, models.ActionDeleted, "project", p.ID.String(), p.Name, nil, "")
	})
	if err != nil {
		return err
	}

	logger.L().Info("project deleted", zap.String("project_id", p.ID.String()), zap.Uint("actor_id", actor.ID))
	return nil
}
