package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/taskhive/engine/internal/authz"
	"github.com/taskhive/engine/internal/models"
	"github.com/taskhive/engine/internal/repository"
	appErr "github.com/taskhive/engine/pkg/errors"
	"gorm.io/gorm"
)

type MemberService interface {
	List(ctx context.Context, actor *models.User, projectID uuid.UUID) ([]models.ProjectMember, error)
	Add(ctx context.Context, actor *models.User, projectID uuid.UUID, email, role string) (*models.ProjectMember, error)
	UpdateRole(ctx context.Context, actor *models.User, projectID, memberID uuid.UUID, role string) (*models.ProjectMember, error)
	Remove(ctx context.Context, actor *models.User, projectID, memberID uuid.UUID) error
}

type memberService struct {
	db       *gorm.DB
	projects repository.ProjectRepository
	members  repository.MemberRepository
	users    repository.UserRepository
	recorder *ActivityRecorder
}

func NewMemberService(db *gorm.DB, projects repository.ProjectRepository, members repository.MemberRepository, users repository.UserRepository, recorder *ActivityRecorder) MemberService {
	return &memberService{db: db, projects: projects, members: members, users: users, recorder: recorder}
}

var _ MemberService = (*memberService)(nil)

func (s *memberService) authorize(ctx context.Context, actor *models.User, projectID uuid.UUID, cap authz.Capability) (*models.Project, error) {
	var p models.Project
	if err := s.projects.GetByID(ctx, projectID, &p); err != nil {
		return nil, err
	}
	membership, err := s.members.Get(ctx, projectID, actor.ID)
	if err != nil {
		return nil, err
	}
	if !authz.CanOnProject(actor.ID, &p, membership, authz.CapView) {
		return nil, appErr.New(appErr.CodeNotFound, "project not found")
	}
	if cap != authz.CapView && !authz.CanOnProject(actor.ID, &p, membership, cap) {
		return nil, appErr.New(appErr.CodeForbidden, "insufficient role")
	}
	return &p, nil
}

func (s *memberService) List(ctx context.Context, actor *models.User, projectID uuid.UUID) ([]models.ProjectMember, error) {
	if _, err := s.authorize(ctx, actor, projectID, authz.CapView); err != nil {
		return nil, err
	}
	return s.members.List(ctx, projectID)
}

func (s *memberService) Add(ctx context.Context, actor *models.User, projectID uuid.UUID, email, role string) (*models.ProjectMember, error) {
	project, err := s.authorize(ctx, actor, projectID, authz.CapManageMembers)
	if err != nil {
		return nil, err
	}

	// The owner role exists only on the auto-enrolled creator row; it can
	// never be granted through this endpoint.
	if role == models.RoleOwner {
		return nil, appErr.New(appErr.CodeInvalidOperation, "owner role cannot be assigned")
	}
	if role == "" {
		role = models.RoleMember
	}
	if !models.ValidMemberRole(role) {
		return nil, appErr.FieldError("role", "must be one of admin, member, viewer")
	}

	var user models.User
	if err := s.users.GetByEmail(ctx, email, &user); err != nil {
		return nil, err
	}

	existing, err := s.members.Get(ctx, projectID, user.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, appErr.New(appErr.CodeConflict, "user is already a member of this project")
	}

	actorID := actor.ID
	member := &models.ProjectMember{
		ProjectID:   projectID,
		UserID:      user.ID,
		Role:        role,
		InvitedByID: &actorID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(member).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeConflict, "membership already exists")
		}
		desc := "Added " + user.Username + " to project '" + project.Name + "' as " + role
		return s.recorder.Record(tx, actor, models.ActionAssigned, "project", project.ID.String(), project.Name, nil, desc)
	})
	if err != nil {
		return nil, err
	}
	member.User = &user
	return member, nil
}

func (s *memberService) getMember(ctx context.Context, projectID, memberID uuid.UUID) (*models.ProjectMember, error) {
	var m models.ProjectMember
	err := s.db.WithContext(ctx).Preload("User").
		Where("id = ? AND project_id = ?", memberID, projectID).First(&m).Error
	if err == gorm.ErrRecordNotFound {
		return nil, appErr.New(appErr.CodeNotFound, "member not found")
	}
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "get member failed")
	}
	return &m, nil
}

func (s *memberService) UpdateRole(ctx context.Context, actor *models.User, projectID, memberID uuid.UUID, role string) (*models.ProjectMember, error) {
	project, err := s.authorize(ctx, actor, projectID, authz.CapManageMembers)
	if err != nil {
		return nil, err
	}

	member, err := s.getMember(ctx, projectID, memberID)
	if err != nil {
		return nil, err
	}
	// Owner role is immutable regardless of the caller's role: it is set
	// at creation and never changed or removed.
	if member.Role == models.RoleOwner {
		return nil, appErr.New(appErr.CodeInvalidOperation, "owner membership cannot be modified")
	}
	if role == models.RoleOwner {
		return nil, appErr.New(appErr.CodeInvalidOperation, "owner role cannot be assigned")
	}
	if !models.ValidMemberRole(role) {
		return nil, appErr.FieldError("role", "must be one of admin, member, viewer")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(member).Update("role", role).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "update member role failed")
		}
		delta := map[string]any{"role": role, "user_id": member.UserID}
		return s.recorder.Record(tx, actor, models.ActionUpdated, "project", project.ID.String(), project.Name, delta, "")
	})
	if err != nil {
		return nil, err
	}
	member.Role = role
	return member, nil
}

func (s *memberService) Remove(ctx context.Context, actor *models.User, projectID, memberID uuid.UUID) error {
	project, err := s.authorize(ctx, actor, projectID, authz.CapManageMembers)
	if err != nil {
		return err
	}

	member, err := s.getMember(ctx, projectID, memberID)
	if err != nil {
		return err
	}
	if member.Role == models.RoleOwner {
		return appErr.New(appErr.CodeInvalidOperation, "owner membership cannot be removed")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(member).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "remove member failed")
		}
		delta := map[string]any{"user_id": member.UserID}
		return s.recorder.Record(tx, actor, models.ActionRemoved, "project", project.ID.String(), project.Name, delta, "")
	})
}
