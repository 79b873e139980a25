package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/taskhive/engine/internal/models"
	"github.com/taskhive/engine/internal/repository"
	appErr "github.com/taskhive/engine/pkg/errors"
	"github.com/taskhive/engine/pkg/sanitize"
	"gorm.io/gorm"
)

const maxTagNameLen = 50

type TagService interface {
	List(ctx context.Context, actor *models.User) ([]models.Tag, error)
	Create(ctx context.Context, actor *models.User, name, color string) (*models.Tag, error)
	Update(ctx context.Context, actor *models.User, id uuid.UUID, name, color *string) (*models.Tag, error)
	Delete(ctx context.Context, actor *models.User, id uuid.UUID) error
}

type tagService struct {
	db       *gorm.DB
	tags     repository.TagRepository
	recorder *ActivityRecorder
}

func NewTagService(db *gorm.DB, tags repository.TagRepository, recorder *ActivityRecorder) TagService {
	return &tagService{db: db, tags: tags, recorder: recorder}
}

var _ TagService = (*tagService)(nil)

func (s *tagService) List(ctx context.Context, actor *models.User) ([]models.Tag, error) {
	return s.tags.ListByOwner(ctx, actor.ID)
}

func validateTag(name, color string) map[string]string {
	fields := map[string]string{}
	if name == "" || len(name) > maxTagNameLen {
		fields["name"] = "must be between 1 and 50 characters"
	}
	if !models.ValidTagColor(color) {
		fields["color"] = "must be in HSL notation, e.g. hsl(210 100% 50%)"
	}
	return fields
}

func (s *tagService) Create(ctx context.Context, actor *models.User, name, color string) (*models.Tag, error) {
	name = sanitize.Text(name)
	if fields := validateTag(name, color); len(fields) > 0 {
		return nil, appErr.Validation(fields)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Tag{}).Where("name = ? AND owner_id = ?", name, actor.ID).Count(&count).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "check tag name failed")
	}
	if count > 0 {
		return nil, appErr.New(appErr.CodeConflict, "tag with this name already exists")
	}

	tag := &models.Tag{Name: name, Color: color, OwnerID: actor.ID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(tag).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeConflict, "tag with this name already exists")
		}
		return s.recorder.Record(tx, actor, models.ActionCreated, "tag", tag.ID.String(), tag.Name, nil, "")
	})
	if err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *tagService) Update(ctx context.Context, actor *models.User, id uuid.UUID, name, color *string) (*models.Tag, error) {
	var tag models.Tag
	if err := s.tags.GetOwned(ctx, id, actor.ID, &tag); err != nil {
		return nil, err
	}

	name = sanitize.TextPtr(name)
	if name != nil {
		if *name == "" || len(*name) > maxTagNameLen {
			return nil, appErr.FieldError("name", "must be between 1 and 50 characters")
		}
		if *name != tag.Name {
			var count int64
			if err := s.db.WithContext(ctx).Model(&models.Tag{}).Where("name = ? AND owner_id = ? AND id <> ?", *name, actor.ID, id).Count(&count).Error; err != nil {
				return nil, appErr.Wrap(err, appErr.CodeInternal, "check tag name failed")
			}
			if count > 0 {
				return nil, appErr.New(appErr.CodeConflict, "tag with this name already exists")
			}
		}
		tag.Name = *name
	}
	if color != nil {
		if !models.ValidTagColor(*color) {
			return nil, appErr.FieldError("color", "must be in HSL notation, e.g. hsl(210 100% 50%)")
		}
		tag.Color = *color
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&tag).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "update tag failed")
		}
		return s.recorder.Record(tx, actor, models.ActionUpdated, "tag", tag.ID.String(), tag.Name, nil, "")
	})
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// Delete hard-deletes the tag and its task links.
func (s *tagService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	var tag models.Tag
	if err := s.tags.GetOwned(ctx, id, actor.ID, &tag); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", tag.ID).Delete(&models.TaskTag{}).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "delete tag links failed")
		}
		if err := tx.Delete(&tag).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "delete tag failed")
		}
		return s.recorder.Record(tx, actor, models.ActionDeleted, "tag", tag.ID.String(), tag.Name, nil, "")
	})
}
