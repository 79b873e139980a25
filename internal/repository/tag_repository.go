package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/taskhive/engine/internal/models"
	appErr "github.com/taskhive/engine/pkg/errors"
	"gorm.io/gorm"
)

type TagRepository interface {
	BaseRepository[models.Tag]
	ListByOwner(ctx context.Context, ownerID uint) ([]models.Tag, error)
	GetOwned(ctx context.Context, id uuid.UUID, ownerID uint, dest *models.Tag) error
}

type tagRepository struct {
	BaseRepository[models.Tag]
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{BaseRepository: NewBaseRepository[models.Tag](db), db: db}
}

func (r *tagRepository) ListByOwner(ctx context.Context, ownerID uint) ([]models.Tag, error) {
	var out []models.Tag
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("name").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list tags failed")
	}
	return out, nil
}

func (r *tagRepository) GetOwned(ctx context.Context, id uuid.UUID, ownerID uint, dest *models.Tag) error {
	err := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(dest).Error
	if err == gorm.ErrRecordNotFound {
		return appErr.New(appErr.CodeNotFound, "tag not found")
	}
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "get tag failed")
	}
	return nil
}

type NoteRepository interface {
	BaseRepository[models.QuickNote]
	ListByUser(ctx context.Context, userID uint, archived *bool) ([]models.QuickNote, error)
}

type noteRepository struct {
	BaseRepository[models.QuickNote]
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) NoteRepository {
	return &noteRepository{BaseRepository: NewBaseRepository[models.QuickNote](db), db: db}
}

func (r *noteRepository) ListByUser(ctx context.Context, userID uint, archived *bool) ([]models.QuickNote, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if archived != nil {
		q = q.Where("is_archived = ?", *archived)
	}
	var out []models.QuickNote
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list notes failed")
	}
	return out, nil
}
