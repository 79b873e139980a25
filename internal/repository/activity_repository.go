package repository

import (
	"context"

	"github.com/taskhive/engine/internal/models"
	appErr "github.com/taskhive/engine/pkg/errors"
	"gorm.io/gorm"
)

// activityFeedLimit caps every activity read; the trail itself is unbounded.
const activityFeedLimit = 50

// ActivityRepository is append-only by construction: it exposes no update
// or delete operation, and none may ever be added.
type ActivityRepository interface {
	// Append writes one entry on the provided handle, which must be the
	// same transaction as the mutation the entry describes.
	Append(tx *gorm.DB, entry *models.ActivityLog) error
	ListByActor(ctx context.Context, actorID uint) ([]models.ActivityLog, error)
	ListByTarget(ctx context.Context, targetType, targetID string) ([]models.ActivityLog, error)
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Append(tx *gorm.DB, entry *models.ActivityLog) error {
	if err := tx.Create(entry).Error; err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "append activity failed")
	}
	return nil
}

func (r *activityRepository) ListByActor(ctx context.Context, actorID uint) ([]models.ActivityLog, error) {
	var out []models.ActivityLog
	err := r.db.WithContext(ctx).
		Where("actor_id = ?", actorID).
		Order("created_at DESC").
		Limit(activityFeedLimit).
		Find(&out).Error
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list activity by actor failed")
	}
	return out, nil
}

func (r *activityRepository) ListByTarget(ctx context.Context, targetType, targetID string) ([]models.ActivityLog, error) {
	var out []models.ActivityLog
	err := r.db.WithContext(ctx).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("created_at DESC").
		Limit(activityFeedLimit).
		Find(&out).Error
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list activity by target failed")
	}
	return out, nil
}
