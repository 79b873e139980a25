package services

import (
	"context"

	"github.com/taskhive/engine/internal/models"
	"github.com/taskhive/engine/internal/repository"
)

// ActivityService is the read surface of the audit trail. There is no write
// surface here beyond the recorder, and no update or delete anywhere.
type ActivityService interface {
	ListMine(ctx context.Context, actor *models.User) ([]models.ActivityLog, error)
	ListForTarget(ctx context.Context, actor *models.User, targetType, targetID string) ([]models.ActivityLog, error)
}

type activityService struct {
	activity repository.ActivityRepository
}

func NewActivityService(activity repository.ActivityRepository) ActivityService {
	return &activityService{activity: activity}
}

var _ ActivityService = (*activityService)(nil)

func (s *activityService) ListMine(ctx context.Context, actor *models.User) ([]models.ActivityLog, error) {
	return s.activity.ListByActor(ctx, actor.ID)
}

func (s *activityService) ListForTarget(ctx context.Context, actor *models.User, targetType, targetID string) ([]models.ActivityLog, error) {
	return s.activity.ListByTarget(ctx, targetType, targetID)
}
