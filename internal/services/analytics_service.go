package services

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/taskhive/engine/internal/models"
	appErr "github.com/taskhive/engine/pkg/errors"
	"gorm.io/gorm"
)

// AnalyticsService is read-only aggregation over the task aggregate; it
// owns no invariants of its own.
type AnalyticsService interface {
	DashboardStats(ctx context.Context, actor *models.User) (*DashboardStats, error)
	TaskDistribution(ctx context.Context, actor *models.User) (*TaskDistribution, error)
	ProjectPerformance(ctx context.Context, actor *models.User) ([]ProjectPerformance, error)
	ProductivityTrend(ctx context.Context, actor *models.User) ([]TrendPoint, error)
}

type DashboardStats struct {
	TotalTasks      int64            `json:"total_tasks"`
	CompletedTasks  int64            `json:"completed_tasks"`
	PendingTasks    int64            `json:"pending_tasks"`
	TasksByPriority map[string]int64 `json:"tasks_by_priority"`
}

type DistributionBucket struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

type TaskDistribution struct {
	Status   []DistributionBucket `json:"status"`
	Priority []DistributionBucket `json:"priority"`
}

type ProjectPerformance struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	TotalTasks     int64     `json:"total_tasks"`
	CompletedTasks int64     `json:"completed_tasks"`
	PendingTasks   int64     `json:"pending_tasks"`
	CompletionRate float64   `json:"completion_rate"`
}

type TrendPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type analyticsService struct {
	db *gorm.DB
}

func NewAnalyticsService(db *gorm.DB) AnalyticsService {
	return &analyticsService{db: db}
}

var _ AnalyticsService = (*analyticsService)(nil)

func (s *analyticsService) owned(ctx context.Context, actorID uint) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.Task{}).Where("owner_id = ?", actorID)
}

func (s *analyticsService) DashboardStats(ctx context.Context, actor *models.User) (*DashboardStats, error) {
	stats := &DashboardStats{TasksByPriority: map[string]int64{}}

	if err := s.owned(ctx, actor.ID).Count(&stats.TotalTasks).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "count tasks failed")
	}
	if err := s.owned(ctx, actor.ID).Where("is_completed = ?", true).Count(&stats.CompletedTasks).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "count completed tasks failed")
	}
	stats.PendingTasks = stats.TotalTasks - stats.CompletedTasks

	var rows []DistributionBucket
	err := s.owned(ctx, actor.ID).
		Select("priority AS value, COUNT(id) AS count").
		Group("priority").
		Scan(&rows).Error
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "priority breakdown failed")
	}
	// Every priority shows up even at zero.
	for _, p := range models.Priorities() {
		stats.TasksByPriority[p] = 0
	}
	for _, r := range rows {
		stats.TasksByPriority[r.Value] = r.Count
	}
	return stats, nil
}

func (s *analyticsService) TaskDistribution(ctx context.Context, actor *models.User) (*TaskDistribution, error) {
	dist := &TaskDistribution{}

	err := s.owned(ctx, actor.ID).
		Select("status AS value, COUNT(id) AS count").
		Group("status").
		Order("count DESC").
		Scan(&dist.Status).Error
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "status distribution failed")
	}

	err = s.owned(ctx, actor.ID).
		Select("priority AS value, COUNT(id) AS count").
		Group("priority").
		Order("count DESC").
		Scan(&dist.Priority).Error
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "priority distribution failed")
	}
	return dist, nil
}

func (s *analyticsService) ProjectPerformance(ctx context.Context, actor *models.User) ([]ProjectPerformance, error) {
	var projects []models.Project
	if err := s.db.WithContext(ctx).Where("owner_id = ?", actor.ID).Find(&projects).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list projects failed")
	}

	out := make([]ProjectPerformance, 0, len(projects))
	for _, p := range projects {
		perf := ProjectPerformance{ID: p.ID, Name: p.Name}
		base := s.db.WithContext(ctx).Model(&models.Task{}).Where("project_id = ?", p.ID)
		if err := base.Count(&perf.TotalTasks).Error; err != nil {
			return nil, appErr.Wrap(err, appErr.CodeInternal, "count project tasks failed")
		}
		err := s.db.WithContext(ctx).Model(&models.Task{}).
			Where("project_id = ? AND is_completed = ?", p.ID, true).
			Count(&perf.CompletedTasks).Error
		if err != nil {
			return nil, appErr.Wrap(err, appErr.CodeInternal, "count completed project tasks failed")
		}
		perf.PendingTasks = perf.TotalTasks - perf.CompletedTasks
		if perf.TotalTasks > 0 {
			rate := float64(perf.CompletedTasks) / float64(perf.TotalTasks) * 100
			perf.CompletionRate = math.Round(rate*10) / 10
		}
		out = append(out, perf)
	}
	return out, nil
}

// ProductivityTrend counts tasks completed per day over the last 7 days.
func (s *analyticsService) ProductivityTrend(ctx context.Context, actor *models.User) ([]TrendPoint, error) {
	since := time.Now().AddDate(0, 0, -7)
	var points []TrendPoint
	err := s.owned(ctx, actor.ID).
		Where("is_completed = ? AND updated_at >= ?", true, since).
		Select("date(updated_at) AS date, COUNT(id) AS count").
		Group("date(updated_at)").
		Order("date").
		Scan(&points).Error
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "productivity trend failed")
	}
	return points, nil
}
