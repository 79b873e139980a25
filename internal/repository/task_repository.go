package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/taskhive/engine/internal/models"
	appErr "github.com/taskhive/engine/pkg/errors"
	"gorm.io/gorm"
)

// TaskFilters narrows task list queries. Zero values mean "no filter".
type TaskFilters struct {
	OwnerID        uint
	ProjectID      *uuid.UUID
	IsCompleted    *bool
	Priority       string
	Status         string
	Search         string
	IncludeDeleted bool
	Page           int
	PageSize       int
}

type TaskRepository interface {
	BaseRepository[models.Task]
	// GetFull loads a task with its tags, assignees, blockers and subtasks.
	// withDeleted reaches soft-deleted rows.
	GetFull(ctx context.Context, id uuid.UUID, withDeleted bool, dest *models.Task) error
	List(ctx context.Context, f TaskFilters) ([]models.Task, int64, error)
	// ResolveOwnedTags resolves tag ids to tags owned by ownerID, silently
	// dropping ids that do not resolve. Tolerant, unlike assignee and
	// dependency resolution.
	ResolveOwnedTags(ctx context.Context, ids []uuid.UUID, ownerID uint) ([]models.Tag, error)
	// ResolveStrict loads every task id or fails with not_found.
	ResolveStrict(ctx context.Context, ids []uuid.UUID) ([]models.Task, error)
	SubtaskStats(ctx context.Context, taskID uuid.UUID) (models.SubtaskStats, error)
}

type taskRepository struct {
	BaseRepository[models.Task]
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{BaseRepository: NewBaseRepository[models.Task](db), db: db}
}

func (r *taskRepository) GetFull(ctx context.Context, id uuid.UUID, withDeleted bool, dest *models.Task) error {
	q := r.db.WithContext(ctx).
		Preload("TaskTags.Tag").
		Preload("Assignees").
		Preload("BlockedBy").
		Preload("Subtasks", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") })
	if withDeleted {
		q = q.Unscoped()
	}
	if err := q.First(dest, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return appErr.New(appErr.CodeNotFound, "task not found")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "get task failed")
	}
	return nil
}

func (r *taskRepository) List(ctx context.Context, f TaskFilters) ([]models.Task, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Task{})
	if f.IncludeDeleted {
		q = q.Unscoped()
	}
	if f.OwnerID != 0 {
		q = q.Where("owner_id = ?", f.OwnerID)
	}
	if f.ProjectID != nil {
		q = q.Where("project_id = ?", *f.ProjectID)
	}
	if f.IsCompleted != nil {
		q = q.Where("is_completed = ?", *f.IsCompleted)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("title LIKE ? OR description LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, appErr.Wrap(err, appErr.CodeInternal, "count tasks failed")
	}

	page, size := f.Page, f.PageSize
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}

	var out []models.Task
	err := q.Preload("TaskTags.Tag").
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&out).Error
	if err != nil {
		return nil, 0, appErr.Wrap(err, appErr.CodeInternal, "list tasks failed")
	}
	return out, total, nil
}

func (r *taskRepository) ResolveOwnedTags(ctx context.Context, ids []uuid.UUID, ownerID uint) ([]models.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tags []models.Tag
	err := r.db.WithContext(ctx).Where("id IN ? AND owner_id = ?", ids, ownerID).Find(&tags).Error
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "resolve tags failed")
	}
	return tags, nil
}

func (r *taskRepository) ResolveStrict(ctx context.Context, ids []uuid.UUID) ([]models.Task, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var tasks []models.Task
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tasks).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "resolve tasks failed")
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	if len(tasks) != len(seen) {
		return nil, appErr.New(appErr.CodeNotFound, "one or more tasks not found")
	}
	return tasks, nil
}

func (r *taskRepository) SubtaskStats(ctx context.Context, taskID uuid.UUID) (models.SubtaskStats, error) {
	var stats models.SubtaskStats
	var total, completed int64
	if err := r.db.WithContext(ctx).Model(&models.Subtask{}).Where("task_id = ?", taskID).Count(&total).Error; err != nil {
		return stats, appErr.Wrap(err, appErr.CodeInternal, "count subtasks failed")
	}
	if err := r.db.WithContext(ctx).Model(&models.Subtask{}).Where("task_id = ? AND is_completed = ?", taskID, true).Count(&completed).Error; err != nil {
		return stats, appErr.Wrap(err, appErr.CodeInternal, "count completed subtasks failed")
	}
	stats.Count = int(total)
	stats.Completed = int(completed)
	if total > 0 {
		stats.Progress = float64(completed) / float64(total)
	}
	return stats, nil
}
