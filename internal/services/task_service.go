package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/taskhive/engine/internal/authz"
	"github.com/taskhive/engine/internal/models"
	"github.com/taskhive/engine/internal/repository"
	appErr "github.com/taskhive/engine/pkg/errors"
	"github.com/taskhive/engine/pkg/logger"
	"github.com/taskhive/engine/pkg/sanitize"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 2000
	maxBulkIDs        = 50
)

// Bulk actions.
const (
	BulkComplete    = "complete"
	BulkDelete      = "delete"
	BulkMove        = "move"
	BulkSetPriority = "set_priority"
	BulkSetStatus   = "set_status"
)

type TaskService interface {
	Create(ctx context.Context, actor *models.User, in *TaskCreateInput) (*models.Task, error)
	Get(ctx context.Context, actor *models.User, id uuid.UUID, withDeleted bool) (*models.Task, error)
	List(ctx context.Context, actor *models.User, f repository.TaskFilters) ([]models.Task, int64, error)
	Update(ctx context.Context, actor *models.User, id uuid.UUID, in *TaskUpdateInput) (*models.Task, error)
	UpdateStatus(ctx context.Context, actor *models.User, id uuid.UUID, status string) (*models.Task, error)
	Delete(ctx context.Context, actor *models.User, id uuid.UUID) error

	CreateSubtask(ctx context.Context, actor *models.User, taskID uuid.UUID, title string) (*models.Subtask, error)
	UpdateSubtask(ctx context.Context, actor *models.User, taskID, subtaskID uuid.UUID, in *SubtaskUpdateInput) (*models.Subtask, error)
	DeleteSubtask(ctx context.Context, actor *models.User, taskID, subtaskID uuid.UUID) error
	ReorderSubtasks(ctx context.Context, actor *models.User, taskID uuid.UUID, orderedIDs []uuid.UUID) ([]models.Subtask, error)

	Bulk(ctx context.Context, actor *models.User, in *BulkActionInput) (int, error)

	AttachTag(ctx context.Context, actor *models.User, taskID, tagID uuid.UUID) (*models.TaskTag, error)
	DetachTag(ctx context.Context, actor *models.User, taskID, tagID uuid.UUID) error
}

type TaskCreateInput struct {
	Title                string
	Description          string
	Priority             string
	Status               string
	TaskType             string
	StartDate            *time.Time
	DueDate              *time.Time
	ActualCompletionDate *time.Time
	StoryPoints          int
	TimeEstimate         float64
	TimeSpent            float64
	ProjectID            *uuid.UUID
	TagIDs               []uuid.UUID
	AssigneeIDs          []uint
	BlockedByIDs         []uuid.UUID
}

type TaskUpdateInput struct {
	Title                *string
	Description          *string
	Priority             *string
	Status               *string
	TaskType             *string
	StartDate            *time.Time
	DueDate              *time.Time
	ActualCompletionDate *time.Time
	StoryPoints          *int
	TimeEstimate         *float64
	TimeSpent            *float64
	ProjectID            *uuid.UUID
	IsCompleted          *bool
	// Nil leaves the tag set untouched; a non-nil (even empty) slice
	// replaces the full set via a diff that keeps surviving links stable.
	TagIDs       *[]uuid.UUID
	AssigneeIDs  *[]uint
	BlockedByIDs *[]uuid.UUID
}

type SubtaskUpdateInput struct {
	Title       *string
	IsCompleted *bool
	SortOrder   *int
}

type BulkActionInput struct {
	IDs    []uuid.UUID
	Action string
	Value  string
}

type taskService struct {
	db       *gorm.DB
	tasks    repository.TaskRepository
	users    repository.UserRepository
	projects repository.ProjectRepository
	members  repository.MemberRepository
	recorder *ActivityRecorder
}

func NewTaskService(db *gorm.DB, tasks repository.TaskRepository, users repository.UserRepository, projects repository.ProjectRepository, members repository.MemberRepository, recorder *ActivityRecorder) TaskService {
	return &taskService{db: db, tasks: tasks, users: users, projects: projects, members: members, recorder: recorder}
}

var _ TaskService = (*taskService)(nil)

// projectScope loads the project and the actor's membership row for a
// project-scoped check. Both come back nil for personal tasks.
func (s *taskService) projectScope(ctx context.Context, projectID *uuid.UUID, actorID uint) (*models.Project, *models.ProjectMember, error) {
	if projectID == nil {
		return nil, nil, nil
	}
	var p models.Project
	if err := s.projects.GetByID(ctx, *projectID, &p); err != nil {
		return nil, nil, err
	}
	m, err := s.members.Get(ctx, *projectID, actorID)
	if err != nil {
		return nil, nil, err
	}
	return &p, m, nil
}

// authorizeTask returns not_found when the actor cannot even view the task,
// and forbidden when it can view but lacks cap. The two cases are
// indistinguishable from not_found on purpose for callers without view.
func (s *taskService) authorizeTask(ctx context.Context, actor *models.User, task *models.Task, cap authz.Capability) error {
	project, membership, err := s.projectScope(ctx, task.ProjectID, actor.ID)
	if err != nil {
		return err
	}
	if !authz.CanOnTask(actor.ID, task, project, membership, authz.CapView) {
		return appErr.New(appErr.CodeNotFound, "task not found")
	}
	if cap != authz.CapView && !authz.CanOnTask(actor.ID, task, project, membership, cap) {
		return appErr.New(appErr.CodeForbidden, "insufficient role")
	}
	return nil
}

func validateTaskEnums(priority, status, taskType string) map[string]string {
	fields := map[string]string{}
	if priority != "" && !models.ValidPriority(priority) {
		fields["priority"] = "must be one of Low, Medium, High, Critical"
	}
	if status != "" && !models.ValidStatus(status) {
		fields["status"] = "must be one of backlog, todo, in_progress, review, done"
	}
	if taskType != "" && !models.ValidTaskType(taskType) {
		fields["task_type"] = "must be one of Feature, Bug, Chore, Improvement, Story"
	}
	return fields
}

// validateDueDate checks against the clock at submission time only; stored
// values are never re-validated.
func validateDueDate(due *time.Time, fields map[string]string) {
	if due != nil && due.Before(time.Now()) {
		fields["due_date"] = "due date cannot be in the past"
	}
}

func (s *taskService) Create(ctx context.Context, actor *models.User, in *TaskCreateInput) (*models.Task, error) {
	in.Title = sanitize.Text(in.Title)
	in.Description = sanitize.Text(in.Description)

	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if in.Status == "" {
		in.Status = models.StatusBacklog
	}
	if in.TaskType == "" {
		in.TaskType = models.TypeFeature
	}

	fields := validateTaskEnums(in.Priority, in.Status, in.TaskType)
	if in.Title == "" || len(in.Title) > maxTitleLen {
		fields["title"] = "must be between 1 and 200 characters"
	}
	if len(in.Description) > maxDescriptionLen {
		fields["description"] = "must be at most 2000 characters"
	}
	if in.StoryPoints < 0 {
		fields["story_points"] = "must not be negative"
	}
	if in.TimeEstimate < 0 {
		fields["time_estimate"] = "must not be negative"
	}
	if in.TimeSpent < 0 {
		fields["time_spent"] = "must not be negative"
	}
	validateDueDate(in.DueDate, fields)
	if len(fields) > 0 {
		return nil, appErr.Validation(fields)
	}

	// Creating into a project requires edit_task there.
	if in.ProjectID != nil {
		project, membership, err := s.projectScope(ctx, in.ProjectID, actor.ID)
		if err != nil {
			return nil, err
		}
		if !authz.CanOnProject(actor.ID, project, membership, authz.CapView) {
			return nil, appErr.New(appErr.CodeNotFound, "project not found")
		}
		if !authz.CanOnProject(actor.ID, project, membership, authz.CapEditTask) {
			return nil, appErr.New(appErr.CodeForbidden, "insufficient role")
		}
	}

	// Tag resolution is tolerant: ids not owned by the actor are dropped.
	// Assignees and dependencies are strict: any unresolved id is an error.
	tags, err := s.tasks.ResolveOwnedTags(ctx, in.TagIDs, actor.ID)
	if err != nil {
		return nil, err
	}
	assignees, err := s.users.ResolveStrict(ctx, in.AssigneeIDs)
	if err != nil {
		return nil, err
	}
	blockers, err := s.tasks.ResolveStrict(ctx, in.BlockedByIDs)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:                in.Title,
		Description:          in.Description,
		Priority:             in.Priority,
		Status:               in.Status,
		TaskType:             in.TaskType,
		StartDate:            in.StartDate,
		DueDate:              in.DueDate,
		ActualCompletionDate: in.ActualCompletionDate,
		StoryPoints:          in.StoryPoints,
		TimeEstimate:         in.TimeEstimate,
		TimeSpent:            in.TimeSpent,
		ProjectID:            in.ProjectID,
		OwnerID:              actor.ID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "create task failed")
		}
		for i := range tags {
			link := models.TaskTag{TaskID: task.ID, TagID: tags[i].ID}
			if err := tx.Create(&link).Error; err != nil {
				return appErr.Wrap(err, appErr.CodeInternal, "attach tag failed")
			}
		}
		if len(assignees) > 0 {
			if err := tx.Model(task).Association("Assignees").Append(assignees); err != nil {
				return appErr.Wrap(err, appErr.CodeInternal, "attach assignees failed")
			}
		}
		if len(blockers) > 0 {
			if err := tx.Model(task).Association("BlockedBy").Append(blockers); err != nil {
				return appErr.Wrap(err, appErr.CodeInternal, "attach dependencies failed")
			}
		}
		return s.recorder.Record(tx, actor, models.ActionCreated, "task", task.ID.String(), task.Title, nil, "")
	})
	if err != nil {
		return nil, err
	}

	logger.L().Info("task created", zap.String("task_id", task.ID.String()), zap.Uint("owner_id", actor.ID))
	return s.reload(ctx, task.ID, false)
}

func (s *taskService) reload(ctx context.Context, id uuid.UUID, withDeleted bool) (*models.Task, error) {
	var t models.Task
	if err := s.tasks.GetFull(ctx, id, withDeleted, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *taskService) Get(ctx context.Context, actor *models.User, id uuid.UUID, withDeleted bool) (*models.Task, error) {
	var t models.Task
	if err := s.tasks.GetFull(ctx, id, withDeleted, &t); err != nil {
		return nil, err
	}
	if err := s.authorizeTask(ctx, actor, &t, authz.CapView); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *taskService) List(ctx context.Context, actor *models.User, f repository.TaskFilters) ([]models.Task, int64, error) {
	f.OwnerID = actor.ID
	return s.tasks.List(ctx, f)
}

func (s *taskService) Update(ctx context.Context, actor *models.User, id uuid.UUID, in *TaskUpdateInput) (*models.Task, error) {
	var task models.Task
	if err := s.tasks.GetFull(ctx, id, false, &task); err != nil {
		return nil, err
	}
	if err := s.authorizeTask(ctx, actor, &task, authz.CapEditTask); err != nil {
		return nil, err
	}

	in.Title = sanitize.TextPtr(in.Title)
	in.Description = sanitize.TextPtr(in.Description)

	fields := map[string]string{}
	if in.Title != nil && (*in.Title == "" || len(*in.Title) > maxTitleLen) {
		fields["title"] = "must be between 1 and 200 characters"
	}
	if in.Description != nil && len(*in.Description) > maxDescriptionLen {
		fields["description"] = "must be at most 2000 characters"
	}
	var p, st, tt string
	if in.Priority != nil {
		p = *in.Priority
	}
	if in.Status != nil {
		st = *in.Status
	}
	if in.TaskType != nil {
		tt = *in.TaskType
	}
	for k, v := range validateTaskEnums(p, st, tt) {
		fields[k] = v
	}
	if in.StoryPoints != nil && *in.StoryPoints < 0 {
		fields["story_points"] = "must not be negative"
	}
	if in.TimeEstimate != nil && *in.TimeEstimate < 0 {
		fields["time_estimate"] = "must not be negative"
	}
	if in.TimeSpent != nil && *in.TimeSpent < 0 {
		fields["time_spent"] = "must not be negative"
	}
	validateDueDate(in.DueDate, fields)
	if len(fields) > 0 {
		return nil, appErr.Validation(fields)
	}

	var newAssignees []models.User
	if in.AssigneeIDs != nil {
		resolved, err := s.users.ResolveStrict(ctx, *in.AssigneeIDs)
		if err != nil {
			return nil, err
		}
		newAssignees = resolved
	}
	var newBlockers []models.Task
	if in.BlockedByIDs != nil {
		resolved, err := s.tasks.ResolveStrict(ctx, *in.BlockedByIDs)
		if err != nil {
			return nil, err
		}
		newBlockers = resolved
	}

	delta := map[string]any{}
	if in.Title != nil {
		delta["title"] = *in.Title
		task.Title = *in.Title
	}
	if in.Description != nil {
		delta["description"] = *in.Description
		task.Description = *in.Description
	}
	if in.Priority != nil {
		delta["priority"] = *in.Priority
		task.Priority = *in.Priority
	}
	if in.Status != nil {
		// A direct field update does NOT sync is_completed; only
		// UpdateStatus and the bulk complete action do.
		delta["status"] = *in.Status
		task.Status = *in.Status
	}
	if in.TaskType != nil {
		delta["task_type"] = *in.TaskType
		task.TaskType = *in.TaskType
	}
	if in.IsCompleted != nil {
		delta["is_completed"] = *in.IsCompleted
		task.IsCompleted = *in.IsCompleted
	}
	if in.StartDate != nil {
		task.StartDate = in.StartDate
	}
	if in.DueDate != nil {
		task.DueDate = in.DueDate
	}
	if in.ActualCompletionDate != nil {
		task.ActualCompletionDate = in.ActualCompletionDate
	}
	if in.StoryPoints != nil {
		task.StoryPoints = *in.StoryPoints
	}
	if in.TimeEstimate != nil {
		task.TimeEstimate = *in.TimeEstimate
	}
	if in.TimeSpent != nil {
		task.TimeSpent = *in.TimeSpent
	}
	if in.ProjectID != nil {
		task.ProjectID = in.ProjectID
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Assignees", "BlockedBy", "Subtasks", "TaskTags").Save(&task).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "update task failed")
		}

		if in.TagIDs != nil {
			added, removed, err := s.applyTagDiff(tx, &task, *in.TagIDs, actor.ID)
			if err != nil {
				return err
			}
			if len(added) > 0 || len(removed) > 0 {
				delta["tags_added"] = added
				delta["tags_removed"] = removed
			}
		}
		if in.AssigneeIDs != nil {
			if err := tx.Model(&task).Association("Assignees").Replace(newAssignees); err != nil {
				return appErr.Wrap(err, appErr.CodeInternal, "replace assignees failed")
			}
			delta["assignee_ids"] = *in.AssigneeIDs
		}
		if in.BlockedByIDs != nil {
			if err := tx.Model(&task).Association("BlockedBy").Replace(newBlockers); err != nil {
				return appErr.Wrap(err, appErr.CodeInternal, "replace dependencies failed")
			}
			delta["blocked_by_ids"] = *in.BlockedByIDs
		}

		return s.recorder.Record(tx, actor, models.ActionUpdated, "task", task.ID.String(), task.Title, delta, "")
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, task.ID, false)
}

// applyTagDiff replaces the task's tag set with tagIDs via set difference so
// that TaskTag rows for tags present in both old and new sets keep their ids.
// Unresolved or unowned tag ids are dropped, not rejected.
func (s *taskService) applyTagDiff(tx *gorm.DB, task *models.Task, tagIDs []uuid.UUID, ownerID uint) (added, removed []string, err error) {
	var verified []models.Tag
	if len(tagIDs) > 0 {
		if err := tx.Where("id IN ? AND owner_id = ?", tagIDs, ownerID).Find(&verified).Error; err != nil {
			return nil, nil, appErr.Wrap(err, appErr.CodeInternal, "resolve tags failed")
		}
	}
	wanted := make(map[uuid.UUID]struct{}, len(verified))
	for _, t := range verified {
		wanted[t.ID] = struct{}{}
	}

	var current []models.TaskTag
	if err := tx.Where("task_id = ?", task.ID).Find(&current).Error; err != nil {
		return nil, nil, appErr.Wrap(err, appErr.CodeInternal, "load task tags failed")
	}
	have := make(map[uuid.UUID]struct{}, len(current))
	for _, tt := range current {
		have[tt.TagID] = struct{}{}
	}

	var toRemove []uuid.UUID
	for tagID := range have {
		if _, ok := wanted[tagID]; !ok {
			toRemove = append(toRemove, tagID)
			removed = append(removed, tagID.String())
		}
	}
	if len(toRemove) > 0 {
		if err := tx.Where("task_id = ? AND tag_id IN ?", task.ID, toRemove).Delete(&models.TaskTag{}).Error; err != nil {
			return nil, nil, appErr.Wrap(err, appErr.CodeInternal, "remove tags failed")
		}
	}
	for tagID := range wanted {
		if _, ok := have[tagID]; !ok {
			link := models.TaskTag{TaskID: task.ID, TagID: tagID}
			if err := tx.Create(&link).Error; err != nil {
				return nil, nil, appErr.Wrap(err, appErr.CodeInternal, "add tag failed")
			}
			added = append(added, tagID.String())
		}
	}
	return added, removed, nil
}

// UpdateStatus is, besides the bulk complete action, the only path that
// keeps is_completed synchronized with status.
func (s *taskService) UpdateStatus(ctx context.Context, actor *models.User, id uuid.UUID, status string) (*models.Task, error) {
	if !models.ValidStatus(status) {
		return nil, appErr.FieldError("status", "must be one of backlog, todo, in_progress, review, done")
	}

	var task models.Task
	if err := s.tasks.GetByID(ctx, id, &task); err != nil {
		return nil, err
	}
	if err := s.authorizeTask(ctx, actor, &task, authz.CapEditTask); err != nil {
		return nil, err
	}

	previous := task.Status
	task.Status = status
	task.IsCompleted = status == models.StatusDone

	action := models.ActionStatusChanged
	if status == models.StatusDone {
		action = models.ActionCompleted
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{"status": task.Status, "is_completed": task.IsCompleted}
		if err := tx.Model(&task).Updates(updates).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "update status failed")
		}
		delta := map[string]any{"from": previous, "to": status}
		return s.recorder.Record(tx, actor, action, "task", task.ID.String(), task.Title, delta, "")
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, task.ID, false)
}

// Delete soft-deletes the task: subtasks and tag links stay attached to the
// deleted parent and remain reachable through the with-deleted query path.
func (s *taskService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	var task models.Task
	if err := s.tasks.GetByID(ctx, id, &task); err != nil {
		return err
	}
	if err := s.authorizeTask(ctx, actor, &task, authz.CapEditTask); err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&task).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "delete task failed")
		}
		return s.recorder.Record(tx, actor, models.ActionDeleted, "task", task.ID.String(), task.Title, nil, "")
	})
}

func (s *taskService) CreateSubtask(ctx context.Context, actor *models.User, taskID uuid.UUID, title string) (*models.Subtask, error) {
	title = sanitize.Text(title)
	if title == "" || len(title) > maxTitleLen {
		return nil, appErr.FieldError("title", "must be between 1 and 200 characters")
	}

	var task models.Task
	if err := s.tasks.GetByID(ctx, taskID, &task); err != nil {
		return nil, err
	}
	if err := s.authorizeTask(ctx, actor, &task, authz.CapEditTask); err != nil {
		return nil, err
	}

	sub := &models.Subtask{TaskID: task.ID, Title: title}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Append at the current count, not max(order)+1: a hole left by
		// reordering is not reused.
		var count int64
		if err := tx.Model(&models.Subtask{}).Where("task_id = ?", task.ID).Count(&count).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "count subtasks failed")
		}
		sub.SortOrder = int(count)
		if err := tx.Create(sub).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "create subtask failed")
		}
		return s.recorder.Record(tx, actor, models.ActionCreated, "subtask", sub.ID.String(), sub.Title, nil, "")
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *taskService) UpdateSubtask(ctx context.Context, actor *models.User, taskID, subtaskID uuid.UUID, in *SubtaskUpdateInput) (*models.Subtask, error) {
	var task models.Task
	if err := s.tasks.GetByID(ctx, taskID, &task); err != nil {
		return nil, err
	}
	if err := s.authorizeTask(ctx, actor, &task, authz.CapEditTask); err != nil {
		return nil, err
	}

	var sub models.Subtask
	if err := s.db.WithContext(ctx).Where("id = ? AND task_id = ?", subtaskID, taskID).First(&sub).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, appErr.New(appErr.CodeNotFound, "subtask not found")
		}
		return nil, appErr.Wrap(err, appErr.CodeInternal, "get subtask failed")
	}

	in.Title = sanitize.TextPtr(in.Title)
	if in.Title != nil {
		if *in.Title == "" || len(*in.Title) > maxTitleLen {
			return nil, appErr.FieldError("title", "must be between 1 and 200 characters")
		}
		sub.Title = *in.Title
	}
	if in.IsCompleted != nil {
		sub.IsCompleted = *in.IsCompleted
	}
	if in.SortOrder != nil {
		sub.SortOrder = *in.SortOrder
	}
	sub.SyncCompletedAt(time.Now())

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&sub).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "update subtask failed")
		}
		return s.recorder.Record(tx, actor, models.ActionUpdated, "subtask", sub.ID.String(), sub.Title, nil, "")
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *taskService) DeleteSubtask(ctx context.Context, actor *models.User, taskID, subtaskID uuid.UUID) error {
	var task models.Task
	if err := s.tasks.GetByID(ctx, taskID, &task); err != nil {
		return err
	}
	if err := s.authorizeTask(ctx, actor, &task, authz.CapEditTask); err != nil {
		return err
	}

	var sub models.Subtask
	if err := s.db.WithContext(ctx).Where("id = ? AND task_id = ?", subtaskID, taskID).First(&sub).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return appErr.New(appErr.CodeNotFound, "subtask not found")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "get subtask failed")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&sub).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "delete subtask failed")
		}
		return s.recorder.Record(tx, actor, models.ActionDeleted, "subtask", sub.ID.String(), sub.Title, nil, "")
	})
}

// ReorderSubtasks assigns order = positional index for each id present in
// orderedIDs; subtasks not listed keep their current value. The result may
// contain gaps or duplicates; that is tolerated, not validated.
func (s *taskService) ReorderSubtasks(ctx context.Context, actor *models.User, taskID uuid.UUID, orderedIDs []uuid.UUID) ([]models.Subtask, error) {
	var task models.Task
	if err := s.tasks.GetByID(ctx, taskID, &task); err != nil {
		return nil, err
	}
	if err := s.authorizeTask(ctx, actor, &task, authz.CapEditTask); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for idx, id := range orderedIDs {
			err := tx.Model(&models.Subtask{}).
				Where("id = ? AND task_id = ?", id, taskID).
				Update("sort_order", idx).Error
			if err != nil {
				return appErr.Wrap(err, appErr.CodeInternal, "reorder subtasks failed")
			}
		}
		delta := map[string]any{"subtask_order": orderedIDs}
		return s.recorder.Record(tx, actor, models.ActionUpdated, "task", task.ID.String(), task.Title, delta, "")
	})
	if err != nil {
		return nil, err
	}

	var subs []models.Subtask
	if err := s.db.WithContext(ctx).Where("task_id = ?", taskID).Order("sort_order ASC").Find(&subs).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list subtasks failed")
	}
	return subs, nil
}

// Bulk applies one action to up to 50 tasks owned by the actor in a single
// transaction; a mid-batch failure applies nothing. complete and delete
// write one audit entry per task; set_status, set_priority and move are
// batched updates with no individual entries.
func (s *taskService) Bulk(ctx context.Context, actor *models.User, in *BulkActionInput) (int, error) {
	if len(in.IDs) == 0 || len(in.IDs) > maxBulkIDs {
		return 0, appErr.FieldError("ids", "must contain between 1 and 50 ids")
	}

	var affected int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := tx.Model(&models.Task{}).Where("owner_id = ? AND id IN ?", actor.ID, in.IDs)

		switch in.Action {
		case BulkComplete:
			var tasks []models.Task
			if err := tx.Where("owner_id = ? AND id IN ?", actor.ID, in.IDs).Find(&tasks).Error; err != nil {
				return appErr.Wrap(err, appErr.CodeInternal, "load tasks failed")
			}
			for i := range tasks {
				updates := map[string]any{"status": models.StatusDone, "is_completed": true}
				if err := tx.Model(&tasks[i]).Updates(updates).Error; err != nil {
					return appErr.Wrap(err, appErr.CodeInternal, "bulk complete failed")
				}
				if err := s.recorder.Record(tx, actor, models.ActionCompleted, "task", tasks[i].ID.String(), tasks[i].Title, nil, ""); err != nil {
					return err
				}
			}
			affected = len(tasks)

		case BulkDelete:
			var tasks []models.Task
			if err := tx.Where("owner_id = ? AND id IN ?", actor.ID, in.IDs).Find(&tasks).Error; err != nil {
				return appErr.Wrap(err, appErr.CodeInternal, "load tasks failed")
			}
			for i := range tasks {
				if err := tx.Delete(&tasks[i]).Error; err != nil {
					return appErr.Wrap(err, appErr.CodeInternal, "bulk delete failed")
				}
				if err := s.recorder.Record(tx, actor, models.ActionDeleted, "task", tasks[i].ID.String(), tasks[i].Title, nil, ""); err != nil {
					return err
				}
			}
			affected = len(tasks)

		case BulkSetStatus:
			if !models.ValidStatus(in.Value) {
				return appErr.FieldError("value", "must be one of backlog, todo, in_progress, review, done")
			}
			res := owned.Update("status", in.Value)
			if res.Error != nil {
				return appErr.Wrap(res.Error, appErr.CodeInternal, "bulk set_status failed")
			}
			affected = int(res.RowsAffected)

		case BulkSetPriority:
			if !models.ValidPriority(in.Value) {
				return appErr.FieldError("value", "must be one of Low, Medium, High, Critical")
			}
			res := owned.Update("priority", in.Value)
			if res.Error != nil {
				return appErr.Wrap(res.Error, appErr.CodeInternal, "bulk set_priority failed")
			}
			affected = int(res.RowsAffected)

		case BulkMove:
			projectID, err := uuid.Parse(in.Value)
			if err != nil {
				return appErr.FieldError("value", "must be a project id")
			}
			var project models.Project
			if err := s.projects.GetByID(ctx, projectID, &project); err != nil {
				return err
			}
			res := owned.Update("project_id", projectID)
			if res.Error != nil {
				return appErr.Wrap(res.Error, appErr.CodeInternal, "bulk move failed")
			}
			affected = int(res.RowsAffected)

		default:
			return appErr.FieldError("action", "must be one of complete, delete, move, set_priority, set_status")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.L().Info("bulk action applied", zap.String("action", in.Action), zap.Int("affected", affected), zap.Uint("actor_id", actor.ID))
	return affected, nil
}

func (s *taskService) AttachTag(ctx context.Context, actor *models.User, taskID, tagID uuid.UUID) (*models.TaskTag, error) {
	var task models.Task
	if err := s.tasks.GetByID(ctx, taskID, &task); err != nil {
		return nil, err
	}
	if err := s.authorizeTask(ctx, actor, &task, authz.CapEditTask); err != nil {
		return nil, err
	}

	var tag models.Tag
	err := s.db.WithContext(ctx).Where("id = ? AND owner_id = ?", tagID, actor.ID).First(&tag).Error
	if err == gorm.ErrRecordNotFound {
		return nil, appErr.New(appErr.CodeNotFound, "tag not found")
	}
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "get tag failed")
	}

	var link models.TaskTag
	err = s.db.WithContext(ctx).Where("task_id = ? AND tag_id = ?", taskID, tagID).First(&link).Error
	if err == nil {
		return &link, nil // already attached, idempotent
	}
	if err != gorm.ErrRecordNotFound {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "get task tag failed")
	}

	link = models.TaskTag{TaskID: taskID, TagID: tagID}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&link).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "attach tag failed")
		}
		desc := "Tagged task '" + task.Title + "' with '" + tag.Name + "'"
		return s.recorder.Record(tx, actor, models.ActionTagged, "task", task.ID.String(), task.Title, nil, desc)
	})
	if err != nil {
		return nil, err
	}
	link.Tag = tag
	return &link, nil
}

func (s *taskService) DetachTag(ctx context.Context, actor *models.User, taskID, tagID uuid.UUID) error {
	var task models.Task
	if err := s.tasks.GetByID(ctx, taskID, &task); err != nil {
		return err
	}
	if err := s.authorizeTask(ctx, actor, &task, authz.CapEditTask); err != nil {
		return err
	}

	var link models.TaskTag
	err := s.db.WithContext(ctx).Where("task_id = ? AND tag_id = ?", taskID, tagID).First(&link).Error
	if err == gorm.ErrRecordNotFound {
		return appErr.New(appErr.CodeNotFound, "task tag not found")
	}
	if err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "get task tag failed")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&link).Error; err != nil {
			return appErr.Wrap(err, appErr.CodeInternal, "detach tag failed")
		}
		return s.recorder.Record(tx, actor, models.ActionUntagged, "task", task.ID.String(), task.Title, nil, "")
	})
}
