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

type NoteService interface {
	List(ctx context.Context, actor *models.User, archived *bool) ([]models.QuickNote, error)
	Create(ctx context.Context, actor *models.User, content string) (*models.QuickNote, error)
	Update(ctx context.Context, actor *models.User, id uuid.UUID, content *string, archived *bool) (*models.QuickNote, error)
	Delete(ctx context.Context, actor *models.User, id uuid.UUID) error
	// ConvertToTask creates a task from the note through the regular task
	// creation path, links it, and archives the note. A note converts once.
	ConvertToTask(ctx context.Context, actor *models.User, id uuid.UUID, overrides *TaskCreateInput) (*models.QuickNote, *models.Task, error)
}

type noteService struct {
	db    *gorm.DB
	notes repository.NoteRepository
	tasks TaskService
}

func NewNoteService(db *gorm.DB, notes repository.NoteRepository, tasks TaskService) NoteService {
	return &noteService{db: db, notes: notes, tasks: tasks}
}

var _ NoteService = (*noteService)(nil)

func (s *noteService) getOwned(ctx context.Context, id uuid.UUID, actorID uint) (*models.QuickNote, error) {
	var n models.QuickNote
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, actorID).First(&n).Error
	if err == gorm.ErrRecordNotFound {
		return nil, appErr.New(appErr.CodeNotFound, "note not found")
	}
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "get note failed")
	}
	return &n, nil
}

func (s *noteService) List(ctx context.Context, actor *models.User, archived *bool) ([]models.QuickNote, error) {
	return s.notes.ListByUser(ctx, actor.ID, archived)
}

func (s *noteService) Create(ctx context.Context, actor *models.User, content string) (*models.QuickNote, error) {
	content = sanitize.Text(content)
	if content == "" {
		return nil, appErr.FieldError("content", "must not be empty")
	}
	n := &models.QuickNote{UserID: actor.ID, Content: content}
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "create note failed")
	}
	return n, nil
}

func (s *noteService) Update(ctx context.Context, actor *models.User, id uuid.UUID, content *string, archived *bool) (*models.QuickNote, error) {
	n, err := s.getOwned(ctx, id, actor.ID)
	if err != nil {
		return nil, err
	}
	content = sanitize.TextPtr(content)
	if content != nil {
		if *content == "" {
			return nil, appErr.FieldError("content", "must not be empty")
		}
		n.Content = *content
	}
	if archived != nil {
		n.IsArchived = *archived
	}
	if err := s.db.WithContext(ctx).Save(n).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "update note failed")
	}
	return n, nil
}

func (s *noteService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	n, err := s.getOwned(ctx, id, actor.ID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(n).Error; err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "delete note failed")
	}
	return nil
}

func (s *noteService) ConvertToTask(ctx context.Context, actor *models.User, id uuid.UUID, overrides *TaskCreateInput) (*models.QuickNote, *models.Task, error) {
	n, err := s.getOwned(ctx, id, actor.ID)
	if err != nil {
		return nil, nil, err
	}
	if n.ConvertedTaskID != nil {
		return nil, nil, appErr.New(appErr.CodeInvalidOperation, "note already converted to a task")
	}

	in := &TaskCreateInput{}
	if overrides != nil {
		*in = *overrides
	}
	if in.Title == "" {
		title := n.Content
		if len(title) > 50 {
			title = title[:50]
		}
		in.Title = title
	}
	if in.Description == "" {
		in.Description = n.Content
	}

	task, err := s.tasks.Create(ctx, actor, in)
	if err != nil {
		return nil, nil, err
	}

	n.ConvertedTaskID = &task.ID
	n.IsArchived = true
	if err := s.db.WithContext(ctx).Save(n).Error; err != nil {
		return nil, nil, appErr.Wrap(err, appErr.CodeInternal, "link converted task failed")
	}
	return n, task, nil
}
