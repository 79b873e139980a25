package services

import (
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/taskhive/engine/internal/models"
	"github.com/taskhive/engine/internal/repository"
	"github.com/taskhive/engine/pkg/logger"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests (required by services)
	_, err := logger.Init("error", "json")
	if err != nil {
		panic("failed to init logger: " + err.Error())
	}
	os.Exit(m.Run())
}

type testEnv struct {
	db        *gorm.DB
	tasks     TaskService
	projects  ProjectService
	members   MemberService
	tags      TagService
	notes     NoteService
	activity  ActivityService
	analytics AnalyticsService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
		&models.Subtask{},
		&models.Tag{},
		&models.TaskTag{},
		&models.ActivityLog{},
		&models.QuickNote{},
	))

	recorder := NewActivityRecorder()
	taskRepo := repository.NewTaskRepository(db)
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	tagRepo := repository.NewTagRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	tasks := NewTaskService(db, taskRepo, userRepo, projectRepo, memberRepo, recorder)

	return &testEnv{
		db:        db,
		tasks:     tasks,
		projects:  NewProjectService(db, projectRepo, memberRepo, recorder),
		members:   NewMemberService(db, projectRepo, memberRepo, userRepo, recorder),
		tags:      NewTagService(db, tagRepo, recorder),
		notes:     NewNoteService(db, noteRepo, tasks),
		activity:  NewActivityService(activityRepo),
		analytics: NewAnalyticsService(db),
	}
}

func createUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, Email: name + "@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(u).Error)
	return u
}

// countActivity counts audit rows for one target, optionally narrowed to an action.
func countActivity(t *testing.T, db *gorm.DB, targetType, targetID, action string) int64 {
	t.Helper()
	q := db.Model(&models.ActivityLog{}).Where("target_type = ? AND target_id = ?", targetType, targetID)
	if action != "" {
		q = q.Where("action = ?", action)
	}
	var n int64
	require.NoError(t, q.Count(&n).Error)
	return n
}
