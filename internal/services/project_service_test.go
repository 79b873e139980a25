package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskhive/engine/internal/models"
	appErr "github.com/taskhive/engine/pkg/errors"
)

func TestCreateProjectEnrollsOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")

	project, err := env.projects.Create(ctx, alice, &ProjectCreateInput{Name: "launch"})
	require.NoError(t, err)

	var m models.ProjectMember
	require.NoError(t, env.db.Where("project_id = ? AND user_id = ?", project.ID, alice.ID).First(&m).Error)
	require.Equal(t, models.RoleOwner, m.Role)

	require.EqualValues(t, 1, countActivity(t, env.db, "project", project.ID.String(), models.ActionCreated))
}

func TestProjectHiddenFromNonMembers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")

	project, err := env.projects.Create(ctx, alice, &ProjectCreateInput{Name: "secret"})
	require.NoError(t, err)

	_, err = env.projects.Get(ctx, bob, project.ID)
	require.True(t, appErr.IsCode(err, appErr.CodeNotFound))

	visible, err := env.projects.List(ctx, bob)
	require.NoError(t, err)
	require.Empty(t, visible)

	visible, err = env.projects.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, visible, 1)
}

func TestProjectListIncludesMemberships(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")

	project, err := env.projects.Create(ctx, alice, &ProjectCreateInput{Name: "shared"})
	require.NoError(t, err)
	_, err = env.members.Add(ctx, alice, project.ID, bob.Email, models.RoleMember)
	require.NoError(t, err)

	visible, err := env.projects.List(ctx, bob)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	require.Equal(t, project.ID, visible[0].ID)
}

func TestProjectDeleteCascadesHard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")

	project, err := env.projects.Create(ctx, alice, &ProjectCreateInput{Name: "doomed"})
	require.NoError(t, err)

	tag, err := env.tags.Create(ctx, alice, "keepme", "hsl(120 50% 40%)")
	require.NoError(t, err)

	task, err := env.tasks.Create(ctx, alice, &TaskCreateInput{Title: "t1", ProjectID: &project.ID})
	require.NoError(t, err)
	_, err = env.tasks.CreateSubtask(ctx, alice, task.ID, "s1")
	require.NoError(t, err)
	_, err = env.tasks.AttachTag(ctx, alice, task.ID, tag.ID)
	require.NoError(t, err)

	// A soft-deleted task in the project is cascaded too.
	deleted, err := env.tasks.Create(ctx, alice, &TaskCreateInput{Title: "t2", ProjectID: &project.ID})
	require.NoError(t, err)
	require.NoError(t, env.tasks.Delete(ctx, alice, deleted.ID))

	require.NoError(t, env.projects.Delete(ctx, alice, project.ID))

	var n int64
	require.NoError(t, env.db.Unscoped().Model(&models.Task{}).Where("project_id = ?", project.ID).Count(&n).Error)
	require.Zero(t, n)
	require.NoError(t, env.db.Model(&models.Subtask{}).Where("task_id = ?", task.ID).Count(&n).Error)
	require.Zero(t, n)
	require.NoError(t, env.db.Model(&models.TaskTag{}).Where("task_id = ?", task.ID).Count(&n).Error)
	require.Zero(t, n)
	require.NoError(t, env.db.Model(&models.ProjectMember{}).Where("project_id = ?", project.ID).Count(&n).Error)
	require.Zero(t, n)

	// The tag itself survives; only its links go.
	require.NoError(t, env.db.Model(&models.Tag{}).Where("id = ?", tag.ID).Count(&n).Error)
	require.EqualValues(t, 1, n)

	// Audit entries for the cascaded task survive the cascade.
	require.EqualValues(t, 1, countActivity(t, env.db, "task", task.ID.String(), models.ActionCreated))
}

func TestProjectDeleteRequiresManage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")

	project, err := env.projects.Create(ctx, alice, &ProjectCreateInput{Name: "held"})
	require.NoError(t, err)
	_, err = env.members.Add(ctx, alice, project.ID, bob.Email, models.RoleMember)
	require.NoError(t, err)

	err = env.projects.Delete(ctx, bob, project.ID)
	require.True(t, appErr.IsCode(err, appErr.CodeForbidden))
}

func TestProjectBoardColumns(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")

	project, err := env.projects.Create(ctx, alice, &ProjectCreateInput{Name: "board"})
	require.NoError(t, err)

	cols := project.BoardColumns()
	require.Len(t, cols, 4)
	require.Equal(t, models.StatusBacklog, cols[0].Status)
	require.False(t, cols[0].Visible)
	require.True(t, cols[1].Visible)

	custom := []models.BoardColumn{
		{ID: "todo", Title: "To Do", Status: models.StatusTodo, Visible: true},
		{ID: "done", Title: "Done", Status: models.StatusDone, Visible: true},
	}
	project, err = env.projects.Update(ctx, alice, project.ID, &ProjectUpdateInput{BoardColumns: custom})
	require.NoError(t, err)

	cols = project.BoardColumns()
	require.Len(t, cols, 2)
	require.Equal(t, "To Do", cols[0].Title)
}
