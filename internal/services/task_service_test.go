package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/engine/internal/models"
	"github.com/taskhive/engine/internal/repository"
	appErr "github.com/taskhive/engine/pkg/errors"
)

func TestCreateTaskDefaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")

	task, err := env.tasks.Create(ctx, alice, &TaskCreateInput{Title: "write report"})
	require.NoError(t, err)

	require.Equal(t, models.PriorityMedium, task.Priority)
	require.Equal(t, models.StatusBacklog, task.Status)
	require.Equal(t, models.TypeFeature, task.TaskType)
	require.False(t, task.IsCompleted)
	require.Equal(t, alice.ID, task.OwnerID)

	require.EqualValues(t, 1, countActivity(t, env.db, "task", task.ID.String(), models.ActionCreated))
}

func TestCreateTaskValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")

	_, err := env.tasks.Create(ctx, alice, &TaskCreateInput{Title: ""})
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	_, err = env.tasks.Create(ctx, alice, &TaskCreateInput{Title: "t", Priority: "Urgent"})
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	past := time.Now().Add(-time.Hour)
	_, err = env.tasks.Create(ctx, alice, &TaskCreateInput{Title: "t", DueDate: &past})
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	var ae *appErr.AppError
	require.ErrorAs(t, err, &ae)
	require.Contains(t, ae.Fields, "due_date")
}

func TestCreateTaskTolerantTagsStrictAssignees(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")

	tag, err := env.tags.Create(ctx, alice, "urgent", "hsl(0 100% 50%)")
	require.NoError(t, err)

	// An unknown tag id is silently dropped.
	task, err := env.tasks.Create(ctx, alice, &TaskCreateInput{
		Title:  "tolerant tags",
		TagIDs: []uuid.UUID{tag.ID, uuid.New()},
	})
	require.NoError(t, err)
	require.Len(t, task.TaskTags, 1)
	require.Equal(t, tag.ID, task.TaskTags[0].TagID)

	// An unknown assignee id fails the whole create.
	_, err = env.tasks.Create(ctx, alice, &TaskCreateInput{
		Title:       "strict assignees",
		AssigneeIDs: []uint{99999},
	})
	require.True(t, appErr.IsCode(err, appErr.CodeNotFound))

	// An unknown dependency id fails too.
	_, err = env.tasks.Create(ctx, alice, &TaskCreateInput{
		Title:        "strict blockers",
		BlockedByIDs: []uuid.UUID{uuid.New()},
	})
	require.True(t, appErr.IsCode(err, appErr.CodeNotFound))
}

func TestUpdateStatusFieldDoesNotComplete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")

	task, err := env.tasks.Create(ctx, alice, &TaskCreateInput{Title: "asym"})
	require.NoError(t, err)

	// Setting the status field directly leaves is_completed alone.
	done := models.StatusDone
	task, err = env.tasks.Update(ctx, alice, task.ID, &TaskUpdateInput{Status: &done})
	require.NoError(t, err)
	require.Equal(t, models.StatusDone, task.Status)
	require.False(t, task.IsCompleted)

	// The dedicated status transition synchronizes it.
	task, err = env.tasks.UpdateStatus(ctx, alice, task.ID, models.StatusDone)
	require.NoError(t, err)
	require.True(t, task.IsCompleted)
	require.EqualValues(t, 1, countActivity(t, env.db, "task", task.ID.String(), models.ActionCompleted))

	task, err = env.tasks.UpdateStatus(ctx, alice, task.ID, models.StatusTodo)
	require.NoError(t, err)
	require.False(t, task.IsCompleted)
	require.EqualValues(t, 1, countActivity(t, env.db, "task", task.ID.String(), models.ActionStatusChanged))
}

func TestUpdateTagDiffKeepsSurvivingLinks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")

	tagA, err := env.tags.Create(ctx, alice, "a", "hsl(0 50% 50%)")
	require.NoError(t, err)
	tagB, err := env.tags.Create(ctx, alice, "b", "hsl(90 50% 50%)")
	require.NoError(t, err)
	tagC, err := env.tags.Create(ctx, alice, "c", "hsl(180 50% 50%)")
	require.NoError(t, err)

	task, err := env.tasks.Create(ctx, alice, &TaskCreateInput{
		Title:  "diffed",
		TagIDs: []uuid.UUID{tagA.ID, tagB.ID},
	})
	require.NoError(t, err)

	var linkB models.TaskTag
	require.NoError(t, env.db.Where("task_id = ? AND tag_id = ?", task.ID, tagB.ID).First(&linkB).Error)

	newSet := []uuid.UUID{tagB.ID, tagC.ID}
	task, err = env.tasks.Update(ctx, alice, task.ID, &TaskUpdateInput{TagIDs: &newSet})
	require.NoError(t, err)
	require.Len(t, task.TaskTags, 2)

	// The surviving link keeps its row identity.
	var linkBAfter models.TaskTag
	require.NoError(t, env.db.Where("task_id = ? AND tag_id = ?", task.ID, tagB.ID).First(&linkBAfter).Error)
	require.Equal(t, linkB.ID, linkBAfter.ID)

	var gone int64
	require.NoError(t, env.db.Model(&models.TaskTag{}).Where("task_id = ? AND tag_id = ?", task.ID, tagA.ID).Count(&gone).Error)
	require.Zero(t, gone)

	// The whole update, tag delta included, is one audit entry.
	require.EqualValues(t, 1, countActivity(t, env.db, "task", task.ID.String(), models.ActionUpdated))
}

func TestSoftDeleteVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")

	task, err := env.tasks.Create(ctx, alice, &TaskCreateInput{Title: "doomed"})
	require.NoError(t, err)
	_, err = env.tasks.CreateSubtask(ctx, alice, task.ID, "survives")
	require.NoError(t, err)

	require.NoError(t, env.tasks.Delete(ctx, alice, task.ID))

	_, err = env.tasks.Get(ctx, alice, task.ID, false)
	require.True(t, appErr.IsCode(err, appErr.CodeNotFound))

	got, err := env.tasks.Get(ctx, alice, task.ID, true)
	require.NoError(t, err)
	require.Len(t, got.Subtasks, 1)

	list, total, err := env.tasks.List(ctx, alice, repository.TaskFilters{})
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, list)

	list, total, err = env.tasks.List(ctx, alice, repository.TaskFilters{IncludeDeleted: true})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, list, 1)
}

func TestSubtaskOrdering(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")

	task, err := env.tasks.Create(ctx, alice, &TaskCreateInput{Title: "checklist"})
	require.NoError(t, err)

	first, err := env.tasks.CreateSubtask(ctx, alice, task.ID, "first")
	require.NoError(t, err)
	second, err := env.tasks.CreateSubtask(ctx, alice, task.ID, "second")
	require.NoError(t, err)
	require.Equal(t, 0, first.SortOrder)
	require.Equal(t, 1, second.SortOrder)

	subs, err := env.tasks.ReorderSubtasks(ctx, alice, task.ID, []uuid.UUID{second.ID, first.ID})
	require.NoError(t, err)
	require.Len(t, subs, 2)
	require.Equal(t, second.ID, subs[0].ID)
	require.Equal(t, 0, subs[0].SortOrder)
	require.Equal(t, first.ID, subs[1].ID)
	require.Equal(t, 1, subs[1].SortOrder)
}

func TestSubtaskCompletedAtSync(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")

	task, err := env.tasks.Create(ctx, alice, &TaskCreateInput{Title: "sync"})
	require.NoError(t, err)
	sub, err := env.tasks.CreateSubtask(ctx, alice, task.ID, "step")
	require.NoError(t, err)
	require.Nil(t, sub.CompletedAt)

	done := true
	sub, err = env.tasks.UpdateSubtask(ctx, alice, task.ID, sub.ID, &SubtaskUpdateInput{IsCompleted: &done})
	require.NoError(t, err)
	require.NotNil(t, sub.CompletedAt)

	undone := false
	sub, err = env.tasks.UpdateSubtask(ctx, alice, task.ID, sub.ID, &SubtaskUpdateInput{IsCompleted: &undone})
	require.NoError(t, err)
	require.Nil(t, sub.CompletedAt)
}

func TestBulkSetPriorityWritesNoActivity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")

	ids := make([]uuid.UUID, 0, 3)
	for _, title := range []string{"one", "two", "three"} {
		task, err := env.tasks.Create(ctx, alice, &TaskCreateInput{Title: title})
		require.NoError(t, err)
		ids = append(ids, task.ID)
	}

	var before int64
	require.NoError(t, env.db.Model(&models.ActivityLog{}).Count(&before).Error)

	n, err := env.tasks.Bulk(ctx, alice, &BulkActionInput{IDs: ids, Action: BulkSetPriority, Value: models.PriorityHigh})
	require.NoError(t, err)
	require.Equal(t, 3, n)

	var after int64
	require.NoError(t, env.db.Model(&models.ActivityLog{}).Count(&after).Error)
	require.Equal(t, before, after)

	var high int64
	require.NoError(t, env.db.Model(&models.Task{}).Where("priority = ?", models.PriorityHigh).Count(&high).Error)
	require.EqualValues(t, 3, high)
}

func TestBulkCompleteRecordsPerTask(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")

	mine, err := env.tasks.Create(ctx, alice, &TaskCreateInput{Title: "mine"})
	require.NoError(t, err)
	theirs, err := env.tasks.Create(ctx, bob, &TaskCreateInput{Title: "theirs"})
	require.NoError(t, err)

	// Ids not owned by the actor are skipped, not failed.
	n, err := env.tasks.Bulk(ctx, alice, &BulkActionInput{IDs: []uuid.UUID{mine.ID, theirs.ID}, Action: BulkComplete})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	got, err := env.tasks.Get(ctx, alice, mine.ID, false)
	require.NoError(t, err)
	require.True(t, got.IsCompleted)
	require.Equal(t, models.StatusDone, got.Status)
	require.EqualValues(t, 1, countActivity(t, env.db, "task", mine.ID.String(), models.ActionCompleted))

	untouched, err := env.tasks.Get(ctx, bob, theirs.ID, false)
	require.NoError(t, err)
	require.False(t, untouched.IsCompleted)
}

func TestBulkIDLimits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")

	_, err := env.tasks.Bulk(ctx, alice, &BulkActionInput{Action: BulkComplete})
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	tooMany := make([]uuid.UUID, maxBulkIDs+1)
	for i := range tooMany {
		tooMany[i] = uuid.New()
	}
	_, err = env.tasks.Bulk(ctx, alice, &BulkActionInput{IDs: tooMany, Action: BulkComplete})
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	_, err = env.tasks.Bulk(ctx, alice, &BulkActionInput{IDs: []uuid.UUID{uuid.New()}, Action: "archive"})
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))
}

func TestTaskHiddenFromOtherUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")

	task, err := env.tasks.Create(ctx, alice, &TaskCreateInput{Title: "private"})
	require.NoError(t, err)

	// No view reads as not_found, never forbidden.
	_, err = env.tasks.Get(ctx, bob, task.ID, false)
	require.True(t, appErr.IsCode(err, appErr.CodeNotFound))

	_, err = env.tasks.Update(ctx, bob, task.ID, &TaskUpdateInput{})
	require.True(t, appErr.IsCode(err, appErr.CodeNotFound))
}

func TestProjectViewerCanSeeButNotEdit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")

	project, err := env.projects.Create(ctx, alice, &ProjectCreateInput{Name: "shared"})
	require.NoError(t, err)
	_, err = env.members.Add(ctx, alice, project.ID, bob.Email, models.RoleViewer)
	require.NoError(t, err)

	task, err := env.tasks.Create(ctx, alice, &TaskCreateInput{Title: "team task", ProjectID: &project.ID})
	require.NoError(t, err)

	got, err := env.tasks.Get(ctx, bob, task.ID, false)
	require.NoError(t, err)
	require.Equal(t, task.ID, got.ID)

	title := "renamed"
	_, err = env.tasks.Update(ctx, bob, task.ID, &TaskUpdateInput{Title: &title})
	require.True(t, appErr.IsCode(err, appErr.CodeForbidden))

	err = env.tasks.Delete(ctx, bob, task.ID)
	require.True(t, appErr.IsCode(err, appErr.CodeForbidden))
}

func TestViewerCannotCreateInProject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")
	carol := createUser(t, env.db, "carol")

	project, err := env.projects.Create(ctx, alice, &ProjectCreateInput{Name: "locked"})
	require.NoError(t, err)
	_, err = env.members.Add(ctx, alice, project.ID, bob.Email, models.RoleViewer)
	require.NoError(t, err)

	_, err = env.tasks.Create(ctx, bob, &TaskCreateInput{Title: "nope", ProjectID: &project.ID})
	require.True(t, appErr.IsCode(err, appErr.CodeForbidden))

	// A complete outsider cannot even see the project.
	_, err = env.tasks.Create(ctx, carol, &TaskCreateInput{Title: "nope", ProjectID: &project.ID})
	require.True(t, appErr.IsCode(err, appErr.CodeNotFound))
}

func TestAttachTagIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")

	task, err := env.tasks.Create(ctx, alice, &TaskCreateInput{Title: "tagged"})
	require.NoError(t, err)
	tag, err := env.tags.Create(ctx, alice, "later", "hsl(260 60% 50%)")
	require.NoError(t, err)

	link, err := env.tasks.AttachTag(ctx, alice, task.ID, tag.ID)
	require.NoError(t, err)

	again, err := env.tasks.AttachTag(ctx, alice, task.ID, tag.ID)
	require.NoError(t, err)
	require.Equal(t, link.ID, again.ID)

	require.EqualValues(t, 1, countActivity(t, env.db, "task", task.ID.String(), models.ActionTagged))

	require.NoError(t, env.tasks.DetachTag(ctx, alice, task.ID, tag.ID))
	require.EqualValues(t, 1, countActivity(t, env.db, "task", task.ID.String(), models.ActionUntagged))

	err = env.tasks.DetachTag(ctx, alice, task.ID, tag.ID)
	require.True(t, appErr.IsCode(err, appErr.CodeNotFound))
}

func TestListFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")

	_, err := env.tasks.Create(ctx, alice, &TaskCreateInput{Title: "fix login bug", Priority: models.PriorityHigh})
	require.NoError(t, err)
	_, err = env.tasks.Create(ctx, alice, &TaskCreateInput{Title: "plan roadmap"})
	require.NoError(t, err)

	list, total, err := env.tasks.List(ctx, alice, repository.TaskFilters{Priority: models.PriorityHigh})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "fix login bug", list[0].Title)

	list, total, err = env.tasks.List(ctx, alice, repository.TaskFilters{Search: "roadmap"})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, "plan roadmap", list[0].Title)
}
