package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskhive/engine/internal/models"
)

func TestActivityFeedForTarget(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")

	task, err := env.tasks.Create(ctx, alice, &TaskCreateInput{Title: "traced"})
	require.NoError(t, err)
	title := "traced again"
	_, err = env.tasks.Update(ctx, alice, task.ID, &TaskUpdateInput{Title: &title})
	require.NoError(t, err)

	entries, err := env.activity.ListForTarget(ctx, alice, "task", task.ID.String())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	require.Equal(t, models.ActionUpdated, entries[0].Action)
	require.Equal(t, models.ActionCreated, entries[1].Action)

	// The title snapshot on the creation entry is point-in-time.
	require.Equal(t, "traced", entries[1].TargetTitle)
	require.Equal(t, "Task 'traced' was created", entries[1].Description)
}

func TestActivityFeedSurvivesTargetDeletion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")

	task, err := env.tasks.Create(ctx, alice, &TaskCreateInput{Title: "ephemeral"})
	require.NoError(t, err)
	require.NoError(t, env.tasks.Delete(ctx, alice, task.ID))

	entries, err := env.activity.ListForTarget(ctx, alice, "task", task.ID.String())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, models.ActionDeleted, entries[0].Action)
	require.Equal(t, "ephemeral", entries[0].TargetTitle)
}

func TestActivityFeedByActor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")

	_, err := env.tasks.Create(ctx, alice, &TaskCreateInput{Title: "mine"})
	require.NoError(t, err)
	_, err = env.tasks.Create(ctx, bob, &TaskCreateInput{Title: "theirs"})
	require.NoError(t, err)

	entries, err := env.activity.ListMine(ctx, alice)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "mine", entries[0].TargetTitle)
}
