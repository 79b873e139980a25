package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	appErr "github.com/taskhive/engine/pkg/errors"
)

func TestNoteLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")

	note, err := env.notes.Create(ctx, alice, "remember the milk")
	require.NoError(t, err)
	require.False(t, note.IsArchived)

	_, err = env.notes.Create(ctx, alice, "   ")
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	archived := true
	note, err = env.notes.Update(ctx, alice, note.ID, nil, &archived)
	require.NoError(t, err)
	require.True(t, note.IsArchived)

	active, err := env.notes.List(ctx, alice, boolPtr(false))
	require.NoError(t, err)
	require.Empty(t, active)

	all, err := env.notes.List(ctx, alice, nil)
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.NoError(t, env.notes.Delete(ctx, alice, note.ID))
	_, err = env.notes.Update(ctx, alice, note.ID, nil, nil)
	require.True(t, appErr.IsCode(err, appErr.CodeNotFound))
}

func TestNoteConvertsOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")

	note, err := env.notes.Create(ctx, alice, "draft the quarterly summary")
	require.NoError(t, err)

	converted, task, err := env.notes.ConvertToTask(ctx, alice, note.ID, nil)
	require.NoError(t, err)
	require.Equal(t, "draft the quarterly summary", task.Title)
	require.Equal(t, "draft the quarterly summary", task.Description)
	require.True(t, converted.IsArchived)
	require.NotNil(t, converted.ConvertedTaskID)
	require.Equal(t, task.ID, *converted.ConvertedTaskID)

	_, _, err = env.notes.ConvertToTask(ctx, alice, note.ID, nil)
	require.True(t, appErr.IsCode(err, appErr.CodeInvalidOperation))
}

func TestNoteConvertTruncatesLongTitle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")

	long := "this content is comfortably over fifty characters long so the title gets cut"
	note, err := env.notes.Create(ctx, alice, long)
	require.NoError(t, err)

	_, task, err := env.notes.ConvertToTask(ctx, alice, note.ID, nil)
	require.NoError(t, err)
	require.LessOrEqual(t, len(task.Title), 50)
	require.True(t, len(task.Title) < len(long))
	require.Equal(t, long, task.Description)
}

func TestNoteHiddenFromOtherUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")

	note, err := env.notes.Create(ctx, alice, "private thought")
	require.NoError(t, err)

	_, err = env.notes.Update(ctx, bob, note.ID, nil, nil)
	require.True(t, appErr.IsCode(err, appErr.CodeNotFound))

	_, _, err = env.notes.ConvertToTask(ctx, bob, note.ID, nil)
	require.True(t, appErr.IsCode(err, appErr.CodeNotFound))
}

func boolPtr(b bool) *bool { return &b }
