package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskhive/engine/internal/models"
	appErr "github.com/taskhive/engine/pkg/errors"
)

func TestTagValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")

	_, err := env.tags.Create(ctx, alice, "", "hsl(0 0% 0%)")
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	_, err = env.tags.Create(ctx, alice, strings.Repeat("x", 51), "hsl(0 0% 0%)")
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	_, err = env.tags.Create(ctx, alice, "red", "#ff0000")
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	var ae *appErr.AppError
	require.ErrorAs(t, err, &ae)
	require.Contains(t, ae.Fields, "color")
}

func TestTagNameUniquePerOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")

	_, err := env.tags.Create(ctx, alice, "urgent", "hsl(0 100% 50%)")
	require.NoError(t, err)

	_, err = env.tags.Create(ctx, alice, "urgent", "hsl(30 100% 50%)")
	require.True(t, appErr.IsCode(err, appErr.CodeConflict))

	// A different owner may reuse the name.
	_, err = env.tags.Create(ctx, bob, "urgent", "hsl(0 100% 50%)")
	require.NoError(t, err)
}

func TestTagUpdateConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")

	first, err := env.tags.Create(ctx, alice, "first", "hsl(0 50% 50%)")
	require.NoError(t, err)
	second, err := env.tags.Create(ctx, alice, "second", "hsl(90 50% 50%)")
	require.NoError(t, err)

	name := "first"
	_, err = env.tags.Update(ctx, alice, second.ID, &name, nil)
	require.True(t, appErr.IsCode(err, appErr.CodeConflict))

	// Saving with the own current name is not a conflict.
	same := "first"
	updated, err := env.tags.Update(ctx, alice, first.ID, &same, nil)
	require.NoError(t, err)
	require.Equal(t, "first", updated.Name)
}

func TestTagDeleteRemovesLinks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")

	tag, err := env.tags.Create(ctx, alice, "temp", "hsl(200 80% 60%)")
	require.NoError(t, err)
	task, err := env.tasks.Create(ctx, alice, &TaskCreateInput{Title: "linked"})
	require.NoError(t, err)
	_, err = env.tasks.AttachTag(ctx, alice, task.ID, tag.ID)
	require.NoError(t, err)

	require.NoError(t, env.tags.Delete(ctx, alice, tag.ID))

	var n int64
	require.NoError(t, env.db.Model(&models.TaskTag{}).Where("tag_id = ?", tag.ID).Count(&n).Error)
	require.Zero(t, n)

	// The task itself is untouched.
	got, err := env.tasks.Get(ctx, alice, task.ID, false)
	require.NoError(t, err)
	require.Empty(t, got.TaskTags)
}

func TestTagNotVisibleAcrossOwners(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")

	tag, err := env.tags.Create(ctx, alice, "mine", "hsl(10 10% 10%)")
	require.NoError(t, err)

	_, err = env.tags.Update(ctx, bob, tag.ID, nil, nil)
	require.True(t, appErr.IsCode(err, appErr.CodeNotFound))

	err = env.tags.Delete(ctx, bob, tag.ID)
	require.True(t, appErr.IsCode(err, appErr.CodeNotFound))

	mine, err := env.tags.List(ctx, bob)
	require.NoError(t, err)
	require.Empty(t, mine)
}
