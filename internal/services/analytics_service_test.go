package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskhive/engine/internal/models"
)

func TestDashboardStatsZeroFilled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")

	stats, err := env.analytics.DashboardStats(ctx, alice)
	require.NoError(t, err)
	require.Zero(t, stats.TotalTasks)
	require.Len(t, stats.TasksByPriority, 4)
	for _, p := range models.Priorities() {
		require.Contains(t, stats.TasksByPriority, p)
		require.Zero(t, stats.TasksByPriority[p])
	}
}

func TestDashboardStatsCounts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")
	bob := createUser(t, env.db, "bob")

	for i := 0; i < 3; i++ {
		_, err := env.tasks.Create(ctx, alice, &TaskCreateInput{Title: "task", Priority: models.PriorityHigh})
		require.NoError(t, err)
	}
	done, err := env.tasks.Create(ctx, alice, &TaskCreateInput{Title: "done one"})
	require.NoError(t, err)
	_, err = env.tasks.UpdateStatus(ctx, alice, done.ID, models.StatusDone)
	require.NoError(t, err)

	// Another user's tasks never leak into the aggregates.
	_, err = env.tasks.Create(ctx, bob, &TaskCreateInput{Title: "not yours"})
	require.NoError(t, err)

	stats, err := env.analytics.DashboardStats(ctx, alice)
	require.NoError(t, err)
	require.EqualValues(t, 4, stats.TotalTasks)
	require.EqualValues(t, 1, stats.CompletedTasks)
	require.EqualValues(t, 3, stats.PendingTasks)
	require.EqualValues(t, 3, stats.TasksByPriority[models.PriorityHigh])
	require.EqualValues(t, 1, stats.TasksByPriority[models.PriorityMedium])
	require.Zero(t, stats.TasksByPriority[models.PriorityLow])
}

func TestDashboardStatsExcludeSoftDeleted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")

	task, err := env.tasks.Create(ctx, alice, &TaskCreateInput{Title: "gone"})
	require.NoError(t, err)
	require.NoError(t, env.tasks.Delete(ctx, alice, task.ID))

	stats, err := env.analytics.DashboardStats(ctx, alice)
	require.NoError(t, err)
	require.Zero(t, stats.TotalTasks)
}

func TestProjectPerformance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")

	project, err := env.projects.Create(ctx, alice, &ProjectCreateInput{Name: "metrics"})
	require.NoError(t, err)

	var last *models.Task
	for i := 0; i < 4; i++ {
		last, err = env.tasks.Create(ctx, alice, &TaskCreateInput{Title: "work", ProjectID: &project.ID})
		require.NoError(t, err)
	}
	_, err = env.tasks.UpdateStatus(ctx, alice, last.ID, models.StatusDone)
	require.NoError(t, err)

	perf, err := env.analytics.ProjectPerformance(ctx, alice)
	require.NoError(t, err)
	require.Len(t, perf, 1)
	require.Equal(t, project.ID, perf[0].ID)
	require.EqualValues(t, 4, perf[0].TotalTasks)
	require.EqualValues(t, 1, perf[0].CompletedTasks)
	require.EqualValues(t, 3, perf[0].PendingTasks)
	require.InDelta(t, 25.0, perf[0].CompletionRate, 0.01)
}

func TestTaskDistribution(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")

	for i := 0; i < 2; i++ {
		_, err := env.tasks.Create(ctx, alice, &TaskCreateInput{Title: "x", Status: models.StatusTodo})
		require.NoError(t, err)
	}
	_, err := env.tasks.Create(ctx, alice, &TaskCreateInput{Title: "y", Status: models.StatusReview})
	require.NoError(t, err)

	dist, err := env.analytics.TaskDistribution(ctx, alice)
	require.NoError(t, err)
	require.Len(t, dist.Status, 2)
	require.Equal(t, models.StatusTodo, dist.Status[0].Value)
	require.EqualValues(t, 2, dist.Status[0].Count)
}

func TestProductivityTrend(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := createUser(t, env.db, "alice")

	task, err := env.tasks.Create(ctx, alice, &TaskCreateInput{Title: "today"})
	require.NoError(t, err)
	_, err = env.tasks.UpdateStatus(ctx, alice, task.ID, models.StatusDone)
	require.NoError(t, err)

	points, err := env.analytics.ProductivityTrend(ctx, alice)
	require.NoError(t, err)
	require.Len(t, points, 1)
	require.EqualValues(t, 1, points[0].Count)
}
