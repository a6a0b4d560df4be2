// Package repotest holds the behaviour every store driver must satisfy.
package repotest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktracker/internal/model"
	"tasktracker/internal/repository"
)

// NewStoreFunc returns an empty store for one subtest.
type NewStoreFunc func(t *testing.T) repository.Store

func Run(t *testing.T, newStore NewStoreFunc) {
	t.Run("Users", func(t *testing.T) { runUsers(t, newStore) })
	t.Run("Tasks", func(t *testing.T) { runTasks(t, newStore) })
	t.Run("Activities", func(t *testing.T) { runActivities(t, newStore) })
}

func strPtr(s string) *string { return &s }

func mustCreateUser(t *testing.T, repo repository.UserRepository, username, email string) *model.User {
	t.Helper()
	u := &model.User{Username: username, Email: email, PasswordHash: "hash"}
	require.NoError(t, repo.Create(context.Background(), u))
	require.True(t, model.IsValidID(u.ID))
	return u
}

func mustCreateTask(t *testing.T, repo repository.TaskRepository, owner, title, desc string) *model.Task {
	t.Helper()
	task := &model.Task{OwnerID: owner, Title: title, Description: desc, Status: model.TaskStatusPending}
	require.NoError(t, repo.Create(context.Background(), task))
	require.True(t, model.IsValidID(task.ID))
	return task
}

func runUsers(t *testing.T, newStore NewStoreFunc) {
	ctx := context.Background()

	t.Run("create and lookup", func(t *testing.T) {
		users := newStore(t).Users
		alice := mustCreateUser(t, users, "alice", "alice@example.com")

		got, err := users.GetByID(ctx, alice.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "alice", got.Username)
		assert.False(t, got.CreatedAt.IsZero())

		got, err = users.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, alice.ID, got.ID)

		got, err = users.GetByID(ctx, model.NewID())
		require.NoError(t, err)
		assert.Nil(t, got)

		got, err = users.GetByEmail(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("unique username and email", func(t *testing.T) {
		users := newStore(t).Users
		mustCreateUser(t, users, "alice", "alice@example.com")

		err := users.Create(ctx, &model.User{Username: "alice", Email: "other@example.com", PasswordHash: "h"})
		assert.ErrorIs(t, err, repository.ErrDuplicateKey)

		err = users.Create(ctx, &model.User{Username: "other", Email: "alice@example.com", PasswordHash: "h"})
		assert.ErrorIs(t, err, repository.ErrDuplicateKey)
	})

	t.Run("find conflict excludes self", func(t *testing.T) {
		users := newStore(t).Users
		alice := mustCreateUser(t, users, "alice", "alice@example.com")
		bob := mustCreateUser(t, users, "bob", "bob@example.com")

		got, err := users.FindConflict(ctx, "alice", "", "")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, alice.ID, got.ID)

		got, err = users.FindConflict(ctx, "nobody", "bob@example.com", "")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, bob.ID, got.ID)

		got, err = users.FindConflict(ctx, "alice", "alice@example.com", alice.ID)
		require.NoError(t, err)
		assert.Nil(t, got)

		got, err = users.FindConflict(ctx, "", "", "")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("find conflict prefers the email match", func(t *testing.T) {
		users := newStore(t).Users
		mustCreateUser(t, users, "alice", "a@example.com")
		bob := mustCreateUser(t, users, "bob", "b@example.com")

		for i := 0; i < 20; i++ {
			got, err := users.FindConflict(ctx, "alice", "b@example.com", "")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, bob.ID, got.ID)
		}
	})

	t.Run("partial update", func(t *testing.T) {
		users := newStore(t).Users
		alice := mustCreateUser(t, users, "alice", "alice@example.com")
		mustCreateUser(t, users, "bob", "bob@example.com")

		got, err := users.Update(ctx, alice.ID, repository.UserPatch{Username: strPtr("alice_2")})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "alice_2", got.Username)
		assert.Equal(t, "alice@example.com", got.Email)

		_, err = users.Update(ctx, alice.ID, repository.UserPatch{Email: strPtr("bob@example.com")})
		assert.ErrorIs(t, err, repository.ErrDuplicateKey)

		got, err = users.Update(ctx, model.NewID(), repository.UserPatch{Username: strPtr("ghost")})
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func runTasks(t *testing.T, newStore NewStoreFunc) {
	ctx := context.Background()
	owner := model.NewID()
	other := model.NewID()

	t.Run("create defaults and scoped get", func(t *testing.T) {
		tasks := newStore(t).Tasks
		task := &model.Task{OwnerID: owner, Title: "Buy milk", Description: "2%, one gallon"}
		require.NoError(t, tasks.Create(ctx, task))
		assert.Equal(t, model.TaskStatusPending, task.Status)
		assert.False(t, task.CreatedAt.IsZero())

		got, err := tasks.Get(ctx, repository.TaskScope{OwnerID: owner, TaskID: task.ID})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Buy milk", got.Title)
		assert.Equal(t, "2%, one gallon", got.Description)
		assert.Equal(t, model.TaskStatusPending, got.Status)

		got, err = tasks.Get(ctx, repository.TaskScope{OwnerID: other, TaskID: task.ID})
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("scope must carry owner and id", func(t *testing.T) {
		tasks := newStore(t).Tasks
		task := mustCreateTask(t, tasks, owner, "t", "d")

		_, err := tasks.Get(ctx, repository.TaskScope{TaskID: task.ID})
		assert.ErrorIs(t, err, repository.ErrInvalidScope)
		_, err = tasks.Update(ctx, repository.TaskScope{TaskID: task.ID}, repository.TaskPatch{Title: strPtr("x")})
		assert.ErrorIs(t, err, repository.ErrInvalidScope)
		_, err = tasks.Delete(ctx, repository.TaskScope{TaskID: task.ID})
		assert.ErrorIs(t, err, repository.ErrInvalidScope)
	})

	t.Run("list newest first with filters", func(t *testing.T) {
		tasks := newStore(t).Tasks
		report := mustCreateTask(t, tasks, owner, "Write report", "quarterly numbers")
		garage := mustCreateTask(t, tasks, owner, "Clean garage", "sweep the floor")
		mustCreateTask(t, tasks, other, "Write REPORT for someone else", "x")

		status := model.TaskStatusCompleted
		_, err := tasks.Update(ctx, repository.TaskScope{OwnerID: owner, TaskID: garage.ID}, repository.TaskPatch{Status: &status})
		require.NoError(t, err)

		all, err := tasks.List(ctx, repository.TaskFilter{OwnerID: owner})
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, garage.ID, all[0].ID)
		assert.Equal(t, report.ID, all[1].ID)

		found, err := tasks.List(ctx, repository.TaskFilter{OwnerID: owner, Search: "REPORT"})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, report.ID, found[0].ID)

		found, err = tasks.List(ctx, repository.TaskFilter{OwnerID: owner, Search: "floor"})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, garage.ID, found[0].ID)

		found, err = tasks.List(ctx, repository.TaskFilter{OwnerID: owner, Status: model.TaskStatusCompleted})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, garage.ID, found[0].ID)

		found, err = tasks.List(ctx, repository.TaskFilter{OwnerID: owner, Status: model.TaskStatusPending, Search: "garage"})
		require.NoError(t, err)
		assert.Empty(t, found)
	})

	t.Run("search is literal", func(t *testing.T) {
		tasks := newStore(t).Tasks
		pct := mustCreateTask(t, tasks, owner, "100% done", "all of it")
		mustCreateTask(t, tasks, owner, "plain", "nothing special")
		mustCreateTask(t, tasks, owner, "a.b", "dots")

		found, err := tasks.List(ctx, repository.TaskFilter{OwnerID: owner, Search: "%"})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, pct.ID, found[0].ID)

		found, err = tasks.List(ctx, repository.TaskFilter{OwnerID: owner, Search: "."})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "a.b", found[0].Title)
	})

	t.Run("list is capped", func(t *testing.T) {
		tasks := newStore(t).Tasks
		for i := 0; i < repository.MaxTaskList+5; i++ {
			mustCreateTask(t, tasks, owner, fmt.Sprintf("task %d", i), "bulk")
		}
		all, err := tasks.List(ctx, repository.TaskFilter{OwnerID: owner})
		require.NoError(t, err)
		assert.Len(t, all, repository.MaxTaskList)
	})

	t.Run("partial update", func(t *testing.T) {
		tasks := newStore(t).Tasks
		task := mustCreateTask(t, tasks, owner, "Buy milk", "2%, one gallon")
		scope := repository.TaskScope{OwnerID: owner, TaskID: task.ID}

		status := model.TaskStatusInProgress
		got, err := tasks.Update(ctx, scope, repository.TaskPatch{Status: &status})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, model.TaskStatusInProgress, got.Status)
		assert.Equal(t, "Buy milk", got.Title)
		assert.Equal(t, "2%, one gallon", got.Description)

		got, err = tasks.Update(ctx, scope, repository.TaskPatch{})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, model.TaskStatusInProgress, got.Status)

		got, err = tasks.Update(ctx, repository.TaskScope{OwnerID: other, TaskID: task.ID}, repository.TaskPatch{Title: strPtr("stolen")})
		require.NoError(t, err)
		assert.Nil(t, got)

		got, err = tasks.Get(ctx, scope)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Buy milk", got.Title)
	})

	t.Run("delete", func(t *testing.T) {
		tasks := newStore(t).Tasks
		task := mustCreateTask(t, tasks, owner, "Buy milk", "2%")

		got, err := tasks.Delete(ctx, repository.TaskScope{OwnerID: other, TaskID: task.ID})
		require.NoError(t, err)
		assert.Nil(t, got)

		scope := repository.TaskScope{OwnerID: owner, TaskID: task.ID}
		got, err = tasks.Delete(ctx, scope)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Buy milk", got.Title)

		got, err = tasks.Delete(ctx, scope)
		require.NoError(t, err)
		assert.Nil(t, got)

		fetched, err := tasks.Get(ctx, scope)
		require.NoError(t, err)
		assert.Nil(t, fetched)
	})
}

func runActivities(t *testing.T, newStore NewStoreFunc) {
	ctx := context.Background()
	owner := model.NewID()
	base := time.Now().UTC().Truncate(time.Second)

	activities := newStore(t).Activities
	first := model.NewTaskActivity(&model.Task{ID: model.NewID(), OwnerID: owner, Title: "a"}, model.ActivityTaskCreated, base)
	second := model.NewTaskActivity(&model.Task{ID: model.NewID(), OwnerID: owner, Title: "b"}, model.ActivityTaskDeleted, base.Add(time.Minute))
	foreign := model.NewTaskActivity(&model.Task{ID: model.NewID(), OwnerID: model.NewID(), Title: "c"}, model.ActivityTaskCreated, base)

	require.NoError(t, activities.Create(ctx, &first))
	require.NoError(t, activities.Create(ctx, &second))
	require.NoError(t, activities.Create(ctx, &foreign))

	dup := first
	assert.ErrorIs(t, activities.Create(ctx, &dup), repository.ErrDuplicateKey)

	got, err := activities.ListByOwner(ctx, owner, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
	assert.Equal(t, model.ActivityTaskDeleted, got[0].Action)
	assert.Equal(t, first.ID, got[1].ID)

	got, err = activities.ListByOwner(ctx, owner, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
