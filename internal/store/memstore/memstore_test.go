package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monocle-dev/taskhub/internal/apperr"
	"github.com/monocle-dev/taskhub/internal/models"
	"github.com/monocle-dev/taskhub/internal/store"
	"github.com/monocle-dev/taskhub/internal/types"
)

func TestTransactionDiscardsFailedWork(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.Transaction(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.CreateUser(ctx, &models.User{Name: "Alice", Email: "alice@example.com"}))
		return errors.New("abort")
	})
	require.EqualError(t, err, "abort")

	require.NoError(t, s.Transaction(ctx, func(tx store.Tx) error {
		users, err := tx.ListUsers(ctx, store.Page{})
		assert.Empty(t, users)
		return err
	}))
}

func TestUniqueEmail(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.Transaction(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.CreateUser(ctx, &models.User{Name: "Alice", Email: "alice@example.com"}))
		return tx.CreateUser(ctx, &models.User{Name: "Other", Email: "alice@example.com"})
	})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestCommentsNewestFirst(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s := New().WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})
	ctx := context.Background()

	require.NoError(t, s.Transaction(ctx, func(tx store.Tx) error {
		user := &models.User{Name: "Alice", Email: "alice@example.com"}
		require.NoError(t, tx.CreateUser(ctx, user))
		project := &models.Project{Title: "Apollo", OwnerID: user.ID, Status: types.ProjectStatusActive}
		require.NoError(t, tx.CreateProject(ctx, project))
		for _, content := range []string{"first", "second", "third"} {
			require.NoError(t, tx.CreateComment(ctx, &models.Comment{Content: content, ProjectID: project.ID, UserID: user.ID}))
		}

		comments, err := tx.ListComments(ctx, store.CommentFilter{ProjectID: &project.ID})
		require.NoError(t, err)
		require.Len(t, comments, 3)
		assert.Equal(t, "third", comments[0].Content)
		assert.Equal(t, "first", comments[2].Content)

		paged, err := tx.ListComments(ctx, store.CommentFilter{Page: store.Page{Skip: 1, Limit: 1}})
		require.NoError(t, err)
		require.Len(t, paged, 1)
		assert.Equal(t, "second", paged[0].Content)
		return nil
	}))
}

func TestDeleteProjectCascades(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Transaction(ctx, func(tx store.Tx) error {
		user := &models.User{Name: "Alice", Email: "alice@example.com"}
		require.NoError(t, tx.CreateUser(ctx, user))
		project := &models.Project{Title: "Apollo", OwnerID: user.ID}
		require.NoError(t, tx.CreateProject(ctx, project))
		require.NoError(t, tx.CreateMembership(ctx, &models.Membership{UserID: user.ID, ProjectID: project.ID, Role: types.MembershipRoleOwner}))
		require.NoError(t, tx.CreateTask(ctx, &models.Task{Title: "Launch", ProjectID: project.ID}))
		require.NoError(t, tx.CreateComment(ctx, &models.Comment{Content: "go", ProjectID: project.ID, UserID: user.ID}))
		require.NoError(t, tx.CreateFile(ctx, &models.File{FileName: "plan.pdf", ProjectID: project.ID, UserID: user.ID}))

		require.NoError(t, tx.DeleteProject(ctx, project.ID))

		memberships, _ := tx.ListMemberships(ctx, store.MembershipFilter{})
		tasks, _ := tx.ListTasks(ctx, store.TaskFilter{})
		comments, _ := tx.ListComments(ctx, store.CommentFilter{})
		files, _ := tx.ListFiles(ctx, project.ID)
		assert.Empty(t, memberships)
		assert.Empty(t, tasks)
		assert.Empty(t, comments)
		assert.Empty(t, files)

		_, err := tx.GetProject(ctx, project.ID)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
		return nil
	}))
}

func TestDeleteUserClearsAssignments(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Transaction(ctx, func(tx store.Tx) error {
		owner := &models.User{Name: "Alice", Email: "alice@example.com"}
		worker := &models.User{Name: "Bob", Email: "bob@example.com"}
		require.NoError(t, tx.CreateUser(ctx, owner))
		require.NoError(t, tx.CreateUser(ctx, worker))
		project := &models.Project{Title: "Apollo", OwnerID: owner.ID}
		require.NoError(t, tx.CreateProject(ctx, project))
		task := &models.Task{Title: "Launch", ProjectID: project.ID, AssignedTo: &worker.ID}
		require.NoError(t, tx.CreateTask(ctx, task))

		require.NoError(t, tx.DeleteUser(ctx, worker.ID))

		got, err := tx.GetTask(ctx, task.ID)
		require.NoError(t, err)
		assert.Nil(t, got.AssignedTo)
		return nil
	}))
}

func TestCreateRejectsDanglingReferences(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.Transaction(ctx, func(tx store.Tx) error {
		return tx.CreateMembership(ctx, &models.Membership{UserID: 1, ProjectID: 1})
	})
	assert.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestTransactionHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := New().Transaction(ctx, func(store.Tx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
