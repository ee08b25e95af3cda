// Package storagetest holds a behavioural test suite that every
// storage.Storage backend runs against itself.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-management/internal/storage"
	"github.com/aanand-mishra/student-management/internal/types"
)

// Run exercises the Storage contract. newStore must return an empty store
// each time it is called.
func Run(t *testing.T, newStore func(t *testing.T) storage.Storage) {
	t.Run("FindAllEmpty", func(t *testing.T) {
		s := newStore(t)

		students, err := s.FindAll(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, students)
		assert.Empty(t, students)
	})

	t.Run("SaveAssignsID", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		first, err := s.Save(ctx, types.Student{Name: "Alice", Email: "a@x.com", Course: "CS"})
		require.NoError(t, err)
		second, err := s.Save(ctx, types.Student{Name: "Bob", Email: "b@x.com", Course: "Math"})
		require.NoError(t, err)

		assert.NotZero(t, first.ID)
		assert.NotZero(t, second.ID)
		assert.NotEqual(t, first.ID, second.ID)
		assert.Equal(t, "Alice", first.Name)

		got, err := s.FindByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, first, got)
	})

	t.Run("SaveExistingReplaces", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		created, err := s.Save(ctx, types.Student{Name: "Alice", Email: "a@x.com", Course: "CS"})
		require.NoError(t, err)

		created.Name = "Alicia"
		created.Course = "Math"
		updated, err := s.Save(ctx, created)
		require.NoError(t, err)
		assert.Equal(t, created, updated)

		got, err := s.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, types.Student{ID: created.ID, Name: "Alicia", Email: "a@x.com", Course: "Math"}, got)

		all, err := s.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("FindAllOrderedByID", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		for _, name := range []string{"Alice", "Bob", "Carol"} {
			_, err := s.Save(ctx, types.Student{Name: name, Email: name + "@x.com", Course: "CS"})
			require.NoError(t, err)
		}

		all, err := s.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "Alice", all[0].Name)
		assert.Equal(t, "Bob", all[1].Name)
		assert.Equal(t, "Carol", all[2].Name)
		assert.Less(t, all[0].ID, all[1].ID)
		assert.Less(t, all[1].ID, all[2].ID)
	})

	t.Run("FindByIDMissing", func(t *testing.T) {
		s := newStore(t)

		_, err := s.FindByID(context.Background(), 42)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("DeleteByID", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		created, err := s.Save(ctx, types.Student{Name: "Alice", Email: "a@x.com", Course: "CS"})
		require.NoError(t, err)

		require.NoError(t, s.DeleteByID(ctx, created.ID))

		_, err = s.FindByID(ctx, created.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("DeleteByIDMissingIsNoop", func(t *testing.T) {
		s := newStore(t)

		assert.NoError(t, s.DeleteByID(context.Background(), 42))
	})
}
