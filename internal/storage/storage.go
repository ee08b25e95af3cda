// Package storage defines the persistence contract for student records.
//
// The service layer depends only on the Storage interface, so any backend
// (SQLite, PostgreSQL, in-memory, or a caching decorator around one of
// them) can be swapped in from main.go without touching the service or
// the HTTP handlers.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/student-management/internal/types"
)

// ErrNotFound is returned by FindByID when no record has the given id.
// Backends must return it unwrapped or wrapped with %w so errors.Is works.
var ErrNotFound = errors.New("storage: student not found")

// Storage is the database contract.
type Storage interface {
	// FindAll returns every student in backend-defined order.
	// An empty store yields an empty, non-nil slice.
	FindAll(ctx context.Context) ([]types.Student, error)

	// FindByID returns the student with the given id, or ErrNotFound.
	FindByID(ctx context.Context, id int64) (types.Student, error)

	// Save persists the student. A zero ID inserts a new row and the
	// backend assigns the id; a non-zero ID inserts or replaces the row
	// with that id. The stored record is returned.
	Save(ctx context.Context, student types.Student) (types.Student, error)

	// DeleteByID removes the student with the given id. Deleting an id
	// that does not exist is not an error.
	DeleteByID(ctx context.Context, id int64) error
}
