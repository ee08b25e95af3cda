// Package memory provides an in-process implementation of storage.Storage.
// Records live in a map for the lifetime of the process; it backs the
// "memory" storage driver and the service and handler tests.
package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/aanand-mishra/student-management/internal/storage"
	"github.com/aanand-mishra/student-management/internal/types"
)

// Memory is safe for concurrent use.
type Memory struct {
	mu       sync.RWMutex
	students map[int64]types.Student
	lastID   int64
}

// New returns an empty store.
func New() *Memory {
	return &Memory{students: make(map[int64]types.Student)}
}

// FindAll returns all students ordered by id.
func (m *Memory) FindAll(_ context.Context) ([]types.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	students := make([]types.Student, 0, len(m.students))
	for _, s := range m.students {
		students = append(students, s)
	}
	slices.SortFunc(students, func(a, b types.Student) int {
		return cmp.Compare(a.ID, b.ID)
	})

	return students, nil
}

// FindByID returns storage.ErrNotFound when no record has the id.
func (m *Memory) FindByID(_ context.Context, id int64) (types.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	student, ok := m.students[id]
	if !ok {
		return types.Student{}, storage.ErrNotFound
	}
	return student, nil
}

// Save assigns the next id to new records. An explicit id larger than any
// seen so far moves the counter forward so later inserts never collide.
func (m *Memory) Save(_ context.Context, student types.Student) (types.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if student.ID == 0 {
		m.lastID++
		student.ID = m.lastID
	} else if student.ID > m.lastID {
		m.lastID = student.ID
	}

	m.students[student.ID] = student
	return student, nil
}

// DeleteByID removes the record if present; a missing id is a no-op.
func (m *Memory) DeleteByID(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.students, id)
	return nil
}
