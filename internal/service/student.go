// Package service holds the student business operations. It sits between
// the HTTP handlers and the storage layer and keeps no state of its own.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aanand-mishra/student-management/internal/storage"
	"github.com/aanand-mishra/student-management/internal/types"
)

// ErrStudentNotFound matches any *NotFoundError via errors.Is.
var ErrStudentNotFound = errors.New("student not found")

// NotFoundError reports that no student has the given id.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("student not found with id: %d", e.ID)
}

// Is lets callers test with errors.Is(err, ErrStudentNotFound).
func (e *NotFoundError) Is(target error) bool {
	return target == ErrStudentNotFound
}

// StudentService maps the five student operations onto a storage.Storage.
type StudentService struct {
	repo storage.Storage
}

// NewStudentService creates a service backed by repo.
func NewStudentService(repo storage.Storage) *StudentService {
	return &StudentService{repo: repo}
}

// GetAllStudents returns every student in storage order.
func (s *StudentService) GetAllStudents(ctx context.Context) ([]types.Student, error) {
	return s.repo.FindAll(ctx)
}

// GetStudentByID returns the student with id or a *NotFoundError.
func (s *StudentService) GetStudentByID(ctx context.Context, id int64) (types.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return types.Student{}, &NotFoundError{ID: id}
	}
	if err != nil {
		return types.Student{}, err
	}
	return student, nil
}

// CreateStudent persists student as a new record. Any id on the input is
// ignored; the returned record carries the id assigned by storage.
func (s *StudentService) CreateStudent(ctx context.Context, student types.Student) (types.Student, error) {
	student.ID = 0
	return s.repo.Save(ctx, student)
}

// UpdateStudent copies name, email and course from student onto the
// existing record with id and saves it. The id never changes.
func (s *StudentService) UpdateStudent(ctx context.Context, id int64, student types.Student) (types.Student, error) {
	existing, err := s.GetStudentByID(ctx, id)
	if err != nil {
		return types.Student{}, err
	}

	existing.Name = student.Name
	existing.Email = student.Email
	existing.Course = student.Course

	return s.repo.Save(ctx, existing)
}

// DeleteStudent removes the student with id. Deleting an id that does not
// exist succeeds.
func (s *StudentService) DeleteStudent(ctx context.Context, id int64) error {
	return s.repo.DeleteByID(ctx, id)
}
