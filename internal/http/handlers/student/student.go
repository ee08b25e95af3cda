// Package student contains the HTTP handlers for the Student resource.
//
// Each exported function is a factory: it receives the service once at
// route registration and returns the http.HandlerFunc that runs on every
// request.
//
//	router.HandleFunc("POST /api/students", student.New(svc))
package student

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/student-management/internal/service"
	"github.com/aanand-mishra/student-management/internal/types"
	"github.com/aanand-mishra/student-management/internal/utils/response"
)

// Service is the subset of *service.StudentService the handlers need.
type Service interface {
	GetAllStudents(ctx context.Context) ([]types.Student, error)
	GetStudentByID(ctx context.Context, id int64) (types.Student, error)
	CreateStudent(ctx context.Context, student types.Student) (types.Student, error)
	UpdateStudent(ctx context.Context, id int64, student types.Student) (types.Student, error)
	DeleteStudent(ctx context.Context, id int64) error
}

// validate caches struct metadata, so one instance is shared.
var validate = validator.New()

// Register mounts the student routes on router:
//
//	POST   /api/students        create a new student
//	GET    /api/students        list all students
//	GET    /api/students/{id}   get one student by id
//	PUT    /api/students/{id}   update a student
//	DELETE /api/students/{id}   delete a student
func Register(router *http.ServeMux, svc Service) {
	router.HandleFunc("POST /api/students", New(svc))
	router.HandleFunc("GET /api/students", GetList(svc))
	router.HandleFunc("GET /api/students/{id}", GetByID(svc))
	router.HandleFunc("PUT /api/students/{id}", Update(svc))
	router.HandleFunc("DELETE /api/students/{id}", Delete(svc))
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/students
//
// Request body:
//
//	{ "name": "Rakesh", "email": "rakesh@test.com", "course": "CS" }
//
// 201 Created with the stored student (including its id).
// 400 for an empty, malformed or invalid body, 413 above 1 MiB; 500 on
// storage errors.
// ─────────────────────────────────────────────────────────────────────────────
func New(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		student, ok := decodeStudent(w, r)
		if !ok {
			return
		}

		created, err := svc.CreateStudent(r.Context(), student)
		if err != nil {
			slog.Error("error creating student", slog.String("error", err.Error()))
			writeServiceError(w, err)
			return
		}

		slog.Info("student created", slog.Int64("id", created.ID))
		response.WriteJSON(w, http.StatusCreated, created)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /api/students/{id}
//
// 200 with the student, 400 for a non-integer id, 404 if there is no such
// student.
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		slog.Info("getting a student", slog.Int64("id", id))

		student, err := svc.GetStudentByID(r.Context(), id)
		if err != nil {
			slog.Error("error getting student",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			writeServiceError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /api/students
//
// 200 with a JSON array; [] (never null) when there are no students.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all students")

		students, err := svc.GetAllStudents(r.Context())
		if err != nil {
			slog.Error("error getting students", slog.String("error", err.Error()))
			writeServiceError(w, err)
			return
		}
		if students == nil {
			students = []types.Student{}
		}

		response.WriteJSON(w, http.StatusOK, students)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/students/{id}
//
// Replaces name, email and course of an existing student. All three are
// required, same as on create. An id in the body is ignored.
//
// 200 with the updated student, 400 on bad id or body, 404 if missing.
// ─────────────────────────────────────────────────────────────────────────────
func Update(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		slog.Info("updating a student", slog.Int64("id", id))

		student, ok := decodeStudent(w, r)
		if !ok {
			return
		}

		updated, err := svc.UpdateStudent(r.Context(), id, student)
		if err != nil {
			slog.Error("error updating student",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			writeServiceError(w, err)
			return
		}

		slog.Info("student updated", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /api/students/{id}
//
// 200 { "status": "deleted" } whether or not the student existed.
// ─────────────────────────────────────────────────────────────────────────────
func Delete(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		slog.Info("deleting a student", slog.Int64("id", id))

		if err := svc.DeleteStudent(r.Context(), id); err != nil {
			slog.Error("error deleting student",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			writeServiceError(w, err)
			return
		}

		slog.Info("student deleted", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// parseID reads the {id} path value. On failure it writes a 400 and
// returns false.
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		response.Error(w, http.StatusBadRequest, errors.New("invalid id: must be an integer"))
		return 0, false
	}
	return id, true
}

// maxBodyBytes caps the size of a student request body.
const maxBodyBytes = 1 << 20

// decodeStudent decodes and validates the request body, which must hold
// exactly one JSON object of at most maxBodyBytes. On failure it writes a
// 400 (413 for an oversized body) and returns false.
func decodeStudent(w http.ResponseWriter, r *http.Request) (types.Student, bool) {
	var student types.Student

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	err := dec.Decode(&student)
	if errors.Is(err, io.EOF) {
		response.Error(w, http.StatusBadRequest, errors.New("request body is empty"))
		return types.Student{}, false
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(w, http.StatusRequestEntityTooLarge,
			fmt.Errorf("request body must not exceed %d bytes", tooLarge.Limit))
		return types.Student{}, false
	}
	if err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return types.Student{}, false
	}
	// Anything after the object other than whitespace is rejected.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		response.Error(w, http.StatusBadRequest, errors.New("request body must contain a single JSON object"))
		return types.Student{}, false
	}

	if err := validate.Struct(student); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			response.Invalid(w, verrs)
		} else {
			response.Error(w, http.StatusBadRequest, err)
		}
		return types.Student{}, false
	}

	return student, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, service.ErrStudentNotFound) {
		status = http.StatusNotFound
	}
	response.Error(w, status, err)
}
