// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// SQLite keeps everything in a single file on disk: no network and no
// separate server process. It is the default driver for local runs.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aanand-mishra/student-management/internal/config"
	"github.com/aanand-mishra/student-management/internal/storage"
	"github.com/aanand-mishra/student-management/internal/types"

	// Side-effect only: registers the "sqlite3" driver.
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Storage.
// A single *sql.DB is a connection pool and is safe for concurrent use.
type SQLite struct {
	Db *sql.DB
}

// New opens the SQLite database at cfg.StoragePath, creates the students
// table if it does not already exist, and returns a ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	db, err := sql.Open("sqlite3", cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// Idempotent, so it is safe to run on every startup.
	//   id:     integer primary key; AUTOINCREMENT never reuses a deleted id
	//   name:   student's full name
	//   email:  student's email address
	//   course: course the student is enrolled in
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS students (
			id     INTEGER PRIMARY KEY AUTOINCREMENT,
			name   TEXT    NOT NULL,
			email  TEXT    NOT NULL,
			course TEXT    NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// Close releases the underlying connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

// ─────────────────────────────────────────────────────────────────────────────
// FindAll returns all student rows ordered by primary key.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) FindAll(ctx context.Context) ([]types.Student, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT id, name, email, course FROM students ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("FindAll: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("FindAll: query: %w", err)
	}
	defer rows.Close()

	// Non-nil so an empty table encodes as [] rather than null.
	students := make([]types.Student, 0)

	for rows.Next() {
		var student types.Student

		if err := rows.Scan(
			&student.ID,
			&student.Name,
			&student.Email,
			&student.Course,
		); err != nil {
			return nil, fmt.Errorf("FindAll: scan row: %w", err)
		}

		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("FindAll: rows iteration: %w", err)
	}

	return students, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// FindByID fetches exactly one student row matched by primary key.
// sql.ErrNoRows is translated to storage.ErrNotFound.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) FindByID(ctx context.Context, id int64) (types.Student, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT id, name, email, course FROM students WHERE id = ? LIMIT 1",
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("FindByID: prepare: %w", err)
	}
	defer stmt.Close()

	var student types.Student

	// The order of Scan targets must match the SELECT column order.
	err = stmt.QueryRowContext(ctx, id).Scan(
		&student.ID,
		&student.Name,
		&student.Email,
		&student.Course,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Student{}, storage.ErrNotFound
		}
		return types.Student{}, fmt.Errorf("FindByID: scan: %w", err)
	}

	return student, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Save inserts a new row when student.ID is zero and uses the generated
// primary key. With a non-zero ID it upserts, so a row removed in the
// meantime is recreated under the same id.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) Save(ctx context.Context, student types.Student) (types.Student, error) {
	if student.ID == 0 {
		return s.insert(ctx, student)
	}

	stmt, err := s.Db.PrepareContext(ctx, `
		INSERT INTO students (id, name, email, course) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name   = excluded.name,
			email  = excluded.email,
			course = excluded.course
	`)
	if err != nil {
		return types.Student{}, fmt.Errorf("Save: prepare: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, student.ID, student.Name, student.Email, student.Course)
	if err != nil {
		return types.Student{}, fmt.Errorf("Save: exec: %w", err)
	}

	return student, nil
}

func (s *SQLite) insert(ctx context.Context, student types.Student) (types.Student, error) {
	// Placeholders keep user input out of the SQL text.
	stmt, err := s.Db.PrepareContext(ctx,
		"INSERT INTO students (name, email, course) VALUES (?, ?, ?)",
	)
	if err != nil {
		return types.Student{}, fmt.Errorf("Save: prepare insert: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, student.Name, student.Email, student.Course)
	if err != nil {
		return types.Student{}, fmt.Errorf("Save: exec insert: %w", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return types.Student{}, fmt.Errorf("Save: last insert id: %w", err)
	}

	student.ID = lastID
	return student, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// DeleteByID removes a student row by primary key. Zero affected rows is
// not treated as an error.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) DeleteByID(ctx context.Context, id int64) error {
	stmt, err := s.Db.PrepareContext(ctx, "DELETE FROM students WHERE id = ?")
	if err != nil {
		return fmt.Errorf("DeleteByID: prepare: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("DeleteByID: exec: %w", err)
	}

	return nil
}
