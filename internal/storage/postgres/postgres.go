// Package postgres implements storage.Storage on PostgreSQL using a pgx
// connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aanand-mishra/student-management/internal/config"
	"github.com/aanand-mishra/student-management/internal/storage"
	"github.com/aanand-mishra/student-management/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS students (
    id     BIGSERIAL PRIMARY KEY,
    name   TEXT NOT NULL,
    email  TEXT NOT NULL,
    course TEXT NOT NULL
)`

// Postgres is safe for concurrent use; the pool hands out connections.
type Postgres struct {
	pool *pgxpool.Pool
}

// New connects to cfg.URL, verifies the connection and creates the
// students table if needed.
func New(ctx context.Context, cfg config.Postgres) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse url: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: create table: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Close closes every connection in the pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// ─────────────────────────────────────────────────────────────────────────────
// FindAll returns every student row ordered by primary key. An empty table
// yields an empty, non-nil slice.
// ─────────────────────────────────────────────────────────────────────────────
func (p *Postgres) FindAll(ctx context.Context) ([]types.Student, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, name, email, course FROM students ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("FindAll: query: %w", err)
	}

	students, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (types.Student, error) {
		return scanStudent(row)
	})
	if err != nil {
		return nil, fmt.Errorf("FindAll: collect rows: %w", err)
	}
	if students == nil {
		students = make([]types.Student, 0)
	}

	return students, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// FindByID fetches one student row by primary key. pgx.ErrNoRows is
// translated to storage.ErrNotFound.
// ─────────────────────────────────────────────────────────────────────────────
func (p *Postgres) FindByID(ctx context.Context, id int64) (types.Student, error) {
	row := p.pool.QueryRow(ctx, `SELECT id, name, email, course FROM students WHERE id = $1`, id)

	student, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.Student{}, storage.ErrNotFound
		}
		return types.Student{}, fmt.Errorf("FindByID: scan: %w", err)
	}

	return student, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Save inserts when student.ID is zero and lets BIGSERIAL assign the id;
// otherwise it upserts the row with that id.
// ─────────────────────────────────────────────────────────────────────────────
func (p *Postgres) Save(ctx context.Context, student types.Student) (types.Student, error) {
	var row pgx.Row
	if student.ID == 0 {
		row = p.pool.QueryRow(ctx, `
			INSERT INTO students (name, email, course)
			VALUES ($1, $2, $3)
			RETURNING id, name, email, course`,
			student.Name, student.Email, student.Course,
		)
	} else {
		row = p.pool.QueryRow(ctx, `
			INSERT INTO students (id, name, email, course)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET
				name   = EXCLUDED.name,
				email  = EXCLUDED.email,
				course = EXCLUDED.course
			RETURNING id, name, email, course`,
			student.ID, student.Name, student.Email, student.Course,
		)
	}

	saved, err := scanStudent(row)
	if err != nil {
		return types.Student{}, fmt.Errorf("Save: %w", err)
	}

	return saved, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// DeleteByID removes a student row by primary key. Deleting an id that
// does not exist is not an error.
// ─────────────────────────────────────────────────────────────────────────────
func (p *Postgres) DeleteByID(ctx context.Context, id int64) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM students WHERE id = $1`, id); err != nil {
		return fmt.Errorf("DeleteByID: exec: %w", err)
	}
	return nil
}

// scanStudent reads the id, name, email, course column list.
func scanStudent(row pgx.Row) (types.Student, error) {
	var s types.Student
	err := row.Scan(&s.ID, &s.Name, &s.Email, &s.Course)
	return s, err
}
