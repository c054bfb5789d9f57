// Package audit keeps an optional Postgres trail of repository
// operations. It records who did what, never what exists: the storage
// root stays the single source of truth for projects and files.
package audit

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Event is one recorded operation. Project and Filename are empty when
// the operation has no such argument.
type Event struct {
	Action   string // "upload", "download", "list_projects", "list_files"
	Access   string // access level of the caller
	Project  string
	Filename string
	ClientIP string
}

// Recorder writes events to Postgres.
type Recorder struct {
	db *sql.DB
}

// Open connects to Postgres, applies pending migrations and returns a
// ready Recorder.
func Open(databaseURL string) (*Recorder, error) {
	if databaseURL == "" {
		return nil, errors.New("audit: database url is empty")
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("audit migrations: %w", err)
	}

	return &Recorder{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "pgx", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Record inserts one event row.
func (r *Recorder) Record(ctx context.Context, ev Event) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_events (occurred_at, action, access, project, filename, client_ip)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		time.Now().UTC(), ev.Action, ev.Access, ev.Project, ev.Filename, ev.ClientIP,
	)
	return err
}

func (r *Recorder) Close() error {
	return r.db.Close()
}
