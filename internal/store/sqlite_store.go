package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/msto63/kurswerk/internal/prereq"
	kwerror "github.com/msto63/kurswerk/pkg/core/error"
)

// SQLiteStore keeps every run in a SQLite database
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// SQLiteConfig holds configuration for the SQLite store
type SQLiteConfig struct {
	Path string
}

// DefaultSQLiteConfig returns default configuration
func DefaultSQLiteConfig() SQLiteConfig {
	return SQLiteConfig{
		Path: "./data/courses.db",
	}
}

// NewSQLiteStore opens or creates the database at cfg.Path
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, kwerror.Wrap(err, "failed to create directory").
			WithCode(kwerror.CodeStorageError).WithDetail("path", dir)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on")
	if err != nil {
		return nil, dbError(err, "failed to open database")
	}

	store := &SQLiteStore{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, dbError(err, "failed to initialize schema")
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		source TEXT NOT NULL,
		course_count INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS courses (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		code TEXT NOT NULL,
		title TEXT NOT NULL,
		credits INTEGER NOT NULL,
		requirements TEXT NOT NULL,
		prerequisites TEXT NOT NULL,
		PRIMARY KEY (run_id, position)
	);

	-- course codes referenced by each prerequisite tree
	CREATE TABLE IF NOT EXISTS course_refs (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		code TEXT NOT NULL,
		ref TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
	CREATE INDEX IF NOT EXISTS idx_courses_code ON courses(code);
	CREATE INDEX IF NOT EXISTS idx_course_refs_ref ON course_refs(run_id, ref);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Save stores the run in one transaction. An empty run ID is replaced by
// a new UUID, a zero StartedAt by the current time.
func (s *SQLiteStore) Save(ctx context.Context, run *Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return dbError(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, source, course_count) VALUES (?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC(), run.Source, len(run.Records))
	if err != nil {
		return dbError(err, "failed to insert run").WithDetail("run_id", run.ID)
	}

	courseStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO courses (run_id, position, code, title, credits, requirements, prerequisites)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return dbError(err, "failed to prepare statement")
	}
	defer courseStmt.Close()

	refStmt, err := tx.PrepareContext(ctx, `INSERT INTO course_refs (run_id, code, ref) VALUES (?, ?, ?)`)
	if err != nil {
		return dbError(err, "failed to prepare statement")
	}
	defer refStmt.Close()

	for i, rec := range run.Records {
		tree := rec.Tree()
		data, err := json.Marshal(tree)
		if err != nil {
			return kwerror.Wrap(err, "failed to encode prerequisites").
				WithCode(kwerror.CodeInternal).WithDetail("course", rec.Code)
		}

		if _, err := courseStmt.ExecContext(ctx,
			run.ID, i, rec.Code, rec.Title, rec.Credits, rec.Requirements, string(data)); err != nil {
			return dbError(err, "failed to insert course").WithDetail("course", rec.Code)
		}

		for _, ref := range prereq.Courses(tree) {
			if _, err := refStmt.ExecContext(ctx, run.ID, rec.Code, ref); err != nil {
				return dbError(err, "failed to insert reference").WithDetail("course", rec.Code)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return dbError(err, "failed to commit run").WithDetail("run_id", run.ID)
	}
	return nil
}

// Load returns the record for code from the most recent run that has it
func (s *SQLiteStore) Load(ctx context.Context, code string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT c.code, c.title, c.credits, c.requirements, c.prerequisites
		FROM courses c
		JOIN runs r ON r.id = c.run_id
		WHERE c.code = ?
		ORDER BY r.started_at DESC, r.rowid DESC
		LIMIT 1`, code)

	var (
		rec  Record
		tree string
	)
	if err := row.Scan(&rec.Code, &rec.Title, &rec.Credits, &rec.Requirements, &tree); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(code)
		}
		return nil, dbError(err, "failed to load course").WithDetail("course", code)
	}

	expr, err := prereq.Decode([]byte(tree))
	if err != nil {
		return nil, kwerror.Wrap(err, "failed to decode prerequisites").
			WithCode(kwerror.CodeInvalidFormat).WithDetail("course", code)
	}
	rec.Prerequisites = expr
	return &rec, nil
}

// Dependents returns the courses of the latest run whose prerequisites
// mention code, sorted by code
func (s *SQLiteStore) Dependents(ctx context.Context, code string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT code FROM course_refs
		WHERE ref = ? AND run_id = (
			SELECT id FROM runs ORDER BY started_at DESC, rowid DESC LIMIT 1
		)
		ORDER BY code`, code)
	if err != nil {
		return nil, dbError(err, "failed to query dependents").WithDetail("course", code)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, dbError(err, "failed to scan dependent")
		}
		codes = append(codes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "failed to query dependents")
	}
	return codes, nil
}

// Runs lists stored runs, newest first
func (s *SQLiteStore) Runs(ctx context.Context) ([]RunInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, source, course_count
		FROM runs
		ORDER BY started_at DESC, rowid DESC`)
	if err != nil {
		return nil, dbError(err, "failed to query runs")
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var info RunInfo
		if err := rows.Scan(&info.ID, &info.StartedAt, &info.Source, &info.CourseCount); err != nil {
			return nil, dbError(err, "failed to scan run")
		}
		runs = append(runs, info)
	}
	if err := rows.Err(); err != nil {
		return nil, dbError(err, "failed to query runs")
	}
	return runs, nil
}

// Prune deletes all runs except the newest keep runs
func (s *SQLiteStore) Prune(ctx context.Context, keep int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, dbError(err, "failed to prune runs")
	}
	return result.RowsAffected()
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func dbError(err error, msg string) *kwerror.Error {
	return kwerror.Wrap(err, msg).WithCode(kwerror.CodeDatabaseError)
}
