package store

import (
	"context"
	"time"

	"github.com/msto63/kurswerk/internal/prereq"
	kwerror "github.com/msto63/kurswerk/pkg/core/error"
)

// Output formats accepted by Open
const (
	FormatJSON   = "json"
	FormatSQLite = "sqlite"
)

// Record is one course together with its parsed prerequisite tree
type Record struct {
	Code          string      `json:"code"`
	Title         string      `json:"title,omitempty"`
	Credits       int         `json:"credits,omitempty"`
	Requirements  string      `json:"requirements"`
	Prerequisites prereq.Expr `json:"prerequisites"`
}

// Tree returns the prerequisite tree, None when unset
func (r Record) Tree() prereq.Expr {
	if r.Prerequisites == nil {
		return prereq.None{}
	}
	return r.Prerequisites
}

// Run is the output of one pipeline run
type Run struct {
	ID        string
	Source    string
	StartedAt time.Time
	Records   []Record
}

// RunInfo summarizes a stored run
type RunInfo struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	Source      string    `json:"source"`
	CourseCount int       `json:"course_count"`
}

// Store persists pipeline runs
type Store interface {
	Save(ctx context.Context, run *Run) error
	Close() error
}

// Loader reads stored records back
type Loader interface {
	Load(ctx context.Context, code string) (*Record, error)
}

// Open returns the store for the given output format
func Open(format, path string) (Store, error) {
	switch format {
	case FormatJSON:
		return NewJSONStore(path), nil
	case FormatSQLite:
		return NewSQLiteStore(SQLiteConfig{Path: path})
	default:
		return nil, kwerror.Newf("unknown output format %q", format).
			WithCode(kwerror.CodeInvalidInput).WithOperation("store.open")
	}
}

func notFound(code string) error {
	return kwerror.Newf("course %s not found", code).
		WithCode(kwerror.CodeNotFound).WithDetail("course", code)
}
