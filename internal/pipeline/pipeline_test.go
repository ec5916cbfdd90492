package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/msto63/kurswerk/internal/catalog"
	"github.com/msto63/kurswerk/internal/prereq"
	"github.com/msto63/kurswerk/internal/store"
	kwerror "github.com/msto63/kurswerk/pkg/core/error"
	"github.com/msto63/kurswerk/pkg/core/logging"
)

// ============================================================================
// Test doubles
// ============================================================================

type fakeFetcher struct {
	courses []catalog.Course
	err     error
	url     string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]catalog.Course, error) {
	f.url = url
	return f.courses, f.err
}

type memoryStore struct {
	mu   sync.Mutex
	runs []*store.Run
	err  error
}

func (m *memoryStore) Save(ctx context.Context, run *store.Run) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

func (m *memoryStore) Close() error { return nil }

func newTestPipeline(fetcher Fetcher, st store.Store, cfg Config) *Pipeline {
	return New(fetcher, st, cfg).WithLogger(logging.Discard())
}

func sampleCourses() []catalog.Course {
	return []catalog.Course{
		{Code: "CSE 12", Title: "Computer Systems", Credits: 7, Requirements: "CSE 5J or CSE 20"},
		{Code: "CSE 20", Title: "Beginning Programming", Credits: 5, Requirements: prereq.NoneMarker},
		{Code: "CSE 101", Title: "Data Structures", Credits: 5, Requirements: "CSE 12 and CSE 13S; concurrent enrollment required"},
		{Code: "CSE 290", Title: "Seminar", Credits: 2, Requirements: "CSE 101"},
	}
}

// ============================================================================
// Tests
// ============================================================================

func TestNew_Defaults(t *testing.T) {
	p := New(&fakeFetcher{}, &memoryStore{}, Config{})
	if p.workers != 1 {
		t.Errorf("workers = %d, want 1", p.workers)
	}
	if p.logger == nil {
		t.Error("logger should not be nil")
	}
	if DefaultConfig().Workers != 4 {
		t.Errorf("DefaultConfig().Workers = %d, want 4", DefaultConfig().Workers)
	}
}

func TestRun(t *testing.T) {
	fetcher := &fakeFetcher{courses: sampleCourses()}
	st := &memoryStore{}
	p := newTestPipeline(fetcher, st, Config{Workers: 2})

	result, err := p.Run(context.Background(), "http://catalog")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if fetcher.url != "http://catalog" {
		t.Errorf("fetched %q", fetcher.url)
	}
	if result.Courses != 4 || result.Skipped != 0 {
		t.Errorf("Courses = %d, Skipped = %d", result.Courses, result.Skipped)
	}
	if result.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", result.Dropped)
	}
	if result.RunID == "" || result.Source != "http://catalog" {
		t.Errorf("Result = %+v", result)
	}

	if len(st.runs) != 1 {
		t.Fatalf("store got %d runs, want 1", len(st.runs))
	}
	saved := st.runs[0]
	if saved.ID != result.RunID || saved.Source != "http://catalog" || saved.StartedAt.IsZero() {
		t.Errorf("saved run = %+v", saved)
	}

	expected := map[string]string{
		"CSE 12":  "CSE 5J OR CSE 20",
		"CSE 20":  "None",
		"CSE 101": "CSE 12 AND CSE 13S",
		"CSE 290": "CSE 101",
	}
	for _, rec := range saved.Records {
		if got := rec.Prerequisites.String(); got != expected[rec.Code] {
			t.Errorf("%s prerequisites = %q, want %q", rec.Code, got, expected[rec.Code])
		}
	}
	if saved.Records[0].Title != "Computer Systems" || saved.Records[0].Credits != 7 {
		t.Errorf("record fields not carried over: %+v", saved.Records[0])
	}
}

func TestRun_Scope(t *testing.T) {
	st := &memoryStore{}
	p := newTestPipeline(&fakeFetcher{courses: sampleCourses()}, st, Config{
		Workers: 3,
		Scope:   catalog.Scope{Min: 1, Max: 199},
	})

	result, err := p.Run(context.Background(), "http://catalog")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Courses != 3 || result.Skipped != 1 {
		t.Errorf("Courses = %d, Skipped = %d, want 3 and 1", result.Courses, result.Skipped)
	}
	for _, rec := range st.runs[0].Records {
		if rec.Code == "CSE 290" {
			t.Error("CSE 290 should be out of scope")
		}
	}
}

func TestRun_PreservesOrder(t *testing.T) {
	var courses []catalog.Course
	for i := 1; i <= 200; i++ {
		courses = append(courses, catalog.Course{
			Code:         fmt.Sprintf("CSE %d", i),
			Requirements: fmt.Sprintf("CSE %d or CSE %d", i+1000, i+2000),
		})
	}

	for _, workers := range []int{1, 4, 16, 500} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			st := &memoryStore{}
			p := newTestPipeline(&fakeFetcher{courses: courses}, st, Config{Workers: workers})

			if _, err := p.Run(context.Background(), "http://catalog"); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			records := st.runs[0].Records
			if len(records) != len(courses) {
				t.Fatalf("got %d records, want %d", len(records), len(courses))
			}
			for i, rec := range records {
				if rec.Code != courses[i].Code {
					t.Fatalf("record %d = %s, want %s", i, rec.Code, courses[i].Code)
				}
				want := fmt.Sprintf("CSE %d OR CSE %d", i+1001, i+2001)
				if rec.Prerequisites.String() != want {
					t.Fatalf("record %d tree = %v, want %s", i, rec.Prerequisites, want)
				}
			}
		})
	}
}

func TestRun_EmptyCatalog(t *testing.T) {
	st := &memoryStore{}
	p := newTestPipeline(&fakeFetcher{}, st, Config{Workers: 4})

	result, err := p.Run(context.Background(), "http://catalog")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Courses != 0 || len(st.runs) != 1 {
		t.Errorf("Courses = %d, runs = %d", result.Courses, len(st.runs))
	}
}

func TestRun_FetchError(t *testing.T) {
	fetchErr := kwerror.New("status 503").WithCode(kwerror.CodeExternalServiceError)
	st := &memoryStore{}
	p := newTestPipeline(&fakeFetcher{err: fetchErr}, st, Config{Workers: 2})

	_, err := p.Run(context.Background(), "http://catalog")
	if !kwerror.HasCode(err, kwerror.CodeExternalServiceError) {
		t.Errorf("Run() error = %v, want EXTERNAL_SERVICE_ERROR", err)
	}
	if len(st.runs) != 0 {
		t.Error("nothing should be saved after a failed fetch")
	}
}

func TestRun_StoreError(t *testing.T) {
	st := &memoryStore{err: kwerror.New("disk full").WithCode(kwerror.CodeStorageError)}
	p := newTestPipeline(&fakeFetcher{courses: sampleCourses()}, st, Config{Workers: 2})

	_, err := p.Run(context.Background(), "http://catalog")
	if !kwerror.HasCode(err, kwerror.CodeStorageError) {
		t.Errorf("Run() error = %v, want STORAGE_ERROR", err)
	}
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	st := &memoryStore{}
	p := newTestPipeline(&fakeFetcher{courses: sampleCourses()}, st, Config{Workers: 2})

	_, err := p.Run(ctx, "http://catalog")
	if !kwerror.HasCode(err, kwerror.CodeCanceled) {
		t.Errorf("Run() error = %v, want CANCELED", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Error("error should wrap context.Canceled")
	}
	if kwerror.GetSeverity(err) != kwerror.SeverityLow {
		t.Errorf("severity = %v, want low", kwerror.GetSeverity(err))
	}
	if len(st.runs) != 0 {
		t.Error("nothing should be saved after cancellation")
	}
}

func TestRun_LogsFailures(t *testing.T) {
	tests := []struct {
		name    string
		fetcher *fakeFetcher
		store   *memoryStore
		ctx     func() context.Context
		want    []string
		notWant []string
	}{
		{
			name:    "fetch error",
			fetcher: &fakeFetcher{err: kwerror.New("status 503").WithCode(kwerror.CodeExternalServiceError)},
			store:   &memoryStore{},
			ctx:     context.Background,
			want:    []string{"[WRN]", "error_category=catalog", "operation=pipeline.run", "url=http://catalog"},
		},
		{
			name:    "store error",
			fetcher: &fakeFetcher{courses: sampleCourses()},
			store:   &memoryStore{err: kwerror.New("disk full").WithCode(kwerror.CodeStorageError).WithDetail("path", "out.json")},
			ctx:     context.Background,
			want:    []string{"[ERR]", "error_category=storage", "courses=4", "path=out.json"},
		},
		{
			name:    "canceled",
			fetcher: &fakeFetcher{courses: sampleCourses()},
			store:   &memoryStore{},
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			want:    []string{"run canceled", "error_code=CANCELED", "operation=pipeline.run"},
			notWant: []string{"[WRN]", "[ERR]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf strings.Builder
			logger := logging.NewLogger(logging.LoggerConfig{Name: "test", Level: "info", Format: "text", Output: &buf})
			p := New(tt.fetcher, tt.store, Config{Workers: 1}).WithLogger(logger)

			if _, err := p.Run(tt.ctx(), "http://catalog"); err == nil {
				t.Fatal("Run() should fail")
			}
			out := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("log output missing %q:\n%s", want, out)
				}
			}
			for _, unwanted := range tt.notWant {
				if strings.Contains(out, unwanted) {
					t.Errorf("log output contains %q:\n%s", unwanted, out)
				}
			}
		})
	}
}

func TestRun_LogsDroppedClauses(t *testing.T) {
	var buf strings.Builder
	logger := logging.NewLogger(logging.LoggerConfig{Name: "test", Level: "debug", Format: "text", Output: &buf})

	p := New(&fakeFetcher{courses: sampleCourses()}, &memoryStore{}, Config{Workers: 1}).WithLogger(logger)
	if _, err := p.Run(context.Background(), "http://catalog"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Clause dropped", "course=CSE 101", "classifier=concurrent", "Run finished"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestRun_MemoizesSentences(t *testing.T) {
	sentence := "CSE 12; concurrent enrollment required"
	courses := []catalog.Course{
		{Code: "CSE 13S", Requirements: sentence},
		{Code: "CSE 13E", Requirements: sentence},
	}

	st := &memoryStore{}
	p := newTestPipeline(&fakeFetcher{courses: courses}, st, Config{Workers: 1})

	result, err := p.Run(context.Background(), "http://catalog")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Dropped != 2 {
		t.Errorf("Dropped = %d, want 2 (one per course)", result.Dropped)
	}
	if hits, _, _ := p.memo.Stats(); hits != 1 {
		t.Errorf("cache hits = %d, want 1", hits)
	}
	for _, rec := range st.runs[0].Records {
		if rec.Prerequisites.String() != "CSE 12" {
			t.Errorf("%s tree = %v", rec.Code, rec.Prerequisites)
		}
	}
}
