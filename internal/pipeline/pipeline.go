// Package pipeline runs a catalog through scraping, prerequisite parsing
// and persistence.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/msto63/kurswerk/internal/catalog"
	"github.com/msto63/kurswerk/internal/prereq"
	"github.com/msto63/kurswerk/internal/store"
	"github.com/msto63/kurswerk/pkg/core/cache"
	kwerror "github.com/msto63/kurswerk/pkg/core/error"
	"github.com/msto63/kurswerk/pkg/core/logging"
)

// Fetcher loads the courses of a catalog page
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]catalog.Course, error)
}

// Config holds pipeline settings
type Config struct {
	Workers int
	Scope   catalog.Scope
	// Distinct requirement sentences kept parsed across runs
	CacheSize int
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{Workers: 4, CacheSize: cache.DefaultConfig().MaxItems}
}

// parseResult is a memoized parse of one requirements sentence
type parseResult struct {
	tree   prereq.Expr
	report prereq.Report
}

// Pipeline wires a fetcher to a store
type Pipeline struct {
	fetcher Fetcher
	store   store.Store
	logger  *logging.Logger
	workers int
	scope   catalog.Scope
	memo    *cache.Cache[parseResult]
}

// Result summarizes one run
type Result struct {
	RunID    string
	Source   string
	Courses  int // courses parsed and saved
	Skipped  int // courses outside the scope
	Dropped  int // clauses discarded by the parser
	Duration time.Duration
	Records  []store.Record
}

// New creates a pipeline
func New(fetcher Fetcher, st store.Store, cfg Config) *Pipeline {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Pipeline{
		fetcher: fetcher,
		store:   st,
		logger:  logging.New("pipeline"),
		workers: cfg.Workers,
		scope:   cfg.Scope,
		memo:    cache.New[parseResult](cache.Config{MaxItems: cfg.CacheSize}),
	}
}

// WithLogger replaces the logger
func (p *Pipeline) WithLogger(logger *logging.Logger) *Pipeline {
	p.logger = logger
	return p
}

// Run fetches the catalog at url, parses the requirements of every course
// in scope and saves the records in catalog order
func (p *Pipeline) Run(ctx context.Context, url string) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := p.logger.WithCorrelationID(runID)

	log.Info("Run started", "url", url, "workers", p.workers)

	courses, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		err := kwerror.Wrap(err, "catalog fetch failed").WithOperation("pipeline.run").WithDetail("url", url)
		log.LogError(err)
		return nil, err
	}

	selected := make([]catalog.Course, 0, len(courses))
	for _, c := range courses {
		if !p.scope.InScope(c.Code) {
			log.Debug("Course out of scope", "course", c.Code)
			continue
		}
		selected = append(selected, c)
	}
	skipped := len(courses) - len(selected)

	records, dropped, err := p.parseAll(ctx, log, selected)
	if err != nil {
		log.LogError(err)
		return nil, err
	}

	run := &store.Run{ID: runID, Source: url, StartedAt: start, Records: records}
	if err := p.store.Save(ctx, run); err != nil {
		err := kwerror.Wrap(err, "saving run failed").WithOperation("pipeline.run").WithDetail("courses", len(records))
		log.LogError(err)
		return nil, err
	}

	result := &Result{
		RunID:    runID,
		Source:   url,
		Courses:  len(records),
		Skipped:  skipped,
		Dropped:  dropped,
		Duration: time.Since(start),
		Records:  records,
	}

	hits, _, hitRate := p.memo.Stats()
	log.Info("Run finished",
		"courses", result.Courses,
		"skipped", result.Skipped,
		"dropped_clauses", result.Dropped,
		"cache_hits", hits,
		"cache_hit_rate", hitRate,
		"duration_ms", result.Duration.Milliseconds())

	return result, nil
}

// parseAll parses requirements on a bounded worker pool. Records keep the
// order of courses.
func (p *Pipeline) parseAll(ctx context.Context, log *logging.Logger, courses []catalog.Course) ([]store.Record, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, canceled(err)
	}

	records := make([]store.Record, len(courses))
	dropped := make([]int, len(courses))

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < min(p.workers, max(len(courses), 1)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				records[i], dropped[i] = p.parseCourse(log, courses[i])
			}
		}()
	}

	var ctxErr error
dispatch:
	for i := range courses {
		select {
		case jobs <- i:
		case <-ctx.Done():
			ctxErr = ctx.Err()
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	if ctxErr != nil {
		return nil, 0, canceled(ctxErr)
	}

	total := 0
	for _, n := range dropped {
		total += n
	}
	return records, total, nil
}

func (p *Pipeline) parseCourse(log *logging.Logger, c catalog.Course) (store.Record, int) {
	result := p.memo.GetOrSet(c.Requirements, func() parseResult {
		tree, report := prereq.ParseWithReport(c.Requirements)
		return parseResult{tree: tree, report: report}
	})
	tree, report := result.tree, result.report

	for _, d := range report.Dropped {
		if d.Reason == prereq.ReasonEmpty {
			log.Debug("Empty clause skipped", "course", c.Code)
			continue
		}
		log.Warn("Clause dropped", "course", c.Code, "clause", d.Clause, "classifier", d.Reason)
	}

	return store.Record{
		Code:          c.Code,
		Title:         c.Title,
		Credits:       c.Credits,
		Requirements:  c.Requirements,
		Prerequisites: tree,
	}, len(report.Dropped)
}

// canceled marks a run stopped by the caller, logged at info level
func canceled(err error) error {
	return kwerror.Wrap(err, "run canceled").
		WithCode(kwerror.CodeCanceled).
		WithSeverity(kwerror.SeverityLow).
		WithOperation("pipeline.run")
}
