// Package analyzer is the public API of routelens: it scans a source tree for
// HTTP route declarations, deduplicates them, and produces a reportable
// endpoint inventory.
package analyzer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/routelens/routelens/internal/endpoint"
	"github.com/routelens/routelens/internal/inspector"
	"github.com/routelens/routelens/internal/logger"
	"github.com/routelens/routelens/internal/recognize"
	"github.com/routelens/routelens/internal/registry"
	"github.com/routelens/routelens/internal/report"
	"github.com/routelens/routelens/internal/source"
	"github.com/routelens/routelens/internal/store"
	"github.com/routelens/routelens/internal/walker"
)

// Analyzer extracts and deduplicates route declarations from a source tree.
type Analyzer struct {
	config      *Config
	logger      *logger.Logger
	recognizers []recognize.Recognizer
}

// New creates an analyzer with the given options applied over defaults.
func New(opts ...Option) (*Analyzer, error) {
	a := &Analyzer{
		config:      DefaultConfig(),
		logger:      logger.NewDefault().WithComponent("analyzer"),
		recognizers: recognize.All(),
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}

	if err := a.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return a, nil
}

// Config returns the analyzer's configuration.
func (a *Analyzer) Config() *Config {
	return a.config
}

// Result is the outcome of one analysis run.
type Result struct {
	RunID     string
	Root      string
	StartedAt time.Time
	Duration  time.Duration
	Endpoints []*endpoint.Record
	Conflicts []registry.Conflict
	Stats     registry.Stats
	Errors    []report.FileError
	Inspected int
}

// Report converts the result into its reportable form.
func (r *Result) Report() *report.Report {
	return &report.Report{
		RunID:       r.RunID,
		GeneratedAt: r.StartedAt,
		Root:        r.Root,
		Endpoints:   r.Endpoints,
		Conflicts:   r.Conflicts,
		Stats:       r.Stats,
		Errors:      r.Errors,
		Inspected:   r.Inspected,
	}
}

// Snapshot converts the result into its persistable form.
func (r *Result) Snapshot() *store.Snapshot {
	return &store.Snapshot{
		RunID:     r.RunID,
		Root:      r.Root,
		Timestamp: r.StartedAt,
		Endpoints: r.Endpoints,
		Stats:     r.Stats,
	}
}

// Analyze runs a complete scan. Each run gets a fresh registry, so results
// never leak between runs. Per-file failures are collected in the result, not
// returned as errors; only an unusable root or a cancelled context fails the
// run.
func (a *Analyzer) Analyze(ctx context.Context) (*Result, error) {
	start := time.Now()
	reg := registry.New()
	var fileErrors []report.FileError

	w := walker.New(walker.Config{
		Root:        a.config.Root,
		Recursive:   a.config.Walk.Recursive,
		MaxFileSize: a.config.Walk.MaxFileSize,
		Extensions:  a.config.Walk.Extensions,
	})

	supplied, err := w.Walk(func(f walker.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		a.processFile(f, reg, &fileErrors)
		return nil
	}, func(path string, err error) {
		fileErrors = append(fileErrors, report.FileError{File: path, Message: err.Error()})
	})
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", a.config.Root, err)
	}

	result := &Result{
		RunID:     uuid.NewString(),
		Root:      a.config.Root,
		StartedAt: start,
		Endpoints: reg.Records(),
		Conflicts: reg.Conflicts(),
		Stats:     reg.Stats(),
		Errors:    fileErrors,
	}

	if a.config.Inspect.Enabled {
		result.Inspected = a.inspect(ctx, result.Endpoints)
	}

	if a.config.State.Enabled {
		if err := a.persist(result); err != nil {
			a.logger.WithError(err).Warn("Snapshot persistence failed")
		}
	}

	result.Duration = time.Since(start)

	a.logger.StatsEvent(map[string]interface{}{
		"run_id":              result.RunID,
		"files_supplied":      supplied,
		"files_processed":     result.Stats.FilesProcessed,
		"endpoints":           result.Stats.EndpointsAdmitted,
		"duplicates_detected": result.Stats.DuplicatesDetected,
		"errors":              len(fileErrors),
		"duration":            result.Duration.String(),
	})

	return result, nil
}

// processFile runs every recognizer over one file. A panic while processing
// is converted into a per-file error so one bad file cannot kill the run.
func (a *Analyzer) processFile(f walker.File, reg *registry.Registry, fileErrors *[]report.FileError) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic while processing: %v", r)
			a.logger.FileErrorEvent(err, f.Path)
			*fileErrors = append(*fileErrors, report.FileError{File: f.Path, Message: err.Error()})
		}
	}()

	// Recognizers run over comment-blanked text so commented-out routes never
	// match; description resolution reads the original at the same offsets.
	working := source.BlankComments(f.Content)

	matches := 0
	for _, recognizer := range a.recognizers {
		for _, m := range recognizer(working) {
			record := endpoint.Build(m.Method, m.PathToken, m.HandlerToken, m.Offset, f.Content, f.Path)
			if record == nil {
				continue
			}
			matches++
			a.logger.RouteEvent(record.Method, record.Path, record.Handler, f.Path)
			reg.Admit(record)
		}
	}

	reg.MarkFileProcessed()
	a.logger.ScanEvent(logger.DebugLevel, f.Path, matches).Msg("File scanned")
}

// inspect attaches to the configured server and probes the inventory. A
// server that cannot be reached downgrades to a source-only run.
func (a *Analyzer) inspect(ctx context.Context, records []*endpoint.Record) int {
	in := inspector.New(inspector.Config{
		Port:              a.config.Inspect.Port,
		RequestsPerSecond: a.config.Inspect.RequestsPerSecond,
		Burst:             a.config.Inspect.Burst,
	}, a.logger)

	if err := in.Connect(ctx); err != nil {
		a.logger.WithError(err).Warn("Server inspection skipped")
		return 0
	}
	return in.Inspect(ctx, records)
}

func (a *Analyzer) persist(result *Result) error {
	s, err := store.NewBoltStore(a.config.State.FilePath)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.Save(result.Snapshot())
}
