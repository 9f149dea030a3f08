// Package report renders an analysis run into its output formats.
package report

import (
	"io"
	"time"

	"github.com/routelens/routelens/internal/endpoint"
	"github.com/routelens/routelens/internal/registry"
)

// FileError is a per-file failure recorded during a run.
type FileError struct {
	File    string `json:"file"`
	Message string `json:"message"`
}

// Report is the complete result of one analysis run.
type Report struct {
	RunID       string             `json:"run_id"`
	GeneratedAt time.Time          `json:"generated_at"`
	Root        string             `json:"root"`
	Endpoints   []*endpoint.Record `json:"endpoints"`
	Conflicts   []registry.Conflict `json:"conflicts,omitempty"`
	Stats       registry.Stats     `json:"stats"`
	Errors      []FileError        `json:"errors,omitempty"`
	Inspected   int                `json:"inspected,omitempty"`
}

// Writer renders a report to its destination.
type Writer interface {
	WriteReport(r *Report) error
}

// Config holds output configuration.
type Config struct {
	Format string // "markdown" or "json"
	Pretty bool
}

// NewWriter creates a writer for the configured format. Markdown is the
// default.
func NewWriter(w io.Writer, cfg Config) Writer {
	switch cfg.Format {
	case "json":
		return NewJSONWriter(w, cfg.Pretty)
	default:
		return NewMarkdownWriter(w)
	}
}
