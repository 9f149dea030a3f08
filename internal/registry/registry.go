// Package registry tracks every attempt to register a (method, path) pair,
// detects collisions, and applies the resolution policy. A Registry is owned
// by a single analysis run and is not safe for concurrent use; create a fresh
// instance per run.
package registry

import (
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/google/uuid"

	"github.com/routelens/routelens/internal/endpoint"
)

// Resolution labels, recorded after the resolution has been applied.
const (
	ResolutionReplaced  = "replaced_with_new"
	ResolutionMerged    = "descriptions_merged"
	ResolutionKeptFirst = "kept_first"
)

// meaningfulDescriptionLength is the floor a new description must clear
// before it can displace an admitted record.
const meaningfulDescriptionLength = 10

// Attempt is one registration attempt for a dedup key, kept for reporting
// regardless of outcome.
type Attempt struct {
	Record     *endpoint.Record `json:"record"`
	SourceFile string           `json:"source_file"`
}

// Conflict is one resolved collision: the admitted and colliding records'
// identifying fields at the moment of collision, plus the applied resolution.
type Conflict struct {
	ID              string `json:"id"`
	Method          string `json:"method"`
	Path            string `json:"path"`
	KeptHandler     string `json:"kept_handler"`
	NewHandler      string `json:"new_handler"`
	KeptDescription string `json:"kept_description"`
	NewDescription  string `json:"new_description"`
	KeptFile        string `json:"kept_file"`
	NewFile         string `json:"new_file"`
	Resolution      string `json:"resolution"`
}

// Stats holds the counters the engine exposes for reporting.
type Stats struct {
	FilesProcessed     int `json:"files_processed"`
	EndpointsAdmitted  int `json:"endpoints_admitted"`
	DuplicatesDetected int `json:"duplicates_detected"`
	DuplicatesSkipped  int `json:"duplicates_skipped"`
}

// Registry is the admitted inventory plus the attempt and conflict logs.
type Registry struct {
	seen      *bloom.BloomFilter
	index     map[string]int // dedup key -> slot in records
	records   []*endpoint.Record
	attempts  map[string][]Attempt
	attemptsN int
	conflicts []Conflict
	stats     Stats
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		seen:     bloom.NewWithEstimates(10000, 0.001),
		index:    make(map[string]int),
		attempts: make(map[string][]Attempt),
	}
}

// Admit registers a record under its (method, path) key. First arrival wins
// the inventory slot; later arrivals are resolved against the admitted record
// and never raise. Every attempt is appended to the attempt log.
func (r *Registry) Admit(rec *endpoint.Record) {
	key := rec.Key()

	r.attempts[key] = append(r.attempts[key], Attempt{Record: rec, SourceFile: rec.SourceFile})
	r.attemptsN++

	// Bloom filter gives a cheap definite-no; the index map settles false
	// positives, mirroring the exact check behind the filter.
	slot, dup := -1, false
	if r.seen.TestString(key) {
		if s, ok := r.index[key]; ok {
			slot, dup = s, true
		}
	}

	if !dup {
		r.seen.AddString(key)
		r.index[key] = len(r.records)
		r.records = append(r.records, rec)
		r.stats.EndpointsAdmitted++
		return
	}

	r.stats.DuplicatesDetected++
	r.resolve(key, slot, rec)
	r.stats.DuplicatesSkipped++
}

// resolve applies the collision policy against the admitted record. Same
// handler always keeps the first record; otherwise a meaningfully longer new
// description replaces, two distinct non-empty descriptions merge, and
// everything else keeps the first record.
func (r *Registry) resolve(key string, slot int, rec *endpoint.Record) {
	existing := r.records[slot]

	conflict := Conflict{
		ID:              uuid.NewString(),
		Method:          rec.Method,
		Path:            rec.Path,
		KeptHandler:     existing.Handler,
		NewHandler:      rec.Handler,
		KeptDescription: existing.Description,
		NewDescription:  rec.Description,
		KeptFile:        existing.SourceFile,
		NewFile:         rec.SourceFile,
	}

	switch {
	case existing.Handler == rec.Handler:
		conflict.Resolution = ResolutionKeptFirst

	case rec.Description != "" &&
		len(rec.Description) > len(existing.Description) &&
		len(rec.Description) > meaningfulDescriptionLength:
		r.records[slot] = rec
		conflict.Resolution = ResolutionReplaced

	case existing.Description != "" && rec.Description != "":
		if !strings.Contains(existing.Description, rec.Description) {
			existing.Description = existing.Description + " | " + rec.Description
		}
		conflict.Resolution = ResolutionMerged

	default:
		conflict.Resolution = ResolutionKeptFirst
	}

	r.conflicts = append(r.conflicts, conflict)
}

// MarkFileProcessed increments the processed-file counter.
func (r *Registry) MarkFileProcessed() {
	r.stats.FilesProcessed++
}

// Records returns the admitted inventory in admission order. The slice is a
// copy; the records are shared and must be treated as read-only by renderers.
func (r *Registry) Records() []*endpoint.Record {
	out := make([]*endpoint.Record, len(r.records))
	copy(out, r.records)
	return out
}

// Conflicts returns all resolved collisions in occurrence order.
func (r *Registry) Conflicts() []Conflict {
	out := make([]Conflict, len(r.conflicts))
	copy(out, r.conflicts)
	return out
}

// Attempts returns the attempt log for one dedup key.
func (r *Registry) Attempts(key string) []Attempt {
	return r.attempts[key]
}

// AttemptCount returns the total number of Admit calls across all keys.
func (r *Registry) AttemptCount() int {
	return r.attemptsN
}

// Stats returns a snapshot of the run counters.
func (r *Registry) Stats() Stats {
	return r.stats
}
