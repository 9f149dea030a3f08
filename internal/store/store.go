// Package store persists scan snapshots so runs can be compared over time.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/routelens/routelens/internal/endpoint"
	"github.com/routelens/routelens/internal/registry"
)

var (
	bucketSnapshots = []byte("snapshots")
	keyLatest       = []byte("latest")
)

// Snapshot is one persisted scan run.
type Snapshot struct {
	RunID     string             `json:"run_id"`
	Root      string             `json:"root"`
	Timestamp time.Time          `json:"timestamp"`
	Endpoints []*endpoint.Record `json:"endpoints"`
	Stats     registry.Stats     `json:"stats"`
}

// Store persists and retrieves scan snapshots.
type Store interface {
	// Save persists a snapshot and marks it as the latest run.
	Save(snap *Snapshot) error

	// Latest returns the most recent snapshot, or nil if none exists.
	Latest() (*Snapshot, error)

	// Get returns the snapshot for a run ID, or nil if not found.
	Get(runID string) (*Snapshot, error)

	// Close releases the store's resources.
	Close() error
}

// BoltStore implements Store using BoltDB.
type BoltStore struct {
	db   *bolt.DB
	path string
}

// NewBoltStore opens (or creates) a BoltDB-backed snapshot store.
func NewBoltStore(path string) (*BoltStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{
		Timeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSnapshots)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &BoltStore{db: db, path: path}, nil
}

// Save persists the snapshot under its run ID and points "latest" at it.
func (s *BoltStore) Save(snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSnapshots)
		if b == nil {
			return fmt.Errorf("bucket not found")
		}
		if err := b.Put([]byte(snap.RunID), data); err != nil {
			return err
		}
		return b.Put(keyLatest, []byte(snap.RunID))
	})
}

// Latest returns the most recently saved snapshot.
func (s *BoltStore) Latest() (*Snapshot, error) {
	var snap *Snapshot

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSnapshots)
		if b == nil {
			return fmt.Errorf("bucket not found")
		}

		runID := b.Get(keyLatest)
		if runID == nil {
			return nil
		}
		data := b.Get(runID)
		if data == nil {
			return nil
		}

		snap = &Snapshot{}
		return json.Unmarshal(data, snap)
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Get returns the snapshot for a run ID.
func (s *BoltStore) Get(runID string) (*Snapshot, error) {
	var snap *Snapshot

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSnapshots)
		if b == nil {
			return fmt.Errorf("bucket not found")
		}

		data := b.Get([]byte(runID))
		if data == nil {
			return nil
		}

		snap = &Snapshot{}
		return json.Unmarshal(data, snap)
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Close closes the database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// MemoryStore implements Store in memory, for tests and one-shot runs.
type MemoryStore struct {
	snapshots map[string]*Snapshot
	latest    string
}

// NewMemoryStore creates an in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string]*Snapshot)}
}

// Save stores the snapshot in memory.
func (s *MemoryStore) Save(snap *Snapshot) error {
	s.snapshots[snap.RunID] = snap
	s.latest = snap.RunID
	return nil
}

// Latest returns the most recently saved snapshot.
func (s *MemoryStore) Latest() (*Snapshot, error) {
	if s.latest == "" {
		return nil, nil
	}
	return s.snapshots[s.latest], nil
}

// Get returns the snapshot for a run ID.
func (s *MemoryStore) Get(runID string) (*Snapshot, error) {
	return s.snapshots[runID], nil
}

// Close is a no-op for MemoryStore.
func (s *MemoryStore) Close() error {
	return nil
}

// Diff describes how one snapshot's endpoint inventory changed relative to a
// previous one, keyed by "(METHOD path)".
type Diff struct {
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
}

// Compare diffs two snapshots' endpoint inventories. Either may be nil.
func Compare(previous, current *Snapshot) Diff {
	prevKeys := keySet(previous)
	currKeys := keySet(current)

	var d Diff
	for key := range currKeys {
		if !prevKeys[key] {
			d.Added = append(d.Added, key)
		}
	}
	for key := range prevKeys {
		if !currKeys[key] {
			d.Removed = append(d.Removed, key)
		}
	}
	sort.Strings(d.Added)
	sort.Strings(d.Removed)
	return d
}

func keySet(snap *Snapshot) map[string]bool {
	keys := make(map[string]bool)
	if snap == nil {
		return keys
	}
	for _, rec := range snap.Endpoints {
		keys[rec.Key()] = true
	}
	return keys
}
