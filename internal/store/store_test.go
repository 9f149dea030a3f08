package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routelens/routelens/internal/endpoint"
)

func snap(runID string, keys ...string) *Snapshot {
	s := &Snapshot{RunID: runID, Root: "/src", Timestamp: time.Now()}
	for _, k := range keys {
		// keys are "METHOD path"
		s.Endpoints = append(s.Endpoints, &endpoint.Record{
			Method: k[:3],
			Path:   k[4:],
		})
	}
	return s
}

func TestBoltStore_SaveAndLatest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "routelens.db")
	s, err := NewBoltStore(path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save(snap("run-1", "GET /users")))
	require.NoError(t, s.Save(snap("run-2", "GET /users", "GET /orders")))

	latest, err := s.Latest()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "run-2", latest.RunID)
	assert.Len(t, latest.Endpoints, 2)
}

func TestBoltStore_GetByRunID(t *testing.T) {
	s, err := NewBoltStore(filepath.Join(t.TempDir(), "routelens.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save(snap("run-1", "GET /users")))

	got, err := s.Get("run-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "run-1", got.RunID)

	missing, err := s.Get("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestBoltStore_EmptyLatest(t *testing.T) {
	s, err := NewBoltStore(filepath.Join(t.TempDir(), "routelens.db"))
	require.NoError(t, err)
	defer s.Close()

	latest, err := s.Latest()
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestBoltStore_ReopenPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routelens.db")

	s, err := NewBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Save(snap("run-1", "GET /users")))
	require.NoError(t, s.Close())

	s2, err := NewBoltStore(path)
	require.NoError(t, err)
	defer s2.Close()

	latest, err := s2.Latest()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "run-1", latest.RunID)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()

	latest, err := s.Latest()
	require.NoError(t, err)
	assert.Nil(t, latest)

	require.NoError(t, s.Save(snap("run-1", "GET /users")))
	latest, err = s.Latest()
	require.NoError(t, err)
	assert.Equal(t, "run-1", latest.RunID)

	got, err := s.Get("run-1")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestCompare(t *testing.T) {
	prev := snap("run-1", "GET /users", "GET /orders")
	curr := snap("run-2", "GET /users", "PUT /users")

	d := Compare(prev, curr)
	assert.Equal(t, []string{"PUT /users"}, d.Added)
	assert.Equal(t, []string{"GET /orders"}, d.Removed)
}

func TestCompare_NilPrevious(t *testing.T) {
	curr := snap("run-1", "GET /users")

	d := Compare(nil, curr)
	assert.Equal(t, []string{"GET /users"}, d.Added)
	assert.Empty(t, d.Removed)
}

func TestCompare_NoChanges(t *testing.T) {
	prev := snap("run-1", "GET /users")
	curr := snap("run-2", "GET /users")

	d := Compare(prev, curr)
	assert.Empty(t, d.Added)
	assert.Empty(t, d.Removed)
}
