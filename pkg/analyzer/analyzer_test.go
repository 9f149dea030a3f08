package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routelens/routelens/internal/endpoint"
	"github.com/routelens/routelens/internal/logger"
	"github.com/routelens/routelens/internal/registry"
	"github.com/routelens/routelens/internal/store"
)

func writeSource(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newAnalyzer(t *testing.T, opts ...Option) *Analyzer {
	t.Helper()
	opts = append(opts, WithLogger(logger.NewJSON(logger.ErrorLevel)))
	a, err := New(opts...)
	require.NoError(t, err)
	return a
}

func findRecord(records []*endpoint.Record, method, path string) *endpoint.Record {
	for _, r := range records {
		if r.Method == method && r.Path == path {
			return r
		}
	}
	return nil
}

func TestAnalyze_MultipleIdioms(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "routes.go", `package main

func setup() {
	// Health check endpoint
	r.GET("/health", healthHandler)

	r.HandleFunc("/api/users", listUsers).Methods("GET", "POST")

	http.HandleFunc("/ping", pingHandler)

	mux.Handle("GET", "/items/:id", getItem)
}
`)

	a := newAnalyzer(t, WithRoot(root))
	result, err := a.Analyze(context.Background())
	require.NoError(t, err)

	health := findRecord(result.Endpoints, "GET", "/health")
	require.NotNil(t, health)
	assert.Equal(t, "Health check endpoint", health.Description)

	require.NotNil(t, findRecord(result.Endpoints, "GET", "/api/users"))
	require.NotNil(t, findRecord(result.Endpoints, "POST", "/api/users"))
	require.NotNil(t, findRecord(result.Endpoints, "GET", "/ping"))

	item := findRecord(result.Endpoints, "GET", "/items/:id")
	require.NotNil(t, item)
	require.Len(t, item.Parameters, 1)
	assert.Equal(t, "id", item.Parameters[0].Name)

	assert.Equal(t, 1, result.Stats.FilesProcessed)
	assert.NotEmpty(t, result.RunID)
}

func TestAnalyze_CommentedOutRoutesIgnored(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "routes.go", `package main

func setup() {
	// r.GET("/old", oldHandler)
	/*
	r.POST("/disabled", disabledHandler)
	*/
	r.GET("/live", liveHandler)
}
`)

	a := newAnalyzer(t, WithRoot(root))
	result, err := a.Analyze(context.Background())
	require.NoError(t, err)

	assert.Nil(t, findRecord(result.Endpoints, "GET", "/old"))
	assert.Nil(t, findRecord(result.Endpoints, "POST", "/disabled"))
	assert.NotNil(t, findRecord(result.Endpoints, "GET", "/live"))
}

func TestAnalyze_DuplicateAcrossFiles(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "a.go", `package main

func a() {
	r.GET("/users", listUsers)
}
`)
	writeSource(t, root, "b.go", `package main

func b() {
	// Returns the full user directory listing
	r.GET("/users", fetchAllUsers)
}
`)

	a := newAnalyzer(t, WithRoot(root))
	result, err := a.Analyze(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Stats.EndpointsAdmitted)
	assert.Positive(t, result.Stats.DuplicatesDetected)

	// The verb-router and generic-verb recognizers both report r.GET calls,
	// so same-handler kept_first conflicts appear alongside the replacement.
	replaced := 0
	for _, c := range result.Conflicts {
		if c.Resolution == registry.ResolutionReplaced {
			replaced++
			assert.Equal(t, "fetchAllUsers", c.NewHandler)
		}
	}
	assert.Equal(t, 1, replaced)

	rec := findRecord(result.Endpoints, "GET", "/users")
	require.NotNil(t, rec)
	assert.Equal(t, "fetchAllUsers", rec.Handler)
}

func TestAnalyze_FreshRegistryPerRun(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "routes.go", `package main

func setup() {
	r.GET("/users", listUsers)
}
`)

	a := newAnalyzer(t, WithRoot(root))

	first, err := a.Analyze(context.Background())
	require.NoError(t, err)
	second, err := a.Analyze(context.Background())
	require.NoError(t, err)

	// A second run over the same tree starts from a clean registry, so its
	// counters match the first run exactly instead of accumulating.
	assert.Equal(t, first.Stats.EndpointsAdmitted, second.Stats.EndpointsAdmitted)
	assert.Equal(t, first.Stats.DuplicatesDetected, second.Stats.DuplicatesDetected)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestAnalyze_NonRecursive(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "routes.go", `package main

func a() { r.GET("/top", topHandler) }
`)
	writeSource(t, root, filepath.Join("sub", "more.go"), `package sub

func b() { r.GET("/nested", nestedHandler) }
`)

	a := newAnalyzer(t, WithRoot(root), WithRecursive(false))
	result, err := a.Analyze(context.Background())
	require.NoError(t, err)

	assert.NotNil(t, findRecord(result.Endpoints, "GET", "/top"))
	assert.Nil(t, findRecord(result.Endpoints, "GET", "/nested"))
}

func TestAnalyze_MissingRoot(t *testing.T) {
	a := newAnalyzer(t, WithRoot(filepath.Join(t.TempDir(), "missing")))
	_, err := a.Analyze(context.Background())
	assert.Error(t, err)
}

func TestAnalyze_CancelledContext(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "routes.go", "package main\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := newAnalyzer(t, WithRoot(root))
	_, err := a.Analyze(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyze_PersistsSnapshot(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "routes.go", `package main

func setup() { r.GET("/users", listUsers) }
`)
	statePath := filepath.Join(t.TempDir(), "routelens.db")

	a := newAnalyzer(t, WithRoot(root), WithStateFile(statePath))
	result, err := a.Analyze(context.Background())
	require.NoError(t, err)

	s, err := store.NewBoltStore(statePath)
	require.NoError(t, err)
	defer s.Close()

	snap, err := s.Latest()
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, result.RunID, snap.RunID)
	assert.Len(t, snap.Endpoints, 1)
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(WithRoot(""))
	assert.Error(t, err)

	_, err = New(WithInspectPort(0))
	assert.Error(t, err)

	_, err = New(WithOutputFormat("xml"))
	assert.Error(t, err)
}

func TestConfig_LoadFromFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
root: /src/app
walk:
  recursive: false
  max_file_size: 1024
inspect:
  enabled: true
  port: 8080
  requests_per_second: 5
output:
  format: json
`), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/src/app", cfg.Root)
	assert.False(t, cfg.Walk.Recursive)
	assert.Equal(t, int64(1024), cfg.Walk.MaxFileSize)
	assert.True(t, cfg.Inspect.Enabled)
	assert.Equal(t, 8080, cfg.Inspect.Port)
	assert.Equal(t, "json", cfg.Output.Format)
	require.NoError(t, cfg.Validate())
}

func TestConfig_SaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Root = "/src/app"
	cfg.Output.Format = "json"
	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Root, loaded.Root)
	assert.Equal(t, cfg.Output.Format, loaded.Output.Format)
}

func TestConfig_Clone(t *testing.T) {
	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.Root = "/elsewhere"
	assert.NotEqual(t, cfg.Root, clone.Root)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"empty root", func(c *Config) { c.Root = "" }, true},
		{"zero max size", func(c *Config) { c.Walk.MaxFileSize = 0 }, true},
		{"inspect without port", func(c *Config) { c.Inspect.Enabled = true }, true},
		{"state without path", func(c *Config) { c.State.Enabled = true }, true},
		{"bad format", func(c *Config) { c.Output.Format = "pdf" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
