// Package walker supplies source files to the analyzer. It owns all file
// filtering: test files, hidden directories, vendor and build trees, and
// oversized files never reach the extraction engine.
package walker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxFileSize is the ceiling above which files are skipped unread.
const DefaultMaxFileSize = 2 << 20 // 2 MiB

var defaultExcludedDirs = map[string]bool{
	"vendor":       true,
	"node_modules": true,
	"testdata":     true,
	"dist":         true,
	"build":        true,
	"bin":          true,
}

// Config controls file discovery.
type Config struct {
	Root        string
	Recursive   bool
	Extensions  []string // file extensions to accept; defaults to .go
	MaxFileSize int64    // bytes; defaults to DefaultMaxFileSize
}

// File is one discovered source file with its complete content.
type File struct {
	Path    string // relative to the walk root
	Content string
}

// Walker discovers source files under a root directory.
type Walker struct {
	cfg Config
}

// New creates a walker. Zero-value config fields are filled with defaults.
func New(cfg Config) *Walker {
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = []string{".go"}
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	return &Walker{cfg: cfg}
}

// Walk calls fn for every accepted file. Read failures on individual files
// are reported through onError and do not stop the walk; fn returning an
// error does. onError may be nil. Returns the number of files supplied to fn.
func (w *Walker) Walk(fn func(File) error, onError func(path string, err error)) (int, error) {
	info, err := os.Stat(w.cfg.Root)
	if err != nil {
		return 0, fmt.Errorf("scan root %s: %w", w.cfg.Root, err)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("scan root %s is not a directory", w.cfg.Root)
	}

	supplied := 0
	walkErr := filepath.WalkDir(w.cfg.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path == w.cfg.Root {
				return nil
			}
			if !w.cfg.Recursive || skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !w.accept(d) {
			return nil
		}

		rel, relErr := filepath.Rel(w.cfg.Root, path)
		if relErr != nil {
			rel = path
		}

		data, err := os.ReadFile(path)
		if err != nil {
			if onError != nil {
				onError(rel, err)
			}
			return nil
		}

		supplied++
		return fn(File{Path: rel, Content: string(data)})
	})

	return supplied, walkErr
}

func (w *Walker) accept(d fs.DirEntry) bool {
	name := d.Name()

	if strings.HasPrefix(name, ".") {
		return false
	}
	if strings.HasSuffix(name, "_test.go") {
		return false
	}

	matched := false
	for _, ext := range w.cfg.Extensions {
		if strings.HasSuffix(name, ext) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}

	info, err := d.Info()
	if err != nil {
		return false
	}
	return info.Size() <= w.cfg.MaxFileSize
}

func skipDir(name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
		return true
	}
	return defaultExcludedDirs[name]
}
