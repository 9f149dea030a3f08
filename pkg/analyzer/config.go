package analyzer

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/routelens/routelens/internal/walker"
)

// Config holds all analyzer configuration.
type Config struct {
	// Root directory to analyze
	Root string `json:"root" yaml:"root"`

	// File discovery
	Walk WalkConfig `json:"walk" yaml:"walk"`

	// Live server inspection
	Inspect InspectConfig `json:"inspect" yaml:"inspect"`

	// Output configuration
	Output OutputConfig `json:"output" yaml:"output"`

	// Snapshot persistence
	State StateConfig `json:"state" yaml:"state"`

	// Verbose logging
	Verbose bool `json:"verbose" yaml:"verbose"`

	// Debug mode
	Debug bool `json:"debug" yaml:"debug"`
}

// WalkConfig controls file discovery.
type WalkConfig struct {
	// Recurse into subdirectories
	Recursive bool `json:"recursive" yaml:"recursive"`

	// Maximum file size in bytes
	MaxFileSize int64 `json:"max_file_size" yaml:"max_file_size"`

	// File extensions to scan
	Extensions []string `json:"extensions" yaml:"extensions"`
}

// InspectConfig controls live server inspection.
type InspectConfig struct {
	Enabled           bool    `json:"enabled" yaml:"enabled"`
	Port              int     `json:"port" yaml:"port"`
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
	Burst             int     `json:"burst" yaml:"burst"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Format   string `json:"format" yaml:"format"`
	Pretty   bool   `json:"pretty" yaml:"pretty"`
	FilePath string `json:"file_path" yaml:"file_path"`
}

// StateConfig controls snapshot persistence.
type StateConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	FilePath string `json:"file_path" yaml:"file_path"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Root: ".",
		Walk: WalkConfig{
			Recursive:   true,
			MaxFileSize: walker.DefaultMaxFileSize,
			Extensions:  []string{".go"},
		},
		Inspect: InspectConfig{
			Enabled:           false,
			RequestsPerSecond: 10,
			Burst:             2,
		},
		Output: OutputConfig{
			Format: "markdown",
			Pretty: true,
		},
		State: StateConfig{
			Enabled: false,
		},
	}
}

// LoadFromFile loads configuration from a file (YAML or JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()

	// Try YAML first, then JSON
	if err := yaml.Unmarshal(data, config); err != nil {
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	return config, nil
}

// SaveToFile saves configuration to a file.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".json") {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("root directory is required")
	}

	if c.Walk.MaxFileSize < 1 {
		return fmt.Errorf("max file size must be positive")
	}

	if c.Inspect.Enabled {
		if c.Inspect.Port < 1 || c.Inspect.Port > 65535 {
			return fmt.Errorf("inspect port must be between 1 and 65535")
		}
		if c.Inspect.RequestsPerSecond <= 0 {
			return fmt.Errorf("inspect rate limit must be positive")
		}
	}

	if c.State.Enabled && c.State.FilePath == "" {
		return fmt.Errorf("state file path is required when state is enabled")
	}

	switch c.Output.Format {
	case "", "markdown", "json":
	default:
		return fmt.Errorf("unknown output format: %s", c.Output.Format)
	}

	return nil
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	data, _ := json.Marshal(c)
	clone := &Config{}
	json.Unmarshal(data, clone)
	return clone
}
