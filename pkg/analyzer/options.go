package analyzer

import (
	"github.com/routelens/routelens/internal/logger"
)

// Option is a functional option for configuring the Analyzer.
type Option func(*Analyzer) error

// WithRoot sets the directory to analyze.
func WithRoot(root string) Option {
	return func(a *Analyzer) error {
		a.config.Root = root
		return nil
	}
}

// WithRecursive enables/disables recursing into subdirectories.
func WithRecursive(recursive bool) Option {
	return func(a *Analyzer) error {
		a.config.Walk.Recursive = recursive
		return nil
	}
}

// WithMaxFileSize sets the per-file size ceiling in bytes.
func WithMaxFileSize(size int64) Option {
	return func(a *Analyzer) error {
		if size > 0 {
			a.config.Walk.MaxFileSize = size
		}
		return nil
	}
}

// WithExtensions sets the file extensions to scan.
func WithExtensions(exts ...string) Option {
	return func(a *Analyzer) error {
		a.config.Walk.Extensions = exts
		return nil
	}
}

// WithInspectPort enables live inspection against a server on the port.
func WithInspectPort(port int) Option {
	return func(a *Analyzer) error {
		a.config.Inspect.Enabled = true
		a.config.Inspect.Port = port
		return nil
	}
}

// WithInspectRate sets the inspection rate limit.
func WithInspectRate(rps float64, burst int) Option {
	return func(a *Analyzer) error {
		a.config.Inspect.RequestsPerSecond = rps
		a.config.Inspect.Burst = burst
		return nil
	}
}

// WithOutputFormat sets the report format ("markdown" or "json").
func WithOutputFormat(format string) Option {
	return func(a *Analyzer) error {
		a.config.Output.Format = format
		return nil
	}
}

// WithOutputFile sets the report file path.
func WithOutputFile(path string) Option {
	return func(a *Analyzer) error {
		a.config.Output.FilePath = path
		return nil
	}
}

// WithPrettyOutput enables/disables pretty JSON output.
func WithPrettyOutput(pretty bool) Option {
	return func(a *Analyzer) error {
		a.config.Output.Pretty = pretty
		return nil
	}
}

// WithStateFile enables snapshot persistence to the given BoltDB file.
func WithStateFile(path string) Option {
	return func(a *Analyzer) error {
		a.config.State.Enabled = true
		a.config.State.FilePath = path
		return nil
	}
}

// WithVerbose enables/disables verbose logging.
func WithVerbose(verbose bool) Option {
	return func(a *Analyzer) error {
		a.config.Verbose = verbose
		if verbose {
			a.logger.SetLevel(logger.DebugLevel)
		}
		return nil
	}
}

// WithDebug enables/disables debug mode.
func WithDebug(debug bool) Option {
	return func(a *Analyzer) error {
		a.config.Debug = debug
		if debug {
			a.logger.SetLevel(logger.DebugLevel)
		}
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *logger.Logger) Option {
	return func(a *Analyzer) error {
		a.logger = l
		return nil
	}
}

// WithConfig sets the entire configuration.
func WithConfig(config *Config) Option {
	return func(a *Analyzer) error {
		a.config = config
		return nil
	}
}
