package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/routelens/routelens/internal/logger"
	"github.com/routelens/routelens/internal/report"
	"github.com/routelens/routelens/internal/store"
	"github.com/routelens/routelens/pkg/analyzer"
)

var (
	version = "1.0.0"

	// Global flags
	configFile string
	verbose    bool
	debug      bool

	// Scan flags
	outputFile   string
	outputFormat string
	inspectPort  int
	maxFileSize  int64
	stateFile    string
	noRecursive  bool

	// Diff flags
	diffRunID string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "routelens",
		Short: "routelens - API route extraction from source code",
		Long: `routelens - A static analyzer that extracts HTTP route declarations
from source code, deduplicates them, and generates API documentation.

Recognizes multiple routing idioms (default mux, verb routers, chained
.Methods registration, dispatch tables), resolves handler descriptions from
nearby comments, and can optionally attach to a running server to capture
real request and response shapes.`,
		Version: version,
	}

	scanCmd := &cobra.Command{
		Use:   "scan [directory]",
		Short: "Scan a source tree for routes",
		Long:  "Scan a source tree for HTTP route declarations and generate documentation.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScan,
	}

	diffCmd := &cobra.Command{
		Use:   "diff [directory]",
		Short: "Compare a scan against the previous snapshot",
		Long:  "Scan a source tree and report endpoints added or removed since the last persisted run.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runDiff,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Debug mode")

	// Scan flags
	scanCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	scanCmd.Flags().StringVarP(&outputFormat, "format", "f", "markdown", "Output format (markdown, json)")
	scanCmd.Flags().IntVar(&inspectPort, "inspect-port", 0, "Attach to a running server on this port and inspect data shapes")
	scanCmd.Flags().Int64Var(&maxFileSize, "max-file-size", 0, "Maximum file size in bytes (default: 2MiB)")
	scanCmd.Flags().StringVar(&stateFile, "state-file", "", "BoltDB file for snapshot persistence")
	scanCmd.Flags().BoolVar(&noRecursive, "no-recursive", false, "Do not recurse into subdirectories")

	// Diff flags
	diffCmd.Flags().StringVar(&stateFile, "state-file", "", "BoltDB file holding previous snapshots")
	diffCmd.Flags().StringVar(&diffRunID, "run-id", "", "Compare against a specific run instead of the latest")
	diffCmd.MarkFlagRequired("state-file")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(diffCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func buildConfig(cmd *cobra.Command, args []string) (*analyzer.Config, error) {
	config := analyzer.DefaultConfig()

	if configFile != "" {
		fileConfig, err := analyzer.LoadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
		config = fileConfig
	}

	if len(args) > 0 {
		config.Root = args[0]
	}

	if cmd.Flags().Changed("format") {
		config.Output.Format = outputFormat
	}
	if cmd.Flags().Changed("output") {
		config.Output.FilePath = outputFile
	}
	if cmd.Flags().Changed("max-file-size") {
		config.Walk.MaxFileSize = maxFileSize
	}
	if cmd.Flags().Changed("inspect-port") {
		config.Inspect.Enabled = true
		config.Inspect.Port = inspectPort
	}
	if stateFile != "" {
		config.State.Enabled = true
		config.State.FilePath = stateFile
	}
	if noRecursive {
		config.Walk.Recursive = false
	}
	config.Verbose = verbose
	config.Debug = debug

	return config, nil
}

func newLogger() *logger.Logger {
	level := logger.InfoLevel
	if verbose || debug {
		level = logger.DebugLevel
	}
	return logger.New(logger.Config{
		Level:  level,
		Pretty: true,
		Output: os.Stderr,
	})
}

func runScan(cmd *cobra.Command, args []string) error {
	config, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	a, err := analyzer.New(
		analyzer.WithConfig(config),
		analyzer.WithLogger(newLogger()),
	)
	if err != nil {
		return fmt.Errorf("failed to create analyzer: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintf(os.Stderr, "\nReceived interrupt signal, stopping...\n")
		cancel()
	}()

	result, err := a.Analyze(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	out := os.Stdout
	if config.Output.FilePath != "" {
		f, err := os.Create(config.Output.FilePath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	writer := report.NewWriter(out, report.Config{
		Format: config.Output.Format,
		Pretty: config.Output.Pretty,
	})
	if err := writer.WriteReport(result.Report()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if config.Output.FilePath != "" {
		printSummary(result)
		fmt.Printf("Report written to %s\n", config.Output.FilePath)
	}

	return nil
}

func runDiff(cmd *cobra.Command, args []string) error {
	config, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	// The diff scan itself must not overwrite the snapshot being compared
	// against; persistence happens after the comparison.
	config.State.Enabled = false

	s, err := store.NewBoltStore(stateFile)
	if err != nil {
		return fmt.Errorf("failed to open state file: %w", err)
	}
	defer s.Close()

	var previous *store.Snapshot
	if diffRunID != "" {
		previous, err = s.Get(diffRunID)
		if err != nil {
			return fmt.Errorf("failed to load run %s: %w", diffRunID, err)
		}
		if previous == nil {
			return fmt.Errorf("no snapshot found for run %s", diffRunID)
		}
	} else {
		previous, err = s.Latest()
		if err != nil {
			return fmt.Errorf("failed to load latest snapshot: %w", err)
		}
	}

	a, err := analyzer.New(
		analyzer.WithConfig(config),
		analyzer.WithLogger(newLogger()),
	)
	if err != nil {
		return fmt.Errorf("failed to create analyzer: %w", err)
	}

	result, err := a.Analyze(context.Background())
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	current := result.Snapshot()
	diff := store.Compare(previous, current)

	if previous == nil {
		fmt.Println("No previous snapshot; all endpoints are new.")
	} else {
		fmt.Printf("Comparing against run %s (%s)\n", previous.RunID, previous.Timestamp.Format(time.RFC3339))
	}
	fmt.Println()

	if len(diff.Added) == 0 && len(diff.Removed) == 0 {
		fmt.Println("No endpoint changes.")
	}
	for _, key := range diff.Added {
		fmt.Printf("  + %s\n", key)
	}
	for _, key := range diff.Removed {
		fmt.Printf("  - %s\n", key)
	}
	fmt.Println()

	if err := s.Save(current); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	fmt.Printf("Snapshot %s saved.\n", current.RunID)

	return nil
}

func printSummary(result *analyzer.Result) {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                        Scan Summary                          ║")
	fmt.Println("╚══════════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("Duration:            %v\n", result.Duration.Round(time.Millisecond))
	fmt.Printf("Files Processed:     %d\n", result.Stats.FilesProcessed)
	fmt.Printf("Endpoints Found:     %d\n", result.Stats.EndpointsAdmitted)
	fmt.Printf("Duplicates Detected: %d\n", result.Stats.DuplicatesDetected)
	fmt.Printf("File Errors:         %d\n", len(result.Errors))
	if result.Inspected > 0 {
		fmt.Printf("Endpoints Inspected: %d\n", result.Inspected)
	}
	fmt.Println()

	if len(result.Endpoints) > 0 {
		fmt.Println("Discovered Endpoints:")
		count := 10
		if len(result.Endpoints) < count {
			count = len(result.Endpoints)
		}
		for i := 0; i < count; i++ {
			ep := result.Endpoints[i]
			fmt.Printf("  [%s] %s\n", ep.Method, ep.Path)
		}
		if len(result.Endpoints) > 10 {
			fmt.Printf("  ... and %d more\n", len(result.Endpoints)-10)
		}
		fmt.Println()
	}
}
