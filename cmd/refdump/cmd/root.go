package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile      string
	logLevel     string
	logFormat    string
	maxRounds    int
	batchSize    int
	categoryCap  int
	maxRecords   int
	sleepSeconds float64
)

var rootCmd = &cobra.Command{
	Use:   "refdump",
	Short: "Record Reference Walker & Exporter",
	Long: `A CLI tool for discovering the transitive closure of cross-references
among records in a keyed store and exporting them as grouped text files.

Features:
  - Bounded breadth-first reference discovery with per-round batching
  - Heuristic reference extraction confirmed against the store
  - Memoized type and namespace expansion with per-category caps
  - Deterministic typed-value rendering of exported records
  - Store indexing across backends (dir, zip, badger, mysql, postgres, sqlite)`,
	Version: Version,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Config file flag
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "refdump.yaml",
		"Path to configuration file")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	// Traversal overrides
	rootCmd.PersistentFlags().IntVar(&maxRounds, "max-rounds", 0,
		"Override maximum traversal rounds")
	rootCmd.PersistentFlags().IntVar(&batchSize, "batch-size", 0,
		"Override batch size (paths per round, records per index batch)")
	rootCmd.PersistentFlags().IntVar(&categoryCap, "category-cap", 0,
		"Override per-category expansion cap")
	rootCmd.PersistentFlags().IntVar(&maxRecords, "max-records", 0,
		"Override total record cap (0 = unbounded)")
	rootCmd.PersistentFlags().Float64Var(&sleepSeconds, "sleep", 0,
		"Override sleep seconds between rounds and batches")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// CLIOverrides contains flag values that override config file settings
type CLIOverrides struct {
	LogLevel     string
	LogFormat    string
	MaxRounds    int
	BatchSize    int
	CategoryCap  int
	MaxRecords   int
	SleepSeconds float64
}

// GetCLIOverrides returns the CLI flag override values
func GetCLIOverrides() CLIOverrides {
	return CLIOverrides{
		LogLevel:     logLevel,
		LogFormat:    logFormat,
		MaxRounds:    maxRounds,
		BatchSize:    batchSize,
		CategoryCap:  categoryCap,
		MaxRecords:   maxRecords,
		SleepSeconds: sleepSeconds,
	}
}
