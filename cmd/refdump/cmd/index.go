package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/dbsmedya/refdump/internal/config"
	"github.com/dbsmedya/refdump/internal/indexer"
	"github.com/dbsmedya/refdump/internal/logger"
	"github.com/dbsmedya/refdump/internal/store"
	"github.com/dbsmedya/refdump/internal/verifier"
)

var (
	indexDestDriver string
	indexDestPath   string
	indexDestDSN    string
	indexDestTable  string
	indexResume     bool
	indexSkipVerify bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Copy every record from the configured store into another store",
	Long: `Index streams every record from the configured source store into a
writable destination store, batch by batch.

The index process:
  1. List every record identifier in the source store
  2. Copy raw documents to the destination in batches
  3. Verify the copy (count or sha256) unless verification is skipped

Use --resume to skip records already present in the destination.

Example:
  refdump index --config refdump.yaml --dest-driver badger --dest-path ./index.db
  refdump index --dest-driver sqlite --dest-dsn ./records.db --resume`,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexDestDriver, "dest-driver", "",
		"Destination store driver: dir, badger, mysql, postgres, sqlite (required)")
	indexCmd.MarkFlagRequired("dest-driver")

	indexCmd.Flags().StringVar(&indexDestPath, "dest-path", "",
		"Destination path (dir and badger drivers)")
	indexCmd.Flags().StringVar(&indexDestDSN, "dest-dsn", "",
		"Destination DSN (SQL drivers)")
	indexCmd.Flags().StringVar(&indexDestTable, "dest-table", "",
		"Destination table (SQL drivers, defaults to the source table)")
	indexCmd.Flags().BoolVar(&indexResume, "resume", false,
		"Skip records already present in the destination")
	indexCmd.Flags().BoolVar(&indexSkipVerify, "skip-verify", false,
		"Skip verification after the copy")

	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	// Load configuration
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Apply CLI overrides
	overrides := GetCLIOverrides()
	cfg.ApplyOverrides(overrides.LogLevel, overrides.LogFormat,
		overrides.MaxRounds, overrides.BatchSize,
		overrides.CategoryCap, overrides.MaxRecords,
		overrides.SleepSeconds)

	// Initialize logger
	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	destCfg := destStoreConfig(&cfg.Store)

	log.Infow("Starting index operation",
		"source", describeStore(&cfg.Store),
		"destination", describeStore(&destCfg),
		"resume", indexResume,
	)

	// Setup context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open source and destination stores
	src, err := store.Open(ctx, &cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open source store: %w", err)
	}
	defer src.Close()

	rawSrc, ok := src.(store.RawStore)
	if !ok {
		return fmt.Errorf("the %s driver does not support raw reads", cfg.Store.Driver)
	}

	dest, err := store.OpenWrite(ctx, &destCfg)
	if err != nil {
		return fmt.Errorf("failed to open destination store: %w", err)
	}
	defer dest.Close()

	// Handle graceful shutdown
	watchSignals(cancel, log)

	// Run the copy
	idx, err := indexer.New(rawSrc, dest, indexer.Options{
		BatchSize:    cfg.Traversal.BatchSize,
		Resume:       indexResume,
		SleepSeconds: cfg.Traversal.SleepSeconds,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to create indexer: %w", err)
	}

	stats, err := idx.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn("Index operation cancelled by user")
			return nil
		}
		return fmt.Errorf("index operation failed: %w", err)
	}

	// Display results
	fmt.Fprintf(outputWriter, "\n=== Index Complete ===\n")
	fmt.Fprintf(outputWriter, "Source: %s\n", describeStore(&cfg.Store))
	fmt.Fprintf(outputWriter, "Destination: %s\n", describeStore(&destCfg))
	fmt.Fprintf(outputWriter, "Duration: %s\n", stats.Duration)
	fmt.Fprintf(outputWriter, "Batches: %d\n", stats.Batches)
	fmt.Fprintf(outputWriter, "Records copied: %d\n", stats.RecordsCopied)
	fmt.Fprintf(outputWriter, "Records skipped: %d\n", stats.RecordsSkipped)
	fmt.Fprintf(outputWriter, "Records failed: %d\n", stats.RecordsFailed)

	// Verify the copy
	if indexSkipVerify || cfg.Verification.SkipVerification {
		fmt.Fprintln(outputWriter, "Verification: skipped")
		return nil
	}

	v, err := verifier.New(rawSrc, dest, verifier.VerificationMethod(cfg.Verification.Method), log)
	if err != nil {
		return fmt.Errorf("failed to create verifier: %w", err)
	}

	vres, verr := v.Verify(ctx)
	if vres != nil {
		fmt.Fprintf(outputWriter, "Verification: %s\n", vres.Describe())
	}
	if verr != nil {
		return fmt.Errorf("index verification failed: %w", verr)
	}

	color.Success.Println("\nIndex verified")
	return nil
}

// destStoreConfig builds the destination store config from the index flags,
// inheriting table and column naming from the source where not overridden.
func destStoreConfig(source *config.StoreConfig) config.StoreConfig {
	dest := *source
	dest.Driver = indexDestDriver
	dest.Path = indexDestPath
	dest.DSN = indexDestDSN
	if indexDestTable != "" {
		dest.Table = indexDestTable
	}
	return dest
}

// describeStore names a store for log and result lines.
func describeStore(sc *config.StoreConfig) string {
	switch sc.Driver {
	case "dir", "zip", "badger":
		return fmt.Sprintf("%s (%s)", sc.Driver, sc.Path)
	default:
		return fmt.Sprintf("%s (table %s)", sc.Driver, sc.Table)
	}
}
