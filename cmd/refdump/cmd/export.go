package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/dbsmedya/refdump/internal/config"
	"github.com/dbsmedya/refdump/internal/lock"
	"github.com/dbsmedya/refdump/internal/logger"
	"github.com/dbsmedya/refdump/internal/render"
	"github.com/dbsmedya/refdump/internal/store"
	"github.com/dbsmedya/refdump/internal/traverse"
)

// progressInterval is how many visited records pass between progress lines.
const progressInterval = 100

var (
	exportJob   string
	exportSeed  string
	exportOut   string
	exportForce bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the reference closure of a seed record",
	Long: `Export runs the reference traversal from a seed record and writes the
discovered records as grouped text files.

The export process follows these steps:
  1. Discover the reference closure in bounded breadth-first rounds
  2. Group discovered records by type tag in visitation order
  3. Write one file per type, a consolidated file, and a run summary

Either --job (a job from the configuration file) or --seed (an explicit
record path) selects the starting record.

Example:
  refdump export --config refdump.yaml --job weapons
  refdump export --seed Items.sword_iron --out ./export`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportJob, "job", "j", "",
		"Job name from configuration file")
	exportCmd.Flags().StringVarP(&exportSeed, "seed", "s", "",
		"Seed record path (namespace.name)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "",
		"Output directory (overrides configuration)")
	exportCmd.Flags().BoolVar(&exportForce, "force", false,
		"Force execution even if the output directory lock is held (use with caution)")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
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

	// Resolve seed, bounds, and output destination
	seed, traversal, output, err := resolveRunTarget(cfg, exportJob, exportSeed)
	if err != nil {
		return err
	}
	outDir := output.Dir
	if exportOut != "" {
		outDir = exportOut
	}

	// Initialize logger
	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	log.Infow("Starting export operation",
		"job", exportJob,
		"seed", seed,
		"config", configFile,
		"output", outDir,
	)

	// Setup context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open the record store
	st, err := store.Open(ctx, &cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	// Take the output directory lock so concurrent exports cannot
	// interleave files in one destination
	dirLock := lock.New(outDir)
	if exportForce {
		if err := dirLock.ForceAcquire(); err != nil {
			return fmt.Errorf("failed to acquire output lock: %w", err)
		}
		log.Warnw("Replaced existing output lock (--force flag used)", "dir", outDir)
	} else {
		if err := dirLock.Acquire(); err != nil {
			if errors.Is(err, lock.ErrLocked) {
				return fmt.Errorf("an export is already running in '%s' (use --force to override): %w", outDir, err)
			}
			return fmt.Errorf("failed to acquire output lock: %w", err)
		}
	}
	defer dirLock.Release()

	// Handle graceful shutdown
	watchSignals(cancel, log)

	// Create the walker
	walker, err := traverse.NewWalker(st, traversal, log)
	if err != nil {
		return fmt.Errorf("failed to create walker: %w", err)
	}
	walker.SetProgress(func(visited int) {
		if visited%progressInterval == 0 {
			log.Infof("Visited %d records", visited)
		}
	})

	// Run traversal. A cancelled run still exports what it visited.
	res, err := walker.Run(ctx, seed)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn("Traversal cancelled - exporting records visited so far")
		} else {
			return fmt.Errorf("traversal failed: %w", err)
		}
	}

	// Write exports
	sink, err := render.NewDirSink(outDir)
	if err != nil {
		return fmt.Errorf("failed to prepare output directory: %w", err)
	}
	report := render.NewWriter(sink, log).Write(res)

	// Display results
	fmt.Fprintf(outputWriter, "\n=== Export Complete ===\n")
	fmt.Fprintf(outputWriter, "Run ID: %s\n", res.RunID)
	fmt.Fprintf(outputWriter, "Seed: %s\n", res.Seed)
	fmt.Fprintf(outputWriter, "Duration: %s\n", res.Stats.Duration)
	fmt.Fprintf(outputWriter, "Rounds: %d\n", res.Stats.Rounds)
	fmt.Fprintf(outputWriter, "Records exported: %d\n", report.Records)
	fmt.Fprintf(outputWriter, "Type groups: %d\n", report.Groups)
	fmt.Fprintf(outputWriter, "Files written: %d (%d failed)\n", report.FilesWritten, report.FilesFailed)
	fmt.Fprintf(outputWriter, "Output directory: %s\n", outDir)

	if n := res.Errors.Len(); n > 0 {
		color.Warn.Printf("\n%d non-fatal failure(s) recorded, see %s\n", n, report.Summary)
	} else {
		color.Success.Println("\nExport finished with no failures")
	}

	return nil
}

// resolveRunTarget picks the seed record, effective traversal bounds, and
// output settings for a run selected by --job or --seed. CLI flags win over
// job settings, job settings win over globals.
func resolveRunTarget(cfg *config.Config, jobName, seed string) (string, config.TraversalConfig, config.OutputConfig, error) {
	overrides := GetCLIOverrides()

	switch {
	case jobName == "" && seed == "":
		return "", config.TraversalConfig{}, config.OutputConfig{}, fmt.Errorf("either --job or --seed is required")
	case jobName != "" && seed != "":
		return "", config.TraversalConfig{}, config.OutputConfig{}, fmt.Errorf("--job and --seed are mutually exclusive")
	case jobName != "":
		job, err := cfg.GetJob(jobName)
		if err != nil {
			return "", config.TraversalConfig{}, config.OutputConfig{}, err
		}
		traversal := cfg.ApplyJobOverrides(jobName, overrides.MaxRounds, overrides.BatchSize,
			overrides.CategoryCap, overrides.MaxRecords, overrides.SleepSeconds)
		return job.Seed, traversal, cfg.GetJobOutput(jobName), nil
	default:
		return seed, cfg.Traversal, cfg.Output, nil
	}
}
