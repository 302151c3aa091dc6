package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dbsmedya/refdump/internal/config"
	"github.com/dbsmedya/refdump/internal/store"
)

var validateShowConfig bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and run store preflight checks",
	Long: `Validate checks the configuration file and runs preflight checks
against the record store to ensure jobs can run.

Checks performed:
  - Configuration syntax and required fields
  - Store reachability for the configured driver
  - Seed record existence for every job
  - Output directory writability

Example:
  refdump validate --config refdump.yaml`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateShowConfig, "show-config", false,
		"Print the effective configuration after overrides")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
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

	fmt.Fprintf(outputWriter, "\n=== Configuration Validation ===\n")
	fmt.Fprintf(outputWriter, "Config file: %s\n", configFile)
	fmt.Fprintf(outputWriter, "Jobs found: %d\n\n", len(cfg.Jobs))

	if validateShowConfig {
		rendered, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to render effective config: %w", err)
		}
		printSection("Effective Configuration")
		fmt.Fprintf(outputWriter, "%s\n", rendered)
	}

	// Structural validation
	if err := cfg.Validate(); err != nil {
		var verrs config.ValidationErrors
		if errors.As(err, &verrs) {
			for _, ve := range verrs {
				fmt.Fprintf(outputWriter, "%s %s\n", failMark(), ve.Error())
			}
			return fmt.Errorf("configuration validation failed with %d error(s)", len(verrs))
		}
		return err
	}
	fmt.Fprintf(outputWriter, "%s Configuration is valid\n", okMark())

	// Setup context
	ctx := context.Background()

	// Store reachability
	st, err := store.Open(ctx, &cfg.Store)
	if err != nil {
		fmt.Fprintf(outputWriter, "%s Store unreachable: %v\n", failMark(), err)
		return fmt.Errorf("store preflight failed")
	}
	defer st.Close()
	fmt.Fprintf(outputWriter, "%s Store reachable (%s driver)\n", okMark(), cfg.Store.Driver)

	// Validate each job
	hasErrors := false
	for _, jobName := range cfg.ListJobs() {
		job, err := cfg.GetJob(jobName)
		if err != nil {
			return err
		}

		fmt.Fprintf(outputWriter, "\n--- Job: %s ---\n", jobName)
		fmt.Fprintf(outputWriter, "Seed: %s\n", job.Seed)

		if err := store.Preflight(ctx, st, job.Seed); err != nil {
			fmt.Fprintf(outputWriter, "%s %v\n", failMark(), err)
			hasErrors = true
			continue
		}
		fmt.Fprintf(outputWriter, "%s Seed record found\n", okMark())

		output := job.GetJobOutput(cfg.Output)
		if err := checkWritable(output.Dir); err != nil {
			fmt.Fprintf(outputWriter, "%s Output dir not writable: %v\n", failMark(), err)
			hasErrors = true
			continue
		}
		fmt.Fprintf(outputWriter, "%s Output dir writable (%s)\n", okMark(), output.Dir)
	}

	if hasErrors {
		return fmt.Errorf("validation failed for one or more jobs")
	}

	fmt.Fprintf(outputWriter, "\n=== Validation Complete ===\n")
	fmt.Fprintf(outputWriter, "%s All jobs validated successfully\n", okMark())
	return nil
}

// okMark and failMark render check markers, colored when the terminal
// supports it.
func okMark() string   { return color.Green.Sprint("✔") }
func failMark() string { return color.Red.Sprint("✖") }

// checkWritable verifies the export destination can be created and written.
func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	probe, err := os.CreateTemp(dir, ".refdump-preflight-*")
	if err != nil {
		return err
	}
	name := probe.Name()
	probe.Close()
	return os.Remove(name)
}
