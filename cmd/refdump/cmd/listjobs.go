package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/refdump/internal/config"
)

var listJobsCmd = &cobra.Command{
	Use:   "list-jobs",
	Short: "List all jobs defined in configuration",
	Long: `List-jobs displays all export jobs defined in the configuration file
along with their basic settings.

Example:
  refdump list-jobs --config refdump.yaml`,
	RunE: runListJobs,
}

func init() {
	rootCmd.AddCommand(listJobsCmd)
}

func runListJobs(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	// Load configuration
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Job names come back sorted
	jobNames := cfg.ListJobs()

	if len(jobNames) == 0 {
		cmd.Printf("No jobs defined in %s\n", configFile)
		return nil
	}

	cmd.Printf("Jobs defined in %s:\n\n", configFile)

	for i, jobName := range jobNames {
		job, err := cfg.GetJob(jobName)
		if err != nil {
			return fmt.Errorf("failed to get job %q: %w", jobName, err)
		}

		// Job header
		cmd.Printf("%d. %s\n", i+1, jobName)
		cmd.Printf("   Seed:        %s\n", job.Seed)

		output := job.GetJobOutput(cfg.Output)
		cmd.Printf("   Output dir:  %s\n", output.Dir)

		// Effective traversal bounds
		traversal := job.GetJobTraversal(cfg.Traversal)
		origin := "Global"
		if job.Traversal != nil {
			origin = "Custom"
		}
		cmd.Printf("   Traversal:   %s (max_rounds=%d, batch_size=%d, category_cap=%d)\n",
			origin, traversal.MaxRounds, traversal.BatchSize, traversal.CategoryCap)

		if traversal.MaxRecords > 0 {
			cmd.Printf("   Record cap:  %d\n", traversal.MaxRecords)
		}
		if traversal.SleepSeconds > 0 {
			cmd.Printf("   Sleep:       %.1fs\n", traversal.SleepSeconds)
		}

		// Add spacing between jobs
		if i < len(jobNames)-1 {
			cmd.Println()
		}
	}

	cmd.Printf("\nTotal: %d job(s)\n", len(jobNames))
	return nil
}
