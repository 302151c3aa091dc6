package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/refdump/internal/config"
	"github.com/dbsmedya/refdump/internal/logger"
	"github.com/dbsmedya/refdump/internal/refgraph"
	"github.com/dbsmedya/refdump/internal/store"
	"github.com/dbsmedya/refdump/internal/traverse"
)

// outputWriter is used for printing output, can be overridden in tests
var outputWriter io.Writer = os.Stdout

// setOutputWriter sets the output writer (used for testing)
func setOutputWriter(w io.Writer) {
	outputWriter = w
}

// resetOutputWriter resets output to stdout (used for testing)
func resetOutputWriter() {
	outputWriter = os.Stdout
}

var (
	graphJob  string
	graphSeed string
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Show the discovered reference tree for a seed record",
	Long: `Graph runs a bounded traversal from a seed record and prints the
confirmed references as an indented ASCII tree.

The tree shows:
  - Every discovered record with its type tag
  - Reference cycles, marked and not descended into
  - Records reachable over more than one path, marked as seen

Example:
  refdump graph --config refdump.yaml --job weapons
  refdump graph --seed Items.sword_iron --max-rounds 3`,
	RunE: runGraph,
}

func init() {
	graphCmd.Flags().StringVarP(&graphJob, "job", "j", "",
		"Job name from configuration file")
	graphCmd.Flags().StringVarP(&graphSeed, "seed", "s", "",
		"Seed record path (namespace.name)")

	rootCmd.AddCommand(graphCmd)
}

func runGraph(cmd *cobra.Command, args []string) error {
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

	seed, traversal, _, err := resolveRunTarget(cfg, graphJob, graphSeed)
	if err != nil {
		return err
	}

	// Initialize logger
	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Setup context
	ctx := context.Background()

	// Open the record store
	st, err := store.Open(ctx, &cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	// Run the bounded traversal
	walker, err := traverse.NewWalker(st, traversal, log)
	if err != nil {
		return fmt.Errorf("failed to create walker: %w", err)
	}

	res, err := walker.Run(ctx, seed)
	if err != nil {
		return fmt.Errorf("traversal failed: %w", err)
	}

	// Display the reference tree
	g := refgraph.FromResult(res)

	fmt.Fprintln(outputWriter)
	printHeader("Reference Graph: %s", seed)
	fmt.Fprintln(outputWriter)
	fmt.Fprint(outputWriter, g.RenderTree())

	fmt.Fprintln(outputWriter)
	printSection("Graph Summary")
	fmt.Fprintf(outputWriter, "  Records:    %d\n", g.NodeCount())
	fmt.Fprintf(outputWriter, "  References: %d\n", g.EdgeCount())
	fmt.Fprintf(outputWriter, "  Rounds:     %d\n", res.Stats.Rounds)
	fmt.Fprintf(outputWriter, "  Duration:   %s\n", res.Stats.Duration.Round(time.Millisecond))
	if n := res.Errors.Len(); n > 0 {
		fmt.Fprintf(outputWriter, "  Failures:   %d\n", n)
	}

	return nil
}

// printHeader prints a formatted header
func printHeader(format string, args ...interface{}) {
	title := fmt.Sprintf(format, args...)
	width := len(title) + 4
	fmt.Fprintln(outputWriter, strings.Repeat("=", width))
	fmt.Fprintf(outputWriter, "  %s\n", title)
	fmt.Fprintln(outputWriter, strings.Repeat("=", width))
}

// printSection prints a section header
func printSection(title string) {
	fmt.Fprintf(outputWriter, "[%s]\n", title)
	fmt.Fprintln(outputWriter, strings.Repeat("-", len(title)+2))
}
