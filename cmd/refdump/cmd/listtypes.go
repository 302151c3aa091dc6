package cmd

import (
	"context"
	"fmt"

	orderedmap "github.com/elliotchance/orderedmap/v2"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/dbsmedya/refdump/internal/config"
	"github.com/dbsmedya/refdump/internal/logger"
	"github.com/dbsmedya/refdump/internal/store"
	"github.com/dbsmedya/refdump/internal/traverse"
)

var listTypesCmd = &cobra.Command{
	Use:   "list-types",
	Short: "Scan the store and print a census of type tags and namespaces",
	Long: `List-types scans every record in the configured store and prints how
many records carry each type tag and how many live under each namespace.

Tags and namespaces are listed in the order the store lists them, so
repeated scans over the same store print identically.

Example:
  refdump list-types --config refdump.yaml`,
	RunE: runListTypes,
}

func init() {
	rootCmd.AddCommand(listTypesCmd)
}

func runListTypes(cmd *cobra.Command, args []string) error {
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

	// Setup context
	ctx := context.Background()

	// Open the record store
	st, err := store.Open(ctx, &cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	census, err := traverse.TakeCensus(ctx, st, log)
	if err != nil {
		return fmt.Errorf("census failed: %w", err)
	}

	// Display the census
	fmt.Fprintln(outputWriter)
	printHeader("Store Census")

	fmt.Fprintln(outputWriter)
	printSection("Type Tags")
	printCountTable(census.TypeCounts)

	fmt.Fprintln(outputWriter)
	printSection("Namespaces")
	printCountTable(census.NamespaceCounts)

	fmt.Fprintf(outputWriter, "\nTotal: %d record(s), %d type(s), %d namespace(s)\n",
		census.Records, census.TypeCounts.Len(), census.NamespaceCounts.Len())
	if census.FetchFailures > 0 {
		fmt.Fprintf(outputWriter, "Unreadable records: %d\n", census.FetchFailures)
	}

	return nil
}

// printCountTable prints an aligned name/count table in first-seen order.
// Names are padded by terminal cell width so counts line up even when
// names carry wide runes.
func printCountTable(counts *orderedmap.OrderedMap[string, int]) {
	width := 0
	for _, name := range counts.Keys() {
		if w := runewidth.StringWidth(name); w > width {
			width = w
		}
	}
	for el := counts.Front(); el != nil; el = el.Next() {
		fmt.Fprintf(outputWriter, "  %s %5d\n", runewidth.FillRight(el.Key, width+2), el.Value)
	}
}
