package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/refdump/internal/config"
	"github.com/dbsmedya/refdump/internal/record"
	"github.com/dbsmedya/refdump/internal/render"
	"github.com/dbsmedya/refdump/internal/store"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <path>",
	Short: "Fetch a single record and print its formatted content",
	Long: `Inspect fetches one record by its dotted path and prints the same
formatted rendering the export files contain.

Example:
  refdump inspect Items.sword_iron --config refdump.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()
	path := args[0]

	// Load configuration
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup context
	ctx := context.Background()

	// Open the record store
	st, err := store.Open(ctx, &cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	content, err := st.Fetch(ctx, path)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("record %q not found in store", path)
		}
		return fmt.Errorf("failed to fetch record: %w", err)
	}

	rec := record.New(path, content)

	cmd.Printf("Path:      %s\n", rec.Path)
	cmd.Printf("Type:      %s\n", rec.TypeTag())
	cmd.Printf("Namespace: %s\n", rec.Namespace())
	cmd.Println()
	cmd.Println(render.Format(rec.Content, 0))

	return nil
}
