package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/goreach/internal/config"
)

var listTypesCmd = &cobra.Command{
	Use:   "list-types",
	Short: "List all record collections in the source",
	Long: `List-types displays every collection found in the configured source
along with its record count and reference links.

Example:
  goreach list-types --data-dir ./export`,
	Args: cobra.NoArgs,
	RunE: runListTypes,
}

func init() {
	rootCmd.AddCommand(listTypesCmd)
}

func runListTypes(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(config.Overrides{})
	if err != nil {
		return err
	}

	log, err := initLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	ws, err := openWorkspace(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}

	typeNames := ws.snap.Types()
	if len(typeNames) == 0 {
		fmt.Fprintf(outputWriter, "No collections found in %s\n", sourceName(cfg))
		return nil
	}

	fmt.Fprintf(outputWriter, "Collections in %s:\n\n", sourceName(cfg))

	for i, typeName := range typeNames {
		c, _ := ws.snap.Collection(typeName)
		res := ws.results[typeName]

		fmt.Fprintf(outputWriter, "%d. %s\n", i+1, typeName)
		fmt.Fprintf(outputWriter, "   Records:       %d\n", c.Len())
		fmt.Fprintf(outputWriter, "   References:    %d in %d field(s)\n", res.References, len(res.Fields))
		fmt.Fprintf(outputWriter, "   Links to:      %s\n", listOrNone(ws.graph.GetChildren(typeName)))
		fmt.Fprintf(outputWriter, "   Linked from:   %s\n", listOrNone(ws.graph.GetParents(typeName)))

		// Add spacing between types
		if i < len(typeNames)-1 {
			fmt.Fprintln(outputWriter)
		}
	}

	if missing := ws.graph.MissingTypes(); len(missing) > 0 {
		fmt.Fprintf(outputWriter, "\nReferenced but missing: %s\n", listOrNone(missing))
	}

	fmt.Fprintf(outputWriter, "\nTotal: %d type(s), %d record(s)\n", len(typeNames), ws.snap.TotalRecords())
	return nil
}

func sourceName(cfg *config.Config) string {
	if cfg.Source.Driver == config.DriverMySQL {
		return fmt.Sprintf("mysql table %s.%s", cfg.Source.MySQL.Database, cfg.Source.MySQL.Table)
	}
	return cfg.Source.Directory
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
