package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/goreach/internal/config"
	"github.com/dbsmedya/goreach/internal/logger"
	"github.com/dbsmedya/goreach/internal/reach"
	"github.com/dbsmedya/goreach/internal/report"
	"github.com/dbsmedya/goreach/internal/resolve"
)

var (
	countID        string
	countFirstName string
	countLastName  string
	countMaxDepth  int
	countHideEmpty bool
)

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Count records linked to a start record, per type",
	Long: `Count resolves the start record, computes every record linked to it
through references (in either direction, at any distance) and prints
the number of linked records per resource type.

Exactly one of --id or the pair --firstname/--lastname must be given.

Examples:
  goreach count --data-dir ./export --id 6d6b7b7e-2a1f-4c4e-9f0a-1c2d3e4f5a6b
  goreach count --data-dir ./export --firstname John --lastname Doe -o json`,
	Args: cobra.NoArgs,
	RunE: runCount,
}

func init() {
	countCmd.Flags().StringVar(&countID, "id", "",
		"Identifier of the start record")
	countCmd.Flags().StringVar(&countFirstName, "firstname", "",
		"First given name of the start record (requires --lastname)")
	countCmd.Flags().StringVar(&countLastName, "lastname", "",
		"Family name of the start record (requires --firstname)")
	countCmd.Flags().IntVar(&countMaxDepth, "max-depth", 0,
		"Stop after this many expansion steps (0 = full closure)")
	countCmd.Flags().BoolVar(&countHideEmpty, "hide-empty", false,
		"Omit types with no linked records")

	rootCmd.AddCommand(countCmd)
}

// initLogger builds the run logger from configuration.
func initLogger(cfg *config.Config) (*logger.Logger, error) {
	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return log, nil
}

func runCount(cmd *cobra.Command, args []string) error {
	query := resolve.Query{
		ID:        countID,
		FirstName: countFirstName,
		LastName:  countLastName,
	}
	// Usage errors are reported before any data is loaded.
	if err := query.Validate(); err != nil {
		return err
	}
	if countMaxDepth < 0 {
		return &usageError{err: fmt.Errorf("--max-depth must be non-negative")}
	}

	cfg, err := loadConfig(config.Overrides{
		MaxDepth:  countMaxDepth,
		HideEmpty: countHideEmpty,
	})
	if err != nil {
		return err
	}

	log, err := initLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := setupSignalHandler(cmd.Context(), func(sig os.Signal) {
		log.Warnf("Received %s, stopping after the current step", sig)
	})
	defer stop()

	ws, err := openWorkspace(ctx, cfg, log)
	if err != nil {
		return err
	}

	resolver := resolve.NewResolver(ws.snap, cfg.Schema.StartType, log.WithComponent("resolve"))
	start, err := resolver.Resolve(query)
	if err != nil {
		return err
	}

	engine, err := reach.NewEngine(ws.snap, ws.index,
		reach.WithWorkers(cfg.Processing.Workers),
		reach.WithMaxDepth(cfg.Processing.MaxDepth),
		reach.WithLogger(log.WithComponent("reach")),
	)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	rs, err := engine.Run(ctx, start)
	if err != nil {
		return fmt.Errorf("traversal from %s failed: %w", start, err)
	}

	counts := rs.Counts(ws.snap.Types(), cfg.Output.HideEmpty)
	return report.Render(outputWriter, counts, report.Options{
		Format:  cfg.Output.Format,
		NoColor: cfg.Output.NoColor,
	})
}
