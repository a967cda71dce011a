package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dbsmedya/goreach/internal/config"
	"github.com/dbsmedya/goreach/internal/database"
	"github.com/dbsmedya/goreach/internal/extract"
	"github.com/dbsmedya/goreach/internal/graph"
	"github.com/dbsmedya/goreach/internal/index"
	"github.com/dbsmedya/goreach/internal/logger"
	"github.com/dbsmedya/goreach/internal/record"
	"github.com/dbsmedya/goreach/internal/store"
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

// loadConfig reads the config file, applies CLI overrides and validates the
// result. A missing default config file is not an error.
func loadConfig(extra config.Overrides) (*config.Config, error) {
	configFile := GetConfigFile()

	var (
		cfg *config.Config
		err error
	)
	if configFileExplicit() {
		cfg, err = config.Load(configFile)
	} else {
		cfg, err = config.LoadOptional(configFile)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Apply CLI overrides
	overrides := GetCLIOverrides()
	extra.DataDir = overrides.DataDir
	extra.LogLevel = overrides.LogLevel
	extra.LogFormat = overrides.LogFormat
	extra.Workers = overrides.Workers
	extra.Format = overrides.OutputFormat
	extra.NoColor = overrides.NoColor
	cfg.ApplyOverrides(extra)

	if err := cfg.Validate(); err != nil {
		return nil, &usageError{err: err}
	}
	return cfg, nil
}

// workspace holds everything loaded for one run.
type workspace struct {
	cfg     *config.Config
	log     *logger.Logger
	snap    *store.Snapshot
	results map[string]*extract.Result
	graph   *graph.Graph
	index   *index.Index
}

// openStore creates the configured record store. The returned close function
// is never nil.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (store.Store, func(), error) {
	schema := record.SchemaFromConfig(cfg.Schema)

	switch cfg.Source.Driver {
	case config.DriverMySQL:
		dbManager := database.NewManager(&cfg.Source.MySQL)
		if err := dbManager.Connect(ctx); err != nil {
			return nil, func() {}, fmt.Errorf("failed to connect to database: %w", err)
		}
		closeFn := func() {
			if err := dbManager.Close(); err != nil {
				log.Warnf("Failed to close database: %v", err)
			}
		}
		st, err := store.NewSQLStore(dbManager.Source, &cfg.Source.MySQL, schema)
		if err != nil {
			closeFn()
			return nil, func() {}, err
		}
		log.Infof("Reading records from MySQL table %s", cfg.Source.MySQL.Table)
		return st, closeFn, nil
	default:
		log.Infof("Reading records from %s", cfg.Source.Directory)
		return store.NewNDJSONStore(cfg.Source.Directory, cfg.Source.Extension, schema, cfg.Processing.MaxLineBytes), func() {}, nil
	}
}

// openWorkspace loads the snapshot, extracts references and prepares the
// type graph and index.
func openWorkspace(ctx context.Context, cfg *config.Config, log *logger.Logger) (*workspace, error) {
	st, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	defer closeStore()

	snap, err := store.LoadSnapshot(ctx, st, cfg.Processing.Workers, log.WithComponent("store"))
	if err != nil {
		return nil, err
	}

	results, err := extract.All(ctx, snap.Collections(), cfg.Processing.Workers)
	if err != nil {
		return nil, fmt.Errorf("failed to extract references: %w", err)
	}

	g, err := graph.BuildFromCollections(snap.Collections(), results)
	if err != nil {
		return nil, fmt.Errorf("failed to build reference graph: %w", err)
	}
	for _, missing := range g.MissingTypes() {
		log.Debugf("Type %s is referenced but has no collection", missing)
	}

	ix := index.New(snap, g)
	if cfg.Processing.WarmIndex {
		if err := ix.Warm(ctx, cfg.Processing.Workers); err != nil {
			return nil, fmt.Errorf("failed to warm index: %w", err)
		}
		log.Debugf("Built %d edge sets", ix.Builds())
	}

	return &workspace{
		cfg:     cfg,
		log:     log,
		snap:    snap,
		results: results,
		graph:   g,
		index:   ix,
	}, nil
}
