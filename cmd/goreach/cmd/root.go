package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/goreach/internal/record"
	"github.com/dbsmedya/goreach/internal/resolve"
	"github.com/dbsmedya/goreach/internal/store"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// Exit codes returned by Execute.
const (
	ExitOK         = 0
	ExitError      = 1
	ExitUsage      = 2
	ExitInput      = 3
	ExitResolution = 4
)

// CLI flags that override config file values
var (
	cfgFile      string
	dataDir      string
	logLevel     string
	logFormat    string
	workers      int
	outputFormat string
	noColor      bool
)

var rootCmd = &cobra.Command{
	Use:   "goreach",
	Short: "Reference reachability counter for FHIR-style NDJSON exports",
	Long: `A CLI tool that counts, per resource type, the records linked to one
start record directly or transitively through reference fields.

Features:
  - Reference discovery at any nesting depth under "reference" fields
  - Full fixed-point closure with references treated as undirected
  - NDJSON directory or MySQL table as record source
  - Table, JSON or YAML reports`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          rootArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// rootArgs rejects anything that did not resolve to a subcommand.
func rootArgs(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return nil
	}
	msg := fmt.Sprintf("unknown command %q for %q", args[0], cmd.CommandPath())
	if suggestions := cmd.SuggestionsFor(args[0]); len(suggestions) > 0 {
		msg += "\n\nDid you mean this?\n\t" + strings.Join(suggestions, "\n\t")
	}
	return &usageError{err: errors.New(msg)}
}

// usageError marks errors caused by invalid command-line input.
type usageError struct {
	err error
}

func (e *usageError) Error() string {
	return e.err.Error()
}

func (e *usageError) Unwrap() error {
	return e.err
}

// Execute runs the root command and exits with a status matching the error kind.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitCode(err))
	}
}

// ExitCode maps an error returned by a command to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		usage      *usageError
		queryUsage *resolve.UsageError
		resolution *resolve.ResolutionError
		input      *store.InputError
		parse      *record.ParseError
	)
	switch {
	case errors.As(err, &usage), errors.As(err, &queryUsage):
		return ExitUsage
	case errors.As(err, &resolution):
		return ExitResolution
	case errors.As(err, &input), errors.As(err, &parse):
		return ExitInput
	default:
		return ExitError
	}
}

func init() {
	// Config file flag
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "goreach.yaml",
		"Path to configuration file (optional unless set explicitly)")

	// Source overrides
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "",
		"Override NDJSON data directory")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	// Processing overrides
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0,
		"Override number of concurrent workers")

	// Output overrides
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "",
		"Override output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"Disable colored table output")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// configFileExplicit reports whether --config was given on the command line.
func configFileExplicit() bool {
	f := rootCmd.PersistentFlags().Lookup("config")
	return f != nil && f.Changed
}

// CLIOverrides contains flag values that override config file settings
type CLIOverrides struct {
	DataDir      string
	LogLevel     string
	LogFormat    string
	Workers      int
	OutputFormat string
	NoColor      bool
}

// GetCLIOverrides returns the CLI flag override values
func GetCLIOverrides() CLIOverrides {
	return CLIOverrides{
		DataDir:      dataDir,
		LogLevel:     logLevel,
		LogFormat:    logFormat,
		Workers:      workers,
		OutputFormat: outputFormat,
		NoColor:      noColor,
	}
}
