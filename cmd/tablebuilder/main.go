// Command tablebuilder converts delimited data files into T-SQL scripts.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jackworthen/tablebuilder"
)

var version = "dev"

type rootOptions struct {
	configPath string
	verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "tablebuilder",
		Short:         "Convert delimited data files into T-SQL scripts",
		Long:          "tablebuilder inspects delimited, XLSX, and Parquet files, infers SQL column types,\nand generates CREATE TABLE and batched INSERT scripts.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a YAML settings file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newGenerateCmd(opts))
	cmd.AddCommand(newInspectCmd(opts))
	return cmd
}

// setup loads settings and builds the logger shared by all subcommands.
func (o *rootOptions) setup() (tablebuilder.Settings, *zap.Logger, error) {
	settings, err := tablebuilder.LoadSettings(o.configPath)
	if err != nil {
		return settings, nil, err
	}

	cfg := zap.NewProductionConfig()
	if o.verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return settings, nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return settings, logger, nil
}

// parseDelimiter converts a flag value into a delimiter override rune.
// Escaped tab ("\t") is accepted since shells make literal tabs awkward.
func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case "\\t", "tab":
		return '\t', nil
	}
	runes := []rune(s)
	if len(runes) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	return runes[0], nil
}
