package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jackworthen/tablebuilder"
)

type generateOptions struct {
	outputDir string
	table     string
	delimiter string
	truncate  bool
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate <file>",
		Short: "Generate CREATE TABLE and INSERT scripts for a data file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, logger, err := root.setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			delim, err := parseDelimiter(opts.delimiter)
			if err != nil {
				return err
			}

			req := tablebuilder.RunRequest{
				SourcePath:        args[0],
				OutputDir:         opts.outputDir,
				DelimiterOverride: delim,
				Truncate:          opts.truncate,
			}
			if opts.table != "" {
				req.Table = tablebuilder.NewTableName(opts.table)
			}

			pipeline := tablebuilder.NewPipeline(settings, logger)
			summary, err := pipeline.Run(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "status: %s\n", summary.Status)
			fmt.Fprintf(out, "rows:   %d written, %d skipped (%d total)\n",
				summary.RowsWritten, summary.RowsSkipped, summary.TotalRows)
			for _, f := range summary.Outputs {
				marker := ""
				if f.Incomplete {
					marker = " (incomplete)"
				}
				fmt.Fprintf(out, "wrote:  %s%s\n", f.Path, marker)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.outputDir, "output", "o", ".", "output directory for generated scripts")
	cmd.Flags().StringVarP(&opts.table, "table", "t", "", "table name (default: derived from the file name)")
	cmd.Flags().StringVarP(&opts.delimiter, "delimiter", "d", "", "force the field delimiter instead of detecting it")
	cmd.Flags().BoolVar(&opts.truncate, "truncate", false, "prepend TRUNCATE TABLE to the INSERT script")
	return cmd
}
