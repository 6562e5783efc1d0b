package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackworthen/tablebuilder"
)

type inspectOptions struct {
	delimiter string
	rows      int
}

func newInspectCmd(root *rootOptions) *cobra.Command {
	opts := &inspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Detect a file's shape and show inferred column types",
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

			pipeline := tablebuilder.NewPipeline(settings, logger)
			result, err := pipeline.Inspect(cmd.Context(), args[0], delim)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			desc := result.Descriptor
			fmt.Fprintf(out, "format:    %s\n", desc.Format)
			if desc.Format == tablebuilder.FormatDelimited {
				fmt.Fprintf(out, "delimiter: %q\n", desc.Delimiter)
				if desc.LowConfidence {
					fmt.Fprintln(out, "warning:   delimiter detection is low confidence; consider --delimiter")
				}
			}
			fmt.Fprintf(out, "header:    %v\n", desc.HeaderPresent)
			fmt.Fprintf(out, "rows:      %d\n", desc.RowCount)
			fmt.Fprintln(out)

			fmt.Fprintln(out, "columns:")
			for _, col := range result.Columns {
				def := tablebuilder.ColumnDefinition{
					Name:      col.Name,
					Type:      col.Type,
					Length:    col.Length,
					LargeText: col.LargeText,
				}
				nullability := "NOT NULL"
				if col.Nullable {
					nullability = "NULL"
				}
				fmt.Fprintf(out, "  %-30s %s %s\n", col.Name, def.SQLType(), nullability)
			}

			// The preview prints when asked for explicitly, or by default
			// when auto_preview is enabled in the settings
			showPreview := opts.rows > 0 && (settings.AutoPreview || cmd.Flags().Changed("rows"))
			if showPreview {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "preview:")
				for i, row := range result.Preview {
					if i >= opts.rows {
						break
					}
					marker := ""
					if row.Ragged {
						marker = " (ragged)"
					}
					fmt.Fprintf(out, "  %s%s\n", strings.Join(row.Fields, " | "), marker)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.delimiter, "delimiter", "d", "", "force the field delimiter instead of detecting it")
	cmd.Flags().IntVarP(&opts.rows, "rows", "n", 10, "maximum preview rows to print (printed without this flag only when auto_preview is set)")
	return cmd
}
