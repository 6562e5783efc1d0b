// Package tablebuilder converts delimited or semi-structured data files into
// SQL schema-definition and data-load scripts targeting the T-SQL dialect.
//
// tablebuilder reads CSV-like files (plus XLSX and Parquet), detects the
// field delimiter and header row, infers a SQL type for every column from a
// configurable row sample, and emits a CREATE TABLE script and a batched
// INSERT script as plain text files. It never opens a live database
// connection; the output is meant to be reviewed and executed by the user.
//
// # Features
//
//   - Delimiter and header detection with a low-confidence fallback
//   - Chunked reading with full-file caching for small files and streaming
//     re-reads for large ones
//   - Statistical column-type inference (INT, BIGINT, FLOAT, BIT, DATE,
//     DATETIME, UNIQUEIDENTIFIER, sized NVARCHAR)
//   - User-editable column model: rename, retype, primary keys, generated
//     key columns, naming conventions
//   - Batched INSERT generation with TRUNCATE support and a configurable
//     ragged-row policy
//   - Automatic handling of compressed inputs (gzip, bzip2, xz, zstandard)
//
// # Basic Usage
//
//	settings := tablebuilder.DefaultSettings()
//	pipeline := tablebuilder.NewPipeline(settings, logger)
//
//	summary, err := pipeline.Run(ctx, tablebuilder.RunRequest{
//		SourcePath: "users.csv",
//		OutputDir:  "./scripts",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// For headless column editing before generation, build the model first:
//
//	desc, _ := tablebuilder.DescribeSource("users.csv", 0)
//	reader, _ := tablebuilder.OpenSource(desc, settings.LargeFileThresholdMB)
//	defer reader.Close()
//
//	inferred, _ := tablebuilder.InferColumns(reader, tablebuilder.InferenceOptions{
//		SamplePercent: settings.SamplePercent,
//	})
//	model := tablebuilder.NewColumnModel(inferred, settings.MaxAdditionalColumns)
//	model.SetKeyType("id", tablebuilder.KeyTypeIdentity)
//
// # Table Naming
//
// Table names default to the source file base name: "users.csv" becomes
// [dbo].[users], "data.tsv.gz" becomes [dbo].[data]. Names are sanitized to
// valid SQL identifiers.
package tablebuilder
