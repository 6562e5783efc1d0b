package tablebuilder

import (
	"fmt"
	"strings"
)

// TableConfig names the output table and selects ragged-row handling for
// INSERT generation.
type TableConfig struct {
	// Database is the optional USE target; empty omits the prologue
	Database string
	// Schema is the table schema, typically dbo
	Schema string
	// Table is the output table name
	Table TableName
	// RaggedPolicy controls rows whose field count mismatches the schema
	RaggedPolicy RaggedPolicy
}

// qualifiedName renders [schema].[table].
func (tc TableConfig) qualifiedName() string {
	schema := tc.Schema
	if schema == "" {
		schema = "dbo"
	}
	return fmt.Sprintf("%s.%s", bracket(schema), bracket(tc.Table.Sanitize().String()))
}

// bracket wraps an identifier in square brackets, doubling any closing
// bracket inside it.
func bracket(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

// escapeString doubles single quotes for a T-SQL string literal.
func escapeString(value string) string {
	return strings.ReplaceAll(value, "'", "''")
}

// usePrologue renders the USE statement for a database, or nothing.
func usePrologue(database string) string {
	if database == "" {
		return ""
	}
	return fmt.Sprintf("USE %s;\nGO\n\n", bracket(database))
}

// GenerateCreate renders the CREATE TABLE script for the column definitions.
// Primary key columns are collected into a named table constraint.
func GenerateCreate(columns []ColumnDefinition, cfg TableConfig) (string, error) {
	if len(columns) == 0 {
		return "", fmt.Errorf("%w: no columns defined", ErrSchemaConflict)
	}

	var sb strings.Builder
	sb.WriteString(usePrologue(cfg.Database))
	sb.WriteString(fmt.Sprintf("CREATE TABLE %s (\n", cfg.qualifiedName()))

	lines := make([]string, 0, len(columns)+1)
	pk := make([]string, 0, 1)
	for _, col := range columns {
		nullability := "NULL"
		if !col.Nullable || col.PrimaryKey {
			nullability = "NOT NULL"
		}
		lines = append(lines, fmt.Sprintf("    %s %s %s", bracket(col.Name), col.SQLType(), nullability))
		if col.PrimaryKey {
			pk = append(pk, bracket(col.Name))
		}
	}
	if len(pk) > 0 {
		constraint := fmt.Sprintf("    CONSTRAINT %s PRIMARY KEY (%s)",
			bracket("PK_"+cfg.Table.Sanitize().String()), strings.Join(pk, ", "))
		lines = append(lines, constraint)
	}

	sb.WriteString(strings.Join(lines, ",\n"))
	sb.WriteString("\n);\nGO\n")
	return sb.String(), nil
}

// InsertStats summarizes an INSERT generation pass.
type InsertStats struct {
	// RowsWritten is the number of source rows emitted as VALUES tuples
	RowsWritten int64
	// RowsSkipped is the number of ragged rows dropped
	RowsSkipped int64
	// Batches is the number of INSERT statements emitted
	Batches int64
}

// insertPlan precomputes which columns appear in the INSERT column list.
// Identity columns are generated by the database and never listed.
type insertPlan struct {
	columns []ColumnDefinition
	header  string
}

func newInsertPlan(columns []ColumnDefinition, cfg TableConfig) insertPlan {
	listed := make([]ColumnDefinition, 0, len(columns))
	names := make([]string, 0, len(columns))
	for _, col := range columns {
		if col.KeyType == KeyTypeIdentity {
			continue
		}
		listed = append(listed, col)
		names = append(names, bracket(col.Name))
	}
	header := fmt.Sprintf("INSERT INTO %s (%s)\nVALUES\n", cfg.qualifiedName(), strings.Join(names, ", "))
	return insertPlan{columns: listed, header: header}
}

// renderValue renders one field as a T-SQL literal for its column. Blank
// fields become NULL, except on generated unique-identifier keys where the
// database supplies NEWID().
func renderValue(col ColumnDefinition, field string) string {
	trimmed := strings.TrimSpace(field)
	if trimmed == "" {
		if col.KeyType == KeyTypeUniqueIdentifier {
			return "NEWID()"
		}
		return "NULL"
	}

	switch col.Type {
	case ColumnTypeBit:
		if b, ok := booleanLiterals[strings.ToLower(trimmed)]; ok {
			if b {
				return "1"
			}
			return "0"
		}
		return "NULL"
	case ColumnTypeInt, ColumnTypeBigInt, ColumnTypeFloat:
		return trimmed
	case ColumnTypeText:
		return "N'" + escapeString(field) + "'"
	default:
		// DATE, DATETIME, UNIQUEIDENTIFIER travel as quoted literals
		return "'" + escapeString(trimmed) + "'"
	}
}

// renderRow renders one source row as a VALUES tuple, or "" when the row
// must be skipped under the ragged policy. Short rows are padded with blanks
// under RaggedPad; rows with extra fields are always skipped.
func (p insertPlan) renderRow(row Row, policy RaggedPolicy, want int) string {
	fields := row.Fields
	if row.Ragged {
		if policy != RaggedPad || len(fields) > want {
			return ""
		}
	}

	values := make([]string, len(p.columns))
	for i, col := range p.columns {
		field := ""
		if col.SourceOrdinal >= 0 && col.SourceOrdinal < len(fields) {
			field = fields[col.SourceOrdinal]
		}
		values[i] = renderValue(col, field)
	}
	return "    (" + strings.Join(values, ", ") + ")"
}

// GenerateInsert walks the batch plan for the source and emits one INSERT
// statement per span, passing each statement and the number of rows it
// carries to emit (prologue and TRUNCATE emissions carry zero rows). Spans
// align to source rows, so a span thinned by skipped ragged rows yields a
// smaller statement, and a fully skipped span yields none. The reader is
// rewound first; useTruncate prepends a TRUNCATE before the first batch.
func GenerateInsert(r *SourceReader, columns []ColumnDefinition, cfg TableConfig, batchSize int, useTruncate bool, emit func(stmt string, rows int) error) (*InsertStats, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: no columns defined", ErrSchemaConflict)
	}
	size := NewBatchSize(batchSize).Int()
	plan := newInsertPlan(columns, cfg)
	want := len(r.Descriptor().Columns)

	total, err := r.RowCount()
	if err != nil {
		return nil, err
	}
	spans := PlanBatches(total, size)

	if err := r.Reset(); err != nil {
		return nil, err
	}

	if prologue := usePrologue(cfg.Database); prologue != "" {
		if err := emit(prologue, 0); err != nil {
			return nil, err
		}
	}
	if useTruncate {
		stmt := fmt.Sprintf("TRUNCATE TABLE %s;\nGO\n\n", cfg.qualifiedName())
		if err := emit(stmt, 0); err != nil {
			return nil, err
		}
	}

	stats := &InsertStats{}
	for _, span := range spans {
		batch, err := r.ReadBatch(int(span.Count))
		if err != nil {
			return nil, err
		}

		tuples := make([]string, 0, len(batch.Rows))
		for _, row := range batch.Rows {
			tuple := plan.renderRow(row, cfg.RaggedPolicy, want)
			if tuple == "" {
				stats.RowsSkipped++
				continue
			}
			tuples = append(tuples, tuple)
		}
		if len(tuples) == 0 {
			continue
		}

		stmt := plan.header + strings.Join(tuples, ",\n") + ";\nGO\n\n"
		stats.RowsWritten += int64(len(tuples))
		stats.Batches++
		if err := emit(stmt, len(tuples)); err != nil {
			return nil, err
		}
	}
	return stats, nil
}
