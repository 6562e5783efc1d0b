package tablebuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// Processing constants (rows-based)
const (
	// DefaultBatchSize is the default number of rows per INSERT batch
	DefaultBatchSize = 500
	// MinBatchSize is the minimum allowed rows per batch
	MinBatchSize = 1
	// MaxSampleRows caps how many rows the type inference engine examines
	MaxSampleRows = 10000
	// TextLengthBucket is the rounding granularity for NVARCHAR lengths
	TextLengthBucket = 50
	// DefaultMaxTextLength is the NVARCHAR cap beyond which columns become NVARCHAR(MAX)
	DefaultMaxTextLength = 4000
)

// ColumnType represents the inferred SQL column type tag.
type ColumnType int

const (
	// ColumnTypeText represents sized NVARCHAR text
	ColumnTypeText ColumnType = iota
	// ColumnTypeInt represents 32-bit INT
	ColumnTypeInt
	// ColumnTypeBigInt represents 64-bit BIGINT
	ColumnTypeBigInt
	// ColumnTypeFloat represents FLOAT
	ColumnTypeFloat
	// ColumnTypeBit represents BIT (boolean literals)
	ColumnTypeBit
	// ColumnTypeDate represents DATE (ISO date only)
	ColumnTypeDate
	// ColumnTypeDatetime represents DATETIME
	ColumnTypeDatetime
	// ColumnTypeGUID represents UNIQUEIDENTIFIER
	ColumnTypeGUID
)

// String returns the SQL type keyword for the tag. Text columns carry their
// length separately; use ColumnDefinition.SQLType for the full rendering.
func (ct ColumnType) String() string {
	switch ct {
	case ColumnTypeInt:
		return "INT"
	case ColumnTypeBigInt:
		return "BIGINT"
	case ColumnTypeFloat:
		return "FLOAT"
	case ColumnTypeBit:
		return "BIT"
	case ColumnTypeDate:
		return "DATE"
	case ColumnTypeDatetime:
		return "DATETIME"
	case ColumnTypeGUID:
		return "UNIQUEIDENTIFIER"
	case ColumnTypeText:
		return "NVARCHAR"
	default:
		return "NVARCHAR"
	}
}

// quoted reports whether values of this type are emitted as quoted string
// literals in INSERT statements. Numeric family types are unquoted.
func (ct ColumnType) quoted() bool {
	switch ct {
	case ColumnTypeInt, ColumnTypeBigInt, ColumnTypeFloat, ColumnTypeBit:
		return false
	default:
		return true
	}
}

// KeyType is the primary-key generation override for a column.
type KeyType int

const (
	// KeyTypeNone means the column value comes from source data
	KeyTypeNone KeyType = iota
	// KeyTypeIdentity emits an auto-incrementing INT IDENTITY(1,1) column
	KeyTypeIdentity
	// KeyTypeUniqueIdentifier emits a generator-populated UNIQUEIDENTIFIER column
	KeyTypeUniqueIdentifier
)

// String returns the SQL rendering of the key type override.
func (kt KeyType) String() string {
	switch kt {
	case KeyTypeIdentity:
		return "INT IDENTITY(1,1)"
	case KeyTypeUniqueIdentifier:
		return "UNIQUEIDENTIFIER"
	default:
		return ""
	}
}

// NamingConvention selects the display-name transform applied to columns.
type NamingConvention int

const (
	// ConventionUnchanged leaves names as-is
	ConventionUnchanged NamingConvention = iota
	// ConventionSnakeCase joins lowered tokens with underscores
	ConventionSnakeCase
	// ConventionCamelCase capitalizes and concatenates tokens
	ConventionCamelCase
	// ConventionLowercase concatenates lowered tokens
	ConventionLowercase
	// ConventionUppercase concatenates uppered tokens
	ConventionUppercase
)

// String returns the convention name as shown in settings and the CLI.
func (nc NamingConvention) String() string {
	switch nc {
	case ConventionSnakeCase:
		return "snake_case"
	case ConventionCamelCase:
		return "CamelCase"
	case ConventionLowercase:
		return "lowercase"
	case ConventionUppercase:
		return "UPPERCASE"
	default:
		return "unchanged"
	}
}

// ParseNamingConvention parses a convention name. Unknown names map to
// ConventionUnchanged with an error.
func ParseNamingConvention(s string) (NamingConvention, error) {
	switch s {
	case "snake_case":
		return ConventionSnakeCase, nil
	case "CamelCase":
		return ConventionCamelCase, nil
	case "lowercase":
		return ConventionLowercase, nil
	case "UPPERCASE":
		return ConventionUppercase, nil
	case "", "unchanged":
		return ConventionUnchanged, nil
	default:
		return ConventionUnchanged, fmt.Errorf("unknown naming convention: %q", s)
	}
}

// RaggedPolicy selects how rows with a mismatched field count are handled
// during INSERT generation.
type RaggedPolicy int

const (
	// RaggedSkip drops ragged rows and reports their count (default)
	RaggedSkip RaggedPolicy = iota
	// RaggedPad pads short rows with NULL for missing trailing fields;
	// rows with extra fields are still skipped
	RaggedPad
)

// String returns the policy name as used in settings.
func (rp RaggedPolicy) String() string {
	if rp == RaggedPad {
		return "pad"
	}
	return "skip"
}

// ParseRaggedPolicy parses a ragged-row policy name.
func ParseRaggedPolicy(s string) (RaggedPolicy, error) {
	switch s {
	case "", "skip":
		return RaggedSkip, nil
	case "pad":
		return RaggedPad, nil
	default:
		return RaggedSkip, fmt.Errorf("unknown ragged policy: %q", s)
	}
}

// Record represents one row of a source file as a slice of raw field strings.
type Record []string

// TableName represents a table name with validation.
type TableName struct {
	value string
}

// NewTableName creates a new TableName. Empty names fall back to "table".
func NewTableName(name string) TableName {
	if strings.TrimSpace(name) == "" {
		return TableName{value: "table"}
	}
	return TableName{value: strings.TrimSpace(name)}
}

// String returns the string representation of TableName.
func (tn TableName) String() string {
	return tn.value
}

// Equal compares two table names.
func (tn TableName) Equal(other TableName) bool {
	return tn.value == other.value
}

// Sanitize returns a version of the table name that is a valid SQL identifier.
func (tn TableName) Sanitize() TableName {
	return TableName{value: tn.sanitizeString()}
}

// sanitizeString removes invalid characters from table names
func (tn TableName) sanitizeString() string {
	result := strings.ReplaceAll(tn.value, " ", "_")
	result = strings.ReplaceAll(result, "-", "_")
	result = strings.ReplaceAll(result, ".", "_")

	var sanitized strings.Builder
	for _, r := range result {
		if (r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') ||
			r == '_' {
			sanitized.WriteRune(r)
		}
	}

	finalResult := sanitized.String()

	// Identifiers cannot start with a digit
	if len(finalResult) > 0 && finalResult[0] >= '0' && finalResult[0] <= '9' {
		finalResult = "table_" + finalResult
	}

	if finalResult == "" {
		finalResult = "table"
	}
	return finalResult
}

// BatchSize represents an INSERT batch size with validation.
type BatchSize int

// NewBatchSize creates a new BatchSize. Sizes below MinBatchSize fall back
// to DefaultBatchSize.
func NewBatchSize(size int) BatchSize {
	if size < MinBatchSize {
		return BatchSize(DefaultBatchSize)
	}
	return BatchSize(size)
}

// Int returns the int value of BatchSize.
func (bs BatchSize) Int() int {
	return int(bs)
}

// String returns the string representation of BatchSize.
func (bs BatchSize) String() string {
	return strconv.Itoa(int(bs))
}

// IsValid checks if the batch size is valid.
func (bs BatchSize) IsValid() bool {
	return int(bs) >= MinBatchSize
}

// validateColumnNames checks for duplicate column names and returns an error
// if found. Comparison is case-sensitive after trimming whitespace.
func validateColumnNames(columns []string) error {
	columnsSeen := make(map[string]bool)
	for _, col := range columns {
		trimmedCol := strings.TrimSpace(col)
		if columnsSeen[trimmedCol] {
			return fmt.Errorf("%w: %s", errDuplicateColumnName, col)
		}
		columnsSeen[trimmedCol] = true
	}
	return nil
}
