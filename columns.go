package tablebuilder

import (
	"fmt"
	"strings"
)

// ColumnDefinition is one column of the output table. Inferred columns keep
// their inference results so user edits can be reverted; user-added columns
// have no source field and emit NULL (or NEWID for generated keys).
type ColumnDefinition struct {
	// Name is the emitted column name, after any naming convention
	Name string
	// Ordinal is the column's position in the output table
	Ordinal int
	// SourceOrdinal is the source field index this column reads, -1 when
	// the column was added by the user
	SourceOrdinal int
	// Type is the current SQL type tag
	Type ColumnType
	// Length is the NVARCHAR length for text columns
	Length int
	// LargeText marks text columns rendered as NVARCHAR(MAX)
	LargeText bool
	// Nullable reports whether blanks were observed in the sample
	Nullable bool
	// PrimaryKey marks membership in the PRIMARY KEY constraint
	PrimaryKey bool
	// KeyType is the generated-key override, if any
	KeyType KeyType
	// UserAdded marks columns created after inference
	UserAdded bool

	baseName       string
	inferredType   ColumnType
	inferredLength int
	inferredLarge  bool
}

// SQLType renders the column's full SQL type, honoring generated-key
// overrides and the NVARCHAR(MAX) escape hatch.
func (c *ColumnDefinition) SQLType() string {
	if c.KeyType != KeyTypeNone {
		return c.KeyType.String()
	}
	if c.Type == ColumnTypeText {
		if c.LargeText {
			return "NVARCHAR(MAX)"
		}
		length := c.Length
		if length < TextLengthBucket {
			length = TextLengthBucket
		}
		return fmt.Sprintf("NVARCHAR(%d)", length)
	}
	return c.Type.String()
}

// generated reports whether the column's values are produced by the database
// rather than read from source data.
func (c *ColumnDefinition) generated() bool {
	return c.KeyType != KeyTypeNone
}

// ColumnModel is the editable schema between inference and script
// generation. It is not safe for concurrent use.
type ColumnModel struct {
	columns       []*ColumnDefinition
	maxAdditional int
	added         int
}

// NewColumnModel builds a model from inference results. maxAdditional caps
// how many user columns AddColumn will accept; non-positive means none.
func NewColumnModel(inferred []InferredColumn, maxAdditional int) *ColumnModel {
	m := &ColumnModel{maxAdditional: maxAdditional}
	for i, col := range inferred {
		m.columns = append(m.columns, &ColumnDefinition{
			Name:           col.Name,
			Ordinal:        i,
			SourceOrdinal:  col.Ordinal,
			Type:           col.Type,
			Length:         col.Length,
			LargeText:      col.LargeText,
			Nullable:       col.Nullable,
			baseName:       col.Name,
			inferredType:   col.Type,
			inferredLength: col.Length,
			inferredLarge:  col.LargeText,
		})
	}
	return m
}

// Columns returns a snapshot of the current definitions in ordinal order.
func (m *ColumnModel) Columns() []ColumnDefinition {
	out := make([]ColumnDefinition, len(m.columns))
	for i, c := range m.columns {
		out[i] = *c
	}
	return out
}

// Len returns the number of columns.
func (m *ColumnModel) Len() int {
	return len(m.columns)
}

func (m *ColumnModel) find(name string) (*ColumnDefinition, error) {
	for _, c := range m.columns {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
}

// AddColumn appends a user-defined column with no source field. It defaults
// to nullable NVARCHAR(50); the caller can retype it afterwards.
func (m *ColumnModel) AddColumn(name string) (*ColumnDefinition, error) {
	if m.added >= m.maxAdditional {
		return nil, fmt.Errorf("%w: at most %d additional columns", ErrTooManyColumns, m.maxAdditional)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty column name", ErrSchemaConflict)
	}
	if c, _ := m.find(name); c != nil {
		return nil, fmt.Errorf("%w: %s", errDuplicateColumnName, name)
	}

	col := &ColumnDefinition{
		Name:           name,
		Ordinal:        len(m.columns),
		SourceOrdinal:  -1,
		Type:           ColumnTypeText,
		Length:         TextLengthBucket,
		Nullable:       true,
		UserAdded:      true,
		baseName:       name,
		inferredType:   ColumnTypeText,
		inferredLength: TextLengthBucket,
	}
	m.columns = append(m.columns, col)
	m.added++
	return col, nil
}

// RemoveColumn deletes a user-added column. Inferred columns cannot be
// removed, only retyped or renamed.
func (m *ColumnModel) RemoveColumn(name string) error {
	for i, c := range m.columns {
		if c.Name != name {
			continue
		}
		if !c.UserAdded {
			return fmt.Errorf("%w: %s", ErrColumnNotRemovable, name)
		}
		m.columns = append(m.columns[:i], m.columns[i+1:]...)
		m.added--
		for j, rest := range m.columns {
			rest.Ordinal = j
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrColumnNotFound, name)
}

// SetType overrides a column's type. Switching to text keeps the inferred
// length when one exists.
func (m *ColumnModel) SetType(name string, t ColumnType) error {
	c, err := m.find(name)
	if err != nil {
		return err
	}
	c.Type = t
	if t == ColumnTypeText && c.Length < TextLengthBucket {
		c.Length = TextLengthBucket
	}
	return nil
}

// SetLength overrides the NVARCHAR length of a text column.
func (m *ColumnModel) SetLength(name string, length int) error {
	c, err := m.find(name)
	if err != nil {
		return err
	}
	if c.Type != ColumnTypeText {
		return fmt.Errorf("%w: %s is not a text column", ErrSchemaConflict, name)
	}
	if length < TextLengthBucket {
		length = TextLengthBucket
	}
	c.Length = length
	c.LargeText = false
	return nil
}

// SetName renames a column. The new name becomes the base for later naming
// convention passes.
func (m *ColumnModel) SetName(name, newName string) error {
	c, err := m.find(name)
	if err != nil {
		return err
	}
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return fmt.Errorf("%w: empty column name", ErrSchemaConflict)
	}
	if other, _ := m.find(newName); other != nil && other != c {
		return fmt.Errorf("%w: %s", errDuplicateColumnName, newName)
	}
	c.Name = newName
	c.baseName = newName
	return nil
}

// TogglePrimaryKey flips a column's membership in the PRIMARY KEY constraint.
func (m *ColumnModel) TogglePrimaryKey(name string) error {
	c, err := m.find(name)
	if err != nil {
		return err
	}
	c.PrimaryKey = !c.PrimaryKey
	if c.PrimaryKey {
		c.Nullable = false
	}
	return nil
}

// SetKeyType applies a generated-key override. At most one column may carry
// a generated key; assigning one clears any previous holder.
func (m *ColumnModel) SetKeyType(name string, kt KeyType) error {
	c, err := m.find(name)
	if err != nil {
		return err
	}
	if kt != KeyTypeNone {
		for _, other := range m.columns {
			if other != c && other.KeyType != KeyTypeNone {
				other.KeyType = KeyTypeNone
			}
		}
		c.PrimaryKey = true
		c.Nullable = false
	}
	c.KeyType = kt
	return nil
}

// KeyTypeChoices returns the generated-key overrides that make sense for a
// column: identity for integer columns, unique identifier for GUID and text
// columns. User-added columns get every choice.
func KeyTypeChoices(c ColumnDefinition) []KeyType {
	if c.UserAdded {
		return []KeyType{KeyTypeNone, KeyTypeIdentity, KeyTypeUniqueIdentifier}
	}
	choices := []KeyType{KeyTypeNone}
	switch c.Type {
	case ColumnTypeInt, ColumnTypeBigInt:
		choices = append(choices, KeyTypeIdentity)
	case ColumnTypeGUID, ColumnTypeText:
		choices = append(choices, KeyTypeUniqueIdentifier)
	}
	return choices
}

// ApplyConvention rewrites every column name with the given convention,
// starting from each column's base name. Collisions produced by the
// transform get _2, _3 suffixes in ordinal order; the first occurrence
// keeps the unsuffixed name.
func (m *ColumnModel) ApplyConvention(nc NamingConvention) {
	seen := make(map[string]int, len(m.columns))
	for _, c := range m.columns {
		name := ApplyConvention(c.baseName, nc)
		n := seen[name]
		seen[name] = n + 1
		if n > 0 {
			suffixed := fmt.Sprintf("%s_%d", name, n+1)
			for seen[suffixed] > 0 {
				n++
				suffixed = fmt.Sprintf("%s_%d", name, n+1)
			}
			seen[suffixed] = 1
			name = suffixed
		}
		c.Name = name
	}
}

// ResetTypes reverts every inferred column to its inference result. Types
// chosen for user-added columns are left alone.
func (m *ColumnModel) ResetTypes() {
	for _, c := range m.columns {
		if c.UserAdded {
			continue
		}
		c.Type = c.inferredType
		c.Length = c.inferredLength
		c.LargeText = c.inferredLarge
	}
}

// CanResetTypes reports whether any inferred column currently differs from
// its inference result.
func (m *ColumnModel) CanResetTypes() bool {
	for _, c := range m.columns {
		if c.UserAdded {
			continue
		}
		if c.Type != c.inferredType || c.Length != c.inferredLength || c.LargeText != c.inferredLarge {
			return true
		}
	}
	return false
}

// Validate checks the model's invariants before generation: at least one
// column, unique non-empty names, and at most one generated key.
func (m *ColumnModel) Validate() error {
	if len(m.columns) == 0 {
		return fmt.Errorf("%w: no columns defined", ErrSchemaConflict)
	}

	names := make([]string, len(m.columns))
	generatedKeys := 0
	for i, c := range m.columns {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("%w: column %d has an empty name", ErrSchemaConflict, i)
		}
		names[i] = c.Name
		if c.generated() {
			generatedKeys++
		}
	}
	if err := validateColumnNames(names); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaConflict, err)
	}
	if generatedKeys > 1 {
		return fmt.Errorf("%w: more than one generated key column", ErrSchemaConflict)
	}
	return nil
}
