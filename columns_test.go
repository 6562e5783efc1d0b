package tablebuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testModel(t *testing.T, maxAdditional int) *ColumnModel {
	t.Helper()
	inferred := []InferredColumn{
		{Name: "id", Ordinal: 0, Type: ColumnTypeInt},
		{Name: "User Name", Ordinal: 1, Type: ColumnTypeText, Length: 50, Nullable: true},
		{Name: "joined", Ordinal: 2, Type: ColumnTypeDate},
	}
	return NewColumnModel(inferred, maxAdditional)
}

func TestColumnModelAddRemove(t *testing.T) {
	t.Parallel()

	m := testModel(t, 1)

	col, err := m.AddColumn("created_by")
	require.NoError(t, err)
	assert.True(t, col.UserAdded)
	assert.Equal(t, -1, col.SourceOrdinal)
	assert.Equal(t, ColumnTypeText, col.Type)
	assert.Equal(t, 4, m.Len())

	_, err = m.AddColumn("another")
	assert.ErrorIs(t, err, ErrTooManyColumns)

	// Inferred columns cannot be removed
	err = m.RemoveColumn("id")
	assert.ErrorIs(t, err, ErrColumnNotRemovable)

	require.NoError(t, m.RemoveColumn("created_by"))
	assert.Equal(t, 3, m.Len())

	// Removal frees the additional-column slot
	_, err = m.AddColumn("audit_note")
	assert.NoError(t, err)

	err = m.RemoveColumn("ghost")
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestColumnModelAddColumnDuplicate(t *testing.T) {
	t.Parallel()

	m := testModel(t, 2)
	_, err := m.AddColumn("id")
	assert.ErrorIs(t, err, errDuplicateColumnName)
}

func TestColumnModelSetType(t *testing.T) {
	t.Parallel()

	m := testModel(t, 0)
	require.NoError(t, m.SetType("id", ColumnTypeBigInt))

	cols := m.Columns()
	assert.Equal(t, ColumnTypeBigInt, cols[0].Type)

	assert.ErrorIs(t, m.SetType("ghost", ColumnTypeInt), ErrColumnNotFound)
}

func TestColumnModelResetTypes(t *testing.T) {
	t.Parallel()

	m := testModel(t, 1)
	assert.False(t, m.CanResetTypes())

	require.NoError(t, m.SetType("id", ColumnTypeText))
	assert.True(t, m.CanResetTypes())

	// User-added columns keep their chosen type across resets
	_, err := m.AddColumn("note")
	require.NoError(t, err)
	require.NoError(t, m.SetType("note", ColumnTypeDatetime))

	m.ResetTypes()
	cols := m.Columns()
	assert.Equal(t, ColumnTypeInt, cols[0].Type)
	assert.Equal(t, ColumnTypeDatetime, cols[3].Type)
	assert.False(t, m.CanResetTypes())
}

func TestColumnModelKeyTypes(t *testing.T) {
	t.Parallel()

	m := testModel(t, 0)
	require.NoError(t, m.SetKeyType("id", KeyTypeIdentity))

	cols := m.Columns()
	assert.Equal(t, KeyTypeIdentity, cols[0].KeyType)
	assert.True(t, cols[0].PrimaryKey)
	assert.Equal(t, "INT IDENTITY(1,1)", cols[0].SQLType())

	// Only one generated key may exist; reassignment clears the old holder
	require.NoError(t, m.SetKeyType("User Name", KeyTypeUniqueIdentifier))
	cols = m.Columns()
	assert.Equal(t, KeyTypeNone, cols[0].KeyType)
	assert.Equal(t, KeyTypeUniqueIdentifier, cols[1].KeyType)

	require.NoError(t, m.Validate())
}

func TestKeyTypeChoices(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		[]KeyType{KeyTypeNone, KeyTypeIdentity},
		KeyTypeChoices(ColumnDefinition{Type: ColumnTypeInt}))
	assert.Equal(t,
		[]KeyType{KeyTypeNone, KeyTypeUniqueIdentifier},
		KeyTypeChoices(ColumnDefinition{Type: ColumnTypeGUID}))
	assert.Equal(t,
		[]KeyType{KeyTypeNone},
		KeyTypeChoices(ColumnDefinition{Type: ColumnTypeDate}))
	assert.Equal(t,
		[]KeyType{KeyTypeNone, KeyTypeIdentity, KeyTypeUniqueIdentifier},
		KeyTypeChoices(ColumnDefinition{Type: ColumnTypeDate, UserAdded: true}))
}

func TestColumnModelApplyConvention(t *testing.T) {
	t.Parallel()

	inferred := []InferredColumn{
		{Name: "User Name", Ordinal: 0, Type: ColumnTypeText, Length: 50},
		{Name: "user_name", Ordinal: 1, Type: ColumnTypeText, Length: 50},
		{Name: "userName", Ordinal: 2, Type: ColumnTypeText, Length: 50},
	}
	m := NewColumnModel(inferred, 0)
	m.ApplyConvention(ConventionSnakeCase)

	cols := m.Columns()
	assert.Equal(t, "user_name", cols[0].Name, "first collision keeps the unsuffixed name")
	assert.Equal(t, "user_name_2", cols[1].Name)
	assert.Equal(t, "user_name_3", cols[2].Name)
	require.NoError(t, m.Validate())

	// Conventions always restart from the base names
	m.ApplyConvention(ConventionCamelCase)
	cols = m.Columns()
	assert.Equal(t, "UserName", cols[0].Name)
	assert.Equal(t, "UserName_2", cols[1].Name)
	assert.Equal(t, "UserName_3", cols[2].Name)
}

func TestColumnModelSetName(t *testing.T) {
	t.Parallel()

	m := testModel(t, 0)
	require.NoError(t, m.SetName("User Name", "full_name"))
	assert.Equal(t, "full_name", m.Columns()[1].Name)

	assert.ErrorIs(t, m.SetName("id", "full_name"), errDuplicateColumnName)
	assert.Error(t, m.SetName("id", "  "))

	// Renaming replaces the convention base name
	m.ApplyConvention(ConventionCamelCase)
	assert.Equal(t, "FullName", m.Columns()[1].Name)
}

func TestColumnModelValidate(t *testing.T) {
	t.Parallel()

	m := NewColumnModel(nil, 0)
	assert.ErrorIs(t, m.Validate(), ErrSchemaConflict)

	m = testModel(t, 0)
	require.NoError(t, m.Validate())
}

func TestColumnModelTogglePrimaryKey(t *testing.T) {
	t.Parallel()

	m := testModel(t, 0)
	require.NoError(t, m.TogglePrimaryKey("User Name"))

	cols := m.Columns()
	assert.True(t, cols[1].PrimaryKey)
	assert.False(t, cols[1].Nullable, "primary key columns are never nullable")

	require.NoError(t, m.TogglePrimaryKey("User Name"))
	assert.False(t, m.Columns()[1].PrimaryKey)
}
