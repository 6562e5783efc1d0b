package tablebuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value string
		want  ColumnType
	}{
		{value: "42", want: ColumnTypeInt},
		{value: "-7", want: ColumnTypeInt},
		{value: "2147483647", want: ColumnTypeInt},
		{value: "2147483648", want: ColumnTypeBigInt},
		{value: "3.14", want: ColumnTypeFloat},
		{value: "1e6", want: ColumnTypeFloat},
		{value: "2024-01-05", want: ColumnTypeDate},
		{value: "2024-01-05 10:30:00", want: ColumnTypeDatetime},
		{value: "2024-01-05T10:30:00Z", want: ColumnTypeDatetime},
		{value: "true", want: ColumnTypeBit},
		{value: "No", want: ColumnTypeBit},
		// Bare 0/1 hit the integer predicate before the boolean one
		{value: "1", want: ColumnTypeInt},
		{value: "0", want: ColumnTypeInt},
		{value: "550e8400-e29b-41d4-a716-446655440000", want: ColumnTypeGUID},
		{value: "hello", want: ColumnTypeText},
		{value: "2024-13-45", want: ColumnTypeText},
		{value: "  42  ", want: ColumnTypeInt},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.value, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, classifyValue(tt.value))
		})
	}
}

func TestJoinTypes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b ColumnType
		want ColumnType
	}{
		{name: "same type", a: ColumnTypeInt, b: ColumnTypeInt, want: ColumnTypeInt},
		{name: "int widens to bigint", a: ColumnTypeInt, b: ColumnTypeBigInt, want: ColumnTypeBigInt},
		{name: "int widens to float", a: ColumnTypeFloat, b: ColumnTypeInt, want: ColumnTypeFloat},
		{name: "chain tops out at text", a: ColumnTypeFloat, b: ColumnTypeText, want: ColumnTypeText},
		{name: "date widens to datetime", a: ColumnTypeDate, b: ColumnTypeDatetime, want: ColumnTypeDatetime},
		{name: "date conflicts with int", a: ColumnTypeDate, b: ColumnTypeInt, want: ColumnTypeText},
		{name: "bit conflicts with int", a: ColumnTypeBit, b: ColumnTypeInt, want: ColumnTypeText},
		{name: "guid conflicts with text", a: ColumnTypeGUID, b: ColumnTypeText, want: ColumnTypeText},
		{name: "bit conflicts with guid", a: ColumnTypeBit, b: ColumnTypeGUID, want: ColumnTypeText},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, joinTypes(tt.a, tt.b))
			assert.Equal(t, tt.want, joinTypes(tt.b, tt.a), "join must be symmetric")
		})
	}
}

func TestTextBucket(t *testing.T) {
	t.Parallel()

	tests := []struct {
		length int
		want   int
	}{
		{length: 0, want: 50},
		{length: 1, want: 50},
		{length: 50, want: 50},
		{length: 51, want: 100},
		{length: 149, want: 150},
		{length: 150, want: 150},
	}
	for _, tt := range tests {
		if got := textBucket(tt.length); got != tt.want {
			t.Errorf("textBucket(%d) = %d, want %d", tt.length, got, tt.want)
		}
	}
}

func TestInferColumns(t *testing.T) {
	t.Parallel()

	content := "id,name,joined,active,score\n" +
		"1,Alice,2024-01-05,true,9.5\n" +
		"2,Bob,2024-02-10,false,7\n" +
		"3,Carol,2024-03-15,true,8.25\n"
	r := openTestReader(t, content, 100)

	columns, err := InferColumns(r, InferenceOptions{SamplePercent: 100})
	require.NoError(t, err)
	require.Len(t, columns, 5)

	assert.Equal(t, ColumnTypeInt, columns[0].Type)
	assert.False(t, columns[0].Nullable)

	assert.Equal(t, ColumnTypeText, columns[1].Type)
	assert.Equal(t, 50, columns[1].Length)

	assert.Equal(t, ColumnTypeDate, columns[2].Type)
	assert.Equal(t, ColumnTypeBit, columns[3].Type)
	assert.Equal(t, ColumnTypeFloat, columns[4].Type)
}

func TestInferColumnsMixedIntBool(t *testing.T) {
	t.Parallel()

	// 1 and 0 classify as INT, "true" as BIT; the conflict demotes to TEXT
	content := "flag\n1\n0\ntrue\n"
	r := openTestReader(t, content, 100)

	columns, err := InferColumns(r, InferenceOptions{SamplePercent: 100})
	require.NoError(t, err)
	require.Len(t, columns, 1)
	assert.Equal(t, ColumnTypeText, columns[0].Type)
}

func TestInferColumnsNullability(t *testing.T) {
	t.Parallel()

	content := "id,note\n1,\n2,hello\n3,world\n"
	r := openTestReader(t, content, 100)

	columns, err := InferColumns(r, InferenceOptions{SamplePercent: 100})
	require.NoError(t, err)

	assert.False(t, columns[0].Nullable)
	assert.True(t, columns[1].Nullable)
	assert.Equal(t, ColumnTypeText, columns[1].Type, "blanks must not affect the type join")
}

func TestInferColumnsLargeText(t *testing.T) {
	t.Parallel()

	long := make([]byte, 120)
	for i := range long {
		long[i] = 'x'
	}
	content := "note\n" + string(long) + "\n"
	r := openTestReader(t, content, 100)

	columns, err := InferColumns(r, InferenceOptions{SamplePercent: 100, MaxTextLength: 100})
	require.NoError(t, err)
	assert.True(t, columns[0].LargeText)
	assert.Equal(t, "NVARCHAR(MAX)", (&ColumnDefinition{Type: ColumnTypeText, LargeText: true}).SQLType())
}

func TestInferColumnsDeterministic(t *testing.T) {
	t.Parallel()

	content := "id,name\n1,Alice\n2,Bob\n3,Carol\n4,Dan\n5,Eve\n"
	r := openTestReader(t, content, 100)

	opts := InferenceOptions{SamplePercent: 60}
	first, err := InferColumns(r, opts)
	require.NoError(t, err)
	second, err := InferColumns(r, opts)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestInferColumnsSkipsRaggedRows(t *testing.T) {
	t.Parallel()

	content := "id,name\n1,Alice\nnot-a-row\n2,Bob\n"
	r := openTestReader(t, content, 100)

	columns, err := InferColumns(r, InferenceOptions{SamplePercent: 100})
	require.NoError(t, err)
	assert.Equal(t, ColumnTypeInt, columns[0].Type, "ragged rows must not feed the sample")
}

func TestInferColumnsEmptyColumn(t *testing.T) {
	t.Parallel()

	content := "id,blank\n1,\n2,\n"
	r := openTestReader(t, content, 100)

	columns, err := InferColumns(r, InferenceOptions{SamplePercent: 100})
	require.NoError(t, err)
	assert.Equal(t, ColumnTypeText, columns[1].Type)
	assert.Equal(t, TextLengthBucket, columns[1].Length)
	assert.True(t, columns[1].Nullable)
}
