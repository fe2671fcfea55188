package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableCloneIsIndependent(t *testing.T) {
	table := RecordsToTable([]Record{{ID: 1, Name: "Zelda", Genre: "Adventure", Platforms: "Switch", Year: "2017"}})

	cloned := table.Clone()
	cloned.Rows[0][1] = StringCell("Mario")
	cloned.Columns[0] = "changed"

	assert.Equal(t, "Zelda", table.Rows[0][1].Value)
	assert.Equal(t, ColumnID, table.Columns[0])
}

func TestTableDuplicateCountDistinguishesNullFromEmpty(t *testing.T) {
	table := NewTable("a", "b")
	table.AppendRow([]Cell{StringCell("1"), NullCell()})
	table.AppendRow([]Cell{StringCell("1"), StringCell("")})
	table.AppendRow([]Cell{StringCell("1"), NullCell()})

	assert.Equal(t, 1, table.DuplicateCount())
}

func TestTableNullCounts(t *testing.T) {
	table := NewTable("a", "b")
	table.AppendRow([]Cell{NullCell(), StringCell("x")})
	table.AppendRow([]Cell{NullCell()})

	assert.Equal(t, []int{2, 1}, table.NullCounts())

	count, err := table.NullCount("a")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = table.NullCount("missing")
	assert.True(t, errors.Is(err, ErrColumnNotFound))
}

func TestValidateRecordTable(t *testing.T) {
	valid := RecordsToTable([]Record{{ID: 7, Name: "Metroid"}})
	require.NoError(t, ValidateRecordTable(valid))

	missing := NewTable(ColumnID, ColumnName)
	err := ValidateRecordTable(missing)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidSchema))
	assert.Contains(t, err.Error(), ColumnYear)

	badID := valid.Clone()
	badID.Rows[0][0] = StringCell("N/A")
	err = ValidateRecordTable(badID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not an integer")
}
