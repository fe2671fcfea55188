package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Stored column names of the video game table.
const (
	ColumnID        = "id"
	ColumnName      = "nombre"
	ColumnGenre     = "genero"
	ColumnPlatforms = "plataformas"
	ColumnYear      = "año"
)

// DefaultSentinel replaces missing or invalid values.
const DefaultSentinel = "Desconocido"

// RecordColumns is the column layout of the stored table, in order.
var RecordColumns = []string{ColumnID, ColumnName, ColumnGenre, ColumnPlatforms, ColumnYear}

// Record is one game as fetched from the catalogue API.
type Record struct {
	ID        int64  `json:"id"`
	Name      string `json:"nombre"`
	Genre     string `json:"genero"`
	Platforms string `json:"plataformas"`
	Year      string `json:"año"`
}

// Values returns the record as cells in RecordColumns order.
func (r Record) Values() []Cell {
	return []Cell{
		StringCell(strconv.FormatInt(r.ID, 10)),
		StringCell(r.Name),
		StringCell(r.Genre),
		StringCell(r.Platforms),
		StringCell(r.Year),
	}
}

// RecordsToTable lays records out in a table with RecordColumns.
func RecordsToTable(records []Record) Table {
	table := NewTable(RecordColumns...)
	for _, record := range records {
		table.Rows = append(table.Rows, record.Values())
	}
	return table
}

// ValidateRecordTable checks that the table carries the stored columns and that
// every id is an integer.
func ValidateRecordTable(t Table) error {
	if err := t.RequireColumns(RecordColumns...); err != nil {
		return err
	}
	idx, err := t.ColumnIndex(ColumnID)
	if err != nil {
		return err
	}
	for rowIdx, row := range t.Rows {
		cell := row[idx]
		if cell.IsNull() {
			return fmt.Errorf("%w: row %d has no id", ErrInvalidSchema, rowIdx+1)
		}
		if _, err := strconv.ParseInt(strings.TrimSpace(cell.Value), 10, 64); err != nil {
			return fmt.Errorf("%w: row %d id %q is not an integer", ErrInvalidSchema, rowIdx+1, cell.Value)
		}
	}
	return nil
}
