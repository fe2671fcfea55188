package domain

import (
	"fmt"
	"strings"
)

// Cell holds a single table value. A zero Cell is null.
type Cell struct {
	Value string
	Valid bool
}

// NullCell returns a null cell.
func NullCell() Cell {
	return Cell{}
}

// StringCell wraps a non-null value.
func StringCell(value string) Cell {
	return Cell{Value: value, Valid: true}
}

// IsNull reports whether the cell carries no value.
func (c Cell) IsNull() bool {
	return !c.Valid
}

// String renders null cells as an empty string.
func (c Cell) String() string {
	if !c.Valid {
		return ""
	}
	return c.Value
}

// Table is an ordered set of rows sharing one column layout.
type Table struct {
	Columns []string
	Rows    [][]Cell
}

// NewTable creates an empty table with the given columns.
func NewTable(columns ...string) Table {
	return Table{
		Columns: append([]string(nil), columns...),
		Rows:    [][]Cell{},
	}
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// Clone returns a deep copy so stages never share row storage.
func (t Table) Clone() Table {
	cloned := Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]Cell, len(t.Rows)),
	}
	for i, row := range t.Rows {
		cloned.Rows[i] = append([]Cell(nil), row...)
	}
	return cloned
}

// ColumnIndex returns the position of a column or ErrColumnNotFound.
func (t Table) ColumnIndex(name string) (int, error) {
	for idx, column := range t.Columns {
		if column == name {
			return idx, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrColumnNotFound, name)
}

// HasColumn reports whether the table has a column with the given name.
func (t Table) HasColumn(name string) bool {
	_, err := t.ColumnIndex(name)
	return err == nil
}

// Column returns a copy of the cells of one column.
func (t Table) Column(name string) ([]Cell, error) {
	idx, err := t.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	cells := make([]Cell, len(t.Rows))
	for i, row := range t.Rows {
		cells[i] = row[idx]
	}
	return cells, nil
}

// AppendRow adds a row, padding or truncating it to the table width.
func (t *Table) AppendRow(row []Cell) {
	normalized := make([]Cell, len(t.Columns))
	copy(normalized, row)
	t.Rows = append(t.Rows, normalized)
}

// NullCount counts null cells in a column.
func (t Table) NullCount(name string) (int, error) {
	idx, err := t.ColumnIndex(name)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, row := range t.Rows {
		if row[idx].IsNull() {
			count++
		}
	}
	return count, nil
}

// NullCounts returns the null count of every column, in column order.
func (t Table) NullCounts() []int {
	counts := make([]int, len(t.Columns))
	for _, row := range t.Rows {
		for idx, cell := range row {
			if cell.IsNull() {
				counts[idx]++
			}
		}
	}
	return counts
}

// DuplicateCount counts rows that repeat an earlier row exactly.
func (t Table) DuplicateCount() int {
	seen := make(map[string]struct{}, len(t.Rows))
	duplicates := 0
	for _, row := range t.Rows {
		key := RowKey(row)
		if _, ok := seen[key]; ok {
			duplicates++
			continue
		}
		seen[key] = struct{}{}
	}
	return duplicates
}

// RowKey builds a comparison key that tells nulls apart from empty strings.
func RowKey(row []Cell) string {
	var builder strings.Builder
	for _, cell := range row {
		if cell.IsNull() {
			builder.WriteString("\x00N")
		} else {
			builder.WriteString("\x00V")
			builder.WriteString(cell.Value)
		}
	}
	return builder.String()
}

// RequireColumns returns ErrInvalidSchema naming every missing column.
func (t Table) RequireColumns(columns ...string) error {
	var missing []string
	for _, column := range columns {
		if !t.HasColumn(column) {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing columns %s", ErrInvalidSchema, strings.Join(missing, ", "))
	}
	return nil
}
