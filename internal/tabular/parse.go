// Package tabular reads CSV and XLSX files into domain tables and profiles their columns.
package tabular

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rpattn/gamesetl/internal/domain"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrUnsupportedFormat is returned when a file extension is neither csv nor xlsx.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	byteOrderMark = []byte{0xEF, 0xBB, 0xBF}
)

// ReadFile loads a csv or xlsx file. The first non-empty row is the header and
// empty cells are read as nulls.
func ReadFile(path string) (domain.Table, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(path, payload)
}

// Parse decodes a payload, choosing the format from the file name.
func Parse(fileName string, payload []byte) (domain.Table, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".csv":
		return ParseCSV(bytes.NewReader(payload))
	case ".xlsx":
		return parseExcel(payload)
	default:
		return domain.Table{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// ParseCSV reads comma separated records from r.
func ParseCSV(r io.Reader) (domain.Table, error) {
	reader := bufio.NewReader(r)
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to read csv: %w", err)
	}
	return normalizeTable(records)
}

func parseExcel(payload []byte) (domain.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return domain.Table{}, errors.New("excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}
	return normalizeTable(rows)
}

func normalizeTable(records [][]string) (domain.Table, error) {
	if len(records) == 0 {
		return domain.Table{}, errors.New("no rows found in file")
	}

	var headerRow []string
	var dataRows [][]string
	for _, row := range records {
		if isEmptyRow(row) {
			continue
		}
		if headerRow == nil {
			headerRow = row
			continue
		}
		dataRows = append(dataRows, row)
	}
	if headerRow == nil {
		return domain.Table{}, errors.New("header row could not be detected")
	}

	table := domain.NewTable(sanitizeHeaders(headerRow)...)
	for _, row := range dataRows {
		cells := make([]domain.Cell, len(table.Columns))
		for idx := range cells {
			if idx >= len(row) || row[idx] == "" {
				continue
			}
			cells[idx] = domain.StringCell(row[idx])
		}
		table.Rows = append(table.Rows, cells)
	}
	return table, nil
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// sanitizeHeaders trims names, fills blanks and disambiguates repeats so that
// column lookup by name stays unambiguous.
func sanitizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]int)

	for idx, value := range raw {
		name := strings.TrimSpace(value)
		if name == "" {
			name = fmt.Sprintf("column_%d", idx+1)
		}

		base := name
		count := seen[base]
		if count > 0 {
			name = fmt.Sprintf("%s_%d", base, count+1)
		}
		seen[base] = count + 1

		headers[idx] = name
	}

	return headers
}
