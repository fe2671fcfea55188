package export

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rpattn/gamesetl/internal/domain"

	"github.com/xuri/excelize/v2"
)

// WriteSpreadsheet writes records to the first sheet of a new workbook, with the
// stored column names as header. Ids are written as numbers.
func WriteSpreadsheet(path string, records []domain.Record) (Result, error) {
	if strings.TrimSpace(path) == "" {
		return Result{}, errors.New("spreadsheet path is not configured")
	}
	if err := EnsureDir(path); err != nil {
		return Result{}, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	header := make([]any, len(domain.RecordColumns))
	for i, column := range domain.RecordColumns {
		header[i] = column
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return Result{}, fmt.Errorf("write spreadsheet header: %w", err)
	}

	for idx, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, idx+2)
		if err != nil {
			return Result{}, fmt.Errorf("resolve spreadsheet row %d: %w", idx+2, err)
		}
		row := []any{record.ID, record.Name, record.Genre, record.Platforms, record.Year}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return Result{}, fmt.Errorf("write spreadsheet row %d: %w", idx+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return Result{}, fmt.Errorf("save spreadsheet: %w", err)
	}

	return Result{Path: path, RowsExported: len(records)}, nil
}
