// Package export writes pipeline artifacts to disk.
package export

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rpattn/gamesetl/internal/domain"
)

// Result describes a written artifact.
type Result struct {
	Path         string
	RowsExported int
	BytesWritten int64
}

// WriteCSV writes the table with a header row. Nulls are written as empty fields.
// The file is staged next to its destination and renamed into place once complete.
func WriteCSV(path string, table domain.Table) (Result, error) {
	if strings.TrimSpace(path) == "" {
		return Result{}, errors.New("export path is not configured")
	}
	if err := EnsureDir(path); err != nil {
		return Result{}, err
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+"-*.tmp")
	if err != nil {
		return Result{}, fmt.Errorf("create temp export file: %w", err)
	}
	tempPath := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = tempFile.Close()
			_ = os.Remove(tempPath)
		}
	}()

	buffered := bufio.NewWriterSize(tempFile, 1<<16)
	counter := &countingWriter{writer: buffered}
	csvWriter := csv.NewWriter(counter)

	if err := csvWriter.Write(table.Columns); err != nil {
		return Result{}, fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for i := range record {
			if i < len(row) {
				record[i] = row[i].String()
			} else {
				record[i] = ""
			}
		}
		if err := csvWriter.Write(record); err != nil {
			return Result{}, fmt.Errorf("write row: %w", err)
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return Result{}, fmt.Errorf("flush rows: %w", err)
	}
	if err := buffered.Flush(); err != nil {
		return Result{}, fmt.Errorf("flush buffered rows: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return Result{}, fmt.Errorf("sync export file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return Result{}, fmt.Errorf("close export file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return Result{}, fmt.Errorf("promote export file: %w", err)
	}
	cleanup = false

	return Result{
		Path:         path,
		RowsExported: len(table.Rows),
		BytesWritten: counter.count,
	}, nil
}

// EnsureDir creates the parent directory of path.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure directory %s: %w", dir, err)
	}
	return nil
}

type countingWriter struct {
	writer *bufio.Writer
	count  int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.writer.Write(p)
	c.count += int64(n)
	return n, err
}
