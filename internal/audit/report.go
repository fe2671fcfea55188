// Package audit renders the plain-text reports written at the end of each stage.
package audit

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rpattn/gamesetl/internal/export"
	// Bundled zone database so the report zone resolves on hosts without tzdata.
	_ "time/tzdata"
)

const (
	// DefaultTimeZone is the zone audit timestamps are rendered in.
	DefaultTimeZone = "America/Bogota"
	timestampLayout = "2006-01-02 15:04:05"
	defaultRule     = 70
)

// Report is a titled list of lines.
type Report struct {
	Title string
	Lines []string
	// RuleWidth is the length of the "=" rule under the title; 0 means 70.
	RuleWidth int
}

// Add appends a formatted line.
func (r *Report) Add(format string, args ...any) {
	r.Lines = append(r.Lines, fmt.Sprintf(format, args...))
}

// Writer stamps reports with the current time in a fixed zone.
type Writer struct {
	loc   *time.Location
	now   func() time.Time
	runID string
}

// Option customizes a Writer.
type Option func(*Writer)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(w *Writer) {
		if now != nil {
			w.now = now
		}
	}
}

// WithRunID adds a run identifier line under the rule.
func WithRunID(runID string) Option {
	return func(w *Writer) {
		w.runID = strings.TrimSpace(runID)
	}
}

// NewWriter creates a writer for the given IANA zone name.
func NewWriter(timeZone string, opts ...Option) (*Writer, error) {
	if strings.TrimSpace(timeZone) == "" {
		timeZone = DefaultTimeZone
	}
	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		return nil, fmt.Errorf("failed to load time zone %q: %w", timeZone, err)
	}
	w := &Writer{loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Location returns the zone reports are stamped in.
func (w *Writer) Location() *time.Location {
	return w.loc
}

// Now returns the current time in the writer's zone.
func (w *Writer) Now() time.Time {
	return w.now().In(w.loc)
}

// Today returns midnight of the current day in the writer's zone.
func (w *Writer) Today() time.Time {
	now := w.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, w.loc)
}

// Render formats the report without writing it.
func (w *Writer) Render(report Report) []byte {
	width := report.RuleWidth
	if width <= 0 {
		width = defaultRule
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, " %s - %s\n", report.Title, w.Now().Format(timestampLayout))
	buf.WriteString(strings.Repeat("=", width))
	buf.WriteByte('\n')
	if w.runID != "" {
		fmt.Fprintf(&buf, "Run: %s\n", w.runID)
	}
	for _, line := range report.Lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// Write renders the report to path, replacing any previous report.
func (w *Writer) Write(path string, report Report) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("audit path for %q is not configured", report.Title)
	}
	if err := export.EnsureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, w.Render(report), 0o644); err != nil {
		return fmt.Errorf("failed to write audit report %s: %w", path, err)
	}
	return nil
}
