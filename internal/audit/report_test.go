package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2024, time.March, 5, 3, 30, 0, 0, time.UTC)
}

func TestWriterStampsInConfiguredZone(t *testing.T) {
	w, err := NewWriter("America/Bogota", WithClock(fixedClock), WithRunID("run-1"))
	require.NoError(t, err)

	report := Report{Title: "Ingestion Audit", RuleWidth: 46}
	report.Add("Records fetched from API: %d", 20)

	lines := strings.Split(string(w.Render(report)), "\n")
	assert.Equal(t, " Ingestion Audit - 2024-03-04 22:30:00", lines[0])
	assert.Equal(t, strings.Repeat("=", 46), lines[1])
	assert.Equal(t, "Run: run-1", lines[2])
	assert.Equal(t, "Records fetched from API: 20", lines[3])
}

func TestWriterToday(t *testing.T) {
	w, err := NewWriter("America/Bogota", WithClock(fixedClock))
	require.NoError(t, err)

	today := w.Today()
	assert.Equal(t, 4, today.Day())
	assert.Equal(t, 0, today.Hour())
	assert.Equal(t, "America/Bogota", today.Location().String())
}

func TestWriterWriteCreatesDirectory(t *testing.T) {
	w, err := NewWriter("", WithClock(fixedClock))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "audit", "report.txt")
	require.NoError(t, w.Write(path, Report{Title: "Cleaning Audit", Lines: []string{"ok"}}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(raw), "ok\n"))
	assert.Contains(t, string(raw), strings.Repeat("=", 70))
}

func TestNewWriterRejectsUnknownZone(t *testing.T) {
	_, err := NewWriter("Mars/Olympus")
	assert.Error(t, err)
}
