package cli

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestConfig points every path at dir and the API at apiURL.
func writeTestConfig(t *testing.T, dir, apiURL string) string {
	t.Helper()
	data := func(name string) string { return filepath.ToSlash(filepath.Join(dir, name)) }
	yaml := fmt.Sprintf(`api:
  url: %q
database:
  driver: sqlite
  path: %q
ingestion:
  spreadsheet_path: %q
  audit_path: %q
cleaning:
  corrupted_path: %q
  cleaned_path: %q
  audit_path: %q
  analysis_path: %q
  seed: 42
enrichment:
  base_path: %q
  extra_path: %q
  output_path: %q
  audit_path: %q
log:
  level: error
`,
		apiURL,
		data("db/ingestion.db"),
		data("xlsx/ingestion.xlsx"), data("audit/ingestion.txt"),
		data("csv/dirty_data.csv"), data("csv/cleaned_data.csv"),
		data("audit/cleaning_report.txt"), data("audit/exploratory_analysis.txt"),
		data("csv/cleaned_data.csv"), data("csv/additional_info.csv"),
		data("csv/enriched_data.csv"), data("audit/enriched_report.txt"),
	)
	path := filepath.Join(dir, "etl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path
}

func executeCommand(root *cobra.Command, args ...string) (string, error) {
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func catalogueServer(t *testing.T, count int) *httptest.Server {
	t.Helper()
	var body strings.Builder
	body.WriteString("[")
	for i := 1; i <= count; i++ {
		if i > 1 {
			body.WriteString(",")
		}
		fmt.Fprintf(&body, `{"id":%d,"name":"#game %d#","genre":["action"],"platforms":["Switch"],"releaseYear":%d}`, i, i, 2000+i)
	}
	body.WriteString("]")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body.String()))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRunCommandEndToEnd(t *testing.T) {
	dir := t.TempDir()
	server := catalogueServer(t, 25)
	configPath := writeTestConfig(t, dir, server.URL)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "csv"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "csv", "additional_info.csv"),
		[]byte("id,plataforma,calificación,tamaño\n1,Switch,9,10\n2,Switch,8,4\n"), 0o644))

	out, err := executeCommand(newRootCmd(), "run", "--config", configPath)
	require.NoError(t, err, out)

	assert.Contains(t, out, "ingest: fetched=20 stored=20 match=true")
	assert.Contains(t, out, "clean: original=20 corrupted=22 cleaned=20 nulls_filled=1 duplicates_dropped=2")
	assert.Contains(t, out, "enrich: base=20 extra=2 joined=20 matched=2 unmatched=18")

	for _, name := range []string{
		"xlsx/ingestion.xlsx", "audit/ingestion.txt",
		"csv/dirty_data.csv", "csv/cleaned_data.csv",
		"audit/cleaning_report.txt", "audit/exploratory_analysis.txt",
		"csv/enriched_data.csv", "audit/enriched_report.txt",
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	report, err := os.ReadFile(filepath.Join(dir, "audit", "ingestion.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(report), "Run: ")
}

func TestIngestCommandFailsWhenAPIReturnsError(t *testing.T) {
	dir := t.TempDir()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)
	configPath := writeTestConfig(t, dir, server.URL)

	_, err := executeCommand(newRootCmd(), "ingest", "--config", configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage ingest")
	assert.Contains(t, err.Error(), "no records fetched")

	_, statErr := os.Stat(filepath.Join(dir, "xlsx", "ingestion.xlsx"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestEnrichCommandFailsOnMissingInput(t *testing.T) {
	dir := t.TempDir()
	configPath := writeTestConfig(t, dir, "http://127.0.0.1:1")

	_, err := executeCommand(newRootCmd(), "enrich", "--config", configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage enrich")
}

func TestIngestLimitFlag(t *testing.T) {
	dir := t.TempDir()
	server := catalogueServer(t, 25)
	configPath := writeTestConfig(t, dir, server.URL)

	out, err := executeCommand(newRootCmd(), "ingest", "--config", configPath, "--limit", "5")
	require.NoError(t, err, out)
	assert.Contains(t, out, "ingest: fetched=5 stored=5 match=true")
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(newRootCmd(), "version")
	require.NoError(t, err)
	assert.Equal(t, "etl version dev (commit: none)\n", out)
}

func TestUnknownConfigFileFails(t *testing.T) {
	_, err := executeCommand(newRootCmd(), "enrich", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
