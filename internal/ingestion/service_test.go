package ingestion

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rpattn/gamesetl/internal/audit"
	"github.com/rpattn/gamesetl/internal/domain"
	"github.com/rpattn/gamesetl/internal/repository"
)

func TestServiceRunStoresExportsAndAudits(t *testing.T) {
	dir := t.TempDir()
	fetcher := &stubFetcher{records: []domain.Record{
		{ID: 1, Name: "Zelda", Genre: "Adventure", Platforms: "Switch", Year: "2017"},
		{ID: 2, Name: "Mario", Genre: "Platformer", Platforms: "Switch", Year: "2017"},
	}}
	repo := &stubRecordRepo{}

	service := NewService(fetcher, repo, testAuditWriter(t), Config{
		SpreadsheetPath: filepath.Join(dir, "xlsx", "ingestion.xlsx"),
		AuditPath:       filepath.Join(dir, "audit", "ingestion.txt"),
	})

	summary, err := service.Run(context.Background())
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if fetcher.limit != DefaultLimit {
		t.Fatalf("expected fetch limit %d, got %d", DefaultLimit, fetcher.limit)
	}
	if summary.Fetched != 2 || summary.Stored != 2 || !summary.Match {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	if _, err := os.Stat(filepath.Join(dir, "xlsx", "ingestion.xlsx")); err != nil {
		t.Fatalf("expected spreadsheet to be written: %v", err)
	}

	report, err := os.ReadFile(filepath.Join(dir, "audit", "ingestion.txt"))
	if err != nil {
		t.Fatalf("read audit: %v", err)
	}
	text := string(report)
	if !strings.Contains(text, strings.Repeat("=", 46)+"\n") {
		t.Fatalf("expected 46 character rule in audit:\n%s", text)
	}
	if !strings.Contains(text, "Records fetched from API: 2") || !strings.Contains(text, "Record counts match.") {
		t.Fatalf("unexpected audit contents:\n%s", text)
	}
}

func TestServiceRunNothingFetchedWritesNothing(t *testing.T) {
	dir := t.TempDir()
	repo := &stubRecordRepo{}
	service := NewService(&stubFetcher{}, repo, testAuditWriter(t), Config{
		SpreadsheetPath: filepath.Join(dir, "ingestion.xlsx"),
		AuditPath:       filepath.Join(dir, "ingestion.txt"),
	})

	_, err := service.Run(context.Background())
	if !errors.Is(err, ErrNothingIngested) {
		t.Fatalf("expected ErrNothingIngested, got %v", err)
	}
	if repo.upserts != 0 {
		t.Fatalf("expected no database writes, got %d", repo.upserts)
	}
	if _, err := os.Stat(filepath.Join(dir, "ingestion.xlsx")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no spreadsheet, stat returned %v", err)
	}
}

func TestServiceRunPropagatesFetchError(t *testing.T) {
	repo := &stubRecordRepo{}
	boom := errors.New("connection refused")
	service := NewService(&stubFetcher{err: boom}, repo, testAuditWriter(t), Config{})

	if _, err := service.Run(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if repo.upserts != 0 {
		t.Fatalf("expected no database writes")
	}
}

func TestServiceAuditReportsMismatchWithoutError(t *testing.T) {
	dir := t.TempDir()
	repo := &stubRecordRepo{stored: map[int64]domain.Record{
		1: {ID: 1}, 2: {ID: 2}, 3: {ID: 3},
	}}
	service := NewService(&stubFetcher{}, repo, testAuditWriter(t), Config{
		AuditPath: filepath.Join(dir, "ingestion.txt"),
	})

	summary, err := service.Audit(context.Background(), []domain.Record{{ID: 1}})
	if err != nil {
		t.Fatalf("audit returned error: %v", err)
	}
	if summary.Match || summary.Stored != 3 || summary.Fetched != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	report, err := os.ReadFile(filepath.Join(dir, "ingestion.txt"))
	if err != nil {
		t.Fatalf("read audit: %v", err)
	}
	if !strings.Contains(string(report), "Warning: record count mismatch.") {
		t.Fatalf("expected mismatch warning:\n%s", report)
	}
}

func TestServiceStoreWrapsRepositoryError(t *testing.T) {
	repo := &stubRecordRepo{err: errors.New("disk full")}
	service := NewService(&stubFetcher{}, repo, testAuditWriter(t), Config{})

	_, err := service.Store(context.Background(), []domain.Record{{ID: 1}})
	if err == nil || !strings.Contains(err.Error(), "failed to store records") {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func testAuditWriter(t *testing.T) *audit.Writer {
	t.Helper()
	w, err := audit.NewWriter("America/Bogota", audit.WithClock(func() time.Time {
		return time.Date(2024, time.March, 5, 12, 0, 0, 0, time.UTC)
	}))
	if err != nil {
		t.Fatalf("audit writer: %v", err)
	}
	return w
}

type stubFetcher struct {
	records []domain.Record
	err     error
	limit   int
}

func (s *stubFetcher) Fetch(ctx context.Context, limit int) ([]domain.Record, error) {
	s.limit = limit
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

type stubRecordRepo struct {
	stored  map[int64]domain.Record
	upserts int
	err     error
}

var _ repository.RecordRepository = (*stubRecordRepo)(nil)

func (s *stubRecordRepo) Upsert(ctx context.Context, records []domain.Record) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	if s.stored == nil {
		s.stored = make(map[int64]domain.Record)
	}
	s.upserts++
	for _, record := range records {
		s.stored[record.ID] = record
	}
	return len(records), nil
}

func (s *stubRecordRepo) List(ctx context.Context) ([]domain.Record, error) {
	records := make([]domain.Record, 0, len(s.stored))
	for _, record := range s.stored {
		records = append(records, record)
	}
	return records, nil
}

func (s *stubRecordRepo) Count(ctx context.Context) (int, error) {
	return len(s.stored), nil
}
