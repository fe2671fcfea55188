// Package ingestion fetches game records from the catalogue API and lands them in
// the record store and a spreadsheet.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rpattn/gamesetl/internal/audit"
	"github.com/rpattn/gamesetl/internal/domain"
	"github.com/rpattn/gamesetl/internal/export"
	"github.com/rpattn/gamesetl/internal/repository"
)

// ErrNothingIngested is returned by Run when the API yielded no records.
var ErrNothingIngested = errors.New("no records fetched from API")

const auditRuleWidth = 46

// Fetcher returns catalogue records.
type Fetcher interface {
	Fetch(ctx context.Context, limit int) ([]domain.Record, error)
}

// Config lists the ingestion outputs.
type Config struct {
	Limit           int
	SpreadsheetPath string
	AuditPath       string
}

// Summary is the outcome of the ingestion audit.
type Summary struct {
	Fetched int
	Stored  int
	Match   bool
}

// Service ingests catalogue records into the record store.
type Service struct {
	fetcher Fetcher
	records repository.RecordRepository
	audits  *audit.Writer
	config  Config
	logger  *slog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithLogger replaces the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a new ingestion service.
func NewService(
	fetcher Fetcher,
	records repository.RecordRepository,
	audits *audit.Writer,
	config Config,
	opts ...Option,
) *Service {
	if config.Limit <= 0 {
		config.Limit = DefaultLimit
	}
	s := &Service{
		fetcher: fetcher,
		records: records,
		audits:  audits,
		config:  config,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("stage", "ingestion")
	return s
}

// Store upserts records by id and returns how many were written.
func (s *Service) Store(ctx context.Context, records []domain.Record) (int, error) {
	s.logger.Info("storing records", "count", len(records))
	written, err := s.records.Upsert(ctx, records)
	if err != nil {
		return 0, fmt.Errorf("failed to store records: %w", err)
	}
	return written, nil
}

// ExportSpreadsheet writes records to the configured workbook.
func (s *Service) ExportSpreadsheet(records []domain.Record) error {
	s.logger.Info("writing spreadsheet", "path", s.config.SpreadsheetPath)
	if _, err := export.WriteSpreadsheet(s.config.SpreadsheetPath, records); err != nil {
		return fmt.Errorf("failed to export spreadsheet: %w", err)
	}
	return nil
}

// Audit compares the fetched count with the stored row count and writes the
// ingestion report. A mismatch is reported, not returned as an error.
func (s *Service) Audit(ctx context.Context, records []domain.Record) (Summary, error) {
	stored, err := s.records.Count(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to count stored records: %w", err)
	}

	summary := Summary{Fetched: len(records), Stored: stored, Match: len(records) == stored}

	report := audit.Report{Title: "Ingestion Audit", RuleWidth: auditRuleWidth}
	report.Add("Records fetched from API: %d", summary.Fetched)
	report.Add("Records in database: %d", summary.Stored)
	if summary.Match {
		report.Add("Record counts match.")
	} else {
		report.Add("Warning: record count mismatch.")
		s.logger.Warn("record count mismatch", "fetched", summary.Fetched, "stored", summary.Stored)
	}

	if err := s.audits.Write(s.config.AuditPath, report); err != nil {
		return Summary{}, err
	}
	return summary, nil
}

// Run fetches, stores, exports and audits. Nothing is written when the fetch
// returns no records.
func (s *Service) Run(ctx context.Context) (Summary, error) {
	records, err := s.fetcher.Fetch(ctx, s.config.Limit)
	if err != nil {
		return Summary{}, err
	}
	if len(records) == 0 {
		s.logger.Warn("ingestion could not be completed")
		return Summary{}, ErrNothingIngested
	}

	if _, err := s.Store(ctx, records); err != nil {
		return Summary{}, err
	}
	if err := s.ExportSpreadsheet(records); err != nil {
		return Summary{}, err
	}
	summary, err := s.Audit(ctx, records)
	if err != nil {
		return Summary{}, err
	}

	s.logger.Info("ingestion completed", "fetched", summary.Fetched, "stored", summary.Stored)
	return summary, nil
}

// Artifacts lists the files Run produces.
func (s *Service) Artifacts() []string {
	return []string{s.config.SpreadsheetPath, s.config.AuditPath}
}
