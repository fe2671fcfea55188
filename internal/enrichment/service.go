// Package enrichment left-joins the cleaned table with a secondary dataset.
package enrichment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rpattn/gamesetl/internal/audit"
	"github.com/rpattn/gamesetl/internal/domain"
	"github.com/rpattn/gamesetl/internal/export"
	"github.com/rpattn/gamesetl/internal/tabular"
)

// Config lists the enrichment inputs, output and join columns.
type Config struct {
	BasePath   string
	ExtraPath  string
	OutputPath string
	AuditPath  string

	KeyColumn string
	// ProbeColumn is the secondary column whose presence marks a matched row.
	ProbeColumn string
	// RequiredColumns must exist in the secondary table besides the key.
	RequiredColumns []string
}

// DefaultConfig returns the usual file locations and columns.
func DefaultConfig() Config {
	return Config{
		BasePath:        "data/csv/cleaned_data.csv",
		ExtraPath:       "data/csv/additional_info.csv",
		OutputPath:      "data/csv/enriched_data.csv",
		AuditPath:       "data/audit/enriched_report.txt",
		KeyColumn:       domain.ColumnID,
		ProbeColumn:     "plataforma",
		RequiredColumns: []string{"plataforma", "calificación", "tamaño"},
	}
}

// Service runs the enrichment stage.
type Service struct {
	audits *audit.Writer
	config Config
	logger *slog.Logger
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

// NewService creates an enrichment service.
func NewService(audits *audit.Writer, config Config, opts ...Option) *Service {
	defaults := DefaultConfig()
	if config.KeyColumn == "" {
		config.KeyColumn = defaults.KeyColumn
	}
	if config.ProbeColumn == "" {
		config.ProbeColumn = defaults.ProbeColumn
	}
	s := &Service{audits: audits, config: config, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("stage", "enrichment")
	return s
}

// Load reads the base and secondary tables and checks their columns. Either
// file may be CSV or XLSX.
func (s *Service) Load() (base, extra domain.Table, err error) {
	s.logger.Info("loading datasets", "base", s.config.BasePath, "extra", s.config.ExtraPath)

	base, err = tabular.ReadFile(s.config.BasePath)
	if err != nil {
		return domain.Table{}, domain.Table{}, fmt.Errorf("failed to load base table: %w", err)
	}
	if err := base.RequireColumns(s.config.KeyColumn); err != nil {
		return domain.Table{}, domain.Table{}, fmt.Errorf("base table %s: %w", s.config.BasePath, err)
	}

	extra, err = tabular.ReadFile(s.config.ExtraPath)
	if err != nil {
		return domain.Table{}, domain.Table{}, fmt.Errorf("failed to load secondary table: %w", err)
	}
	required := append([]string{s.config.KeyColumn}, s.config.RequiredColumns...)
	if err := extra.RequireColumns(required...); err != nil {
		return domain.Table{}, domain.Table{}, fmt.Errorf("secondary table %s: %w", s.config.ExtraPath, err)
	}

	return base, extra, nil
}

// Save writes the joined table.
func (s *Service) Save(joined domain.Table) error {
	s.logger.Info("saving enriched table", "path", s.config.OutputPath, "rows", joined.Len())
	if _, err := export.WriteCSV(s.config.OutputPath, joined); err != nil {
		return fmt.Errorf("failed to save enriched table: %w", err)
	}
	return nil
}

// Run loads, joins, saves and audits.
func (s *Service) Run(ctx context.Context) (Summary, error) {
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	base, extra, err := s.Load()
	if err != nil {
		return Summary{}, err
	}

	joined, joinStats, err := s.Join(base, extra)
	if err != nil {
		return Summary{}, err
	}

	if err := s.Save(joined); err != nil {
		return Summary{}, err
	}

	summary, err := s.Audit(base, extra, joined, joinStats)
	if err != nil {
		return Summary{}, err
	}

	s.logger.Info("enrichment completed",
		"rows", summary.JoinedRows, "matched", summary.Matched, "unmatched", summary.Unmatched)
	return summary, nil
}

// Artifacts lists the files Run produces.
func (s *Service) Artifacts() []string {
	return []string{s.config.OutputPath, s.config.AuditPath}
}
