// Package cleaning degrades the stored table on purpose, profiles the damage
// and repairs it deterministically.
package cleaning

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/rpattn/gamesetl/internal/audit"
	"github.com/rpattn/gamesetl/internal/domain"
	"github.com/rpattn/gamesetl/internal/export"
	"github.com/rpattn/gamesetl/internal/repository"
)

// Config lists the cleaning outputs and the column each step works on.
type Config struct {
	CorruptedPath string
	CleanedPath   string
	AuditPath     string
	AnalysisPath  string

	NullColumn  string
	NameColumn  string
	GenreColumn string
	DateColumn  string

	NullFraction      float64
	DuplicateFraction float64

	Sentinel         string
	Marker           string
	PlaceholderDates []string
}

// DefaultConfig returns the stored-table column roles with the usual fractions.
func DefaultConfig() Config {
	return Config{
		CorruptedPath:     "data/csv/dirty_data.csv",
		CleanedPath:       "data/csv/cleaned_data.csv",
		AuditPath:         "data/audit/cleaning_report.txt",
		AnalysisPath:      "data/audit/exploratory_analysis.txt",
		NullColumn:        domain.ColumnPlatforms,
		NameColumn:        domain.ColumnName,
		GenreColumn:       domain.ColumnGenre,
		DateColumn:        domain.ColumnYear,
		NullFraction:      0.05,
		DuplicateFraction: 0.10,
		Sentinel:          domain.DefaultSentinel,
		Marker:            "#",
		PlaceholderDates:  []string{"TBA", "Unreleased"},
	}
}

// Service runs the cleaning stage.
type Service struct {
	records repository.RecordRepository
	audits  *audit.Writer
	config  Config
	rng     *rand.Rand
	logger  *slog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithRand replaces the time-seeded random source used by Corrupt.
func WithRand(rng *rand.Rand) Option {
	return func(s *Service) {
		if rng != nil {
			s.rng = rng
		}
	}
}

// WithSeed makes Corrupt reproducible.
func WithSeed(seed uint64) Option {
	return WithRand(NewRand(seed))
}

// WithLogger replaces the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewRand returns a PCG source for seed; zero seeds from the clock.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewService creates a cleaning service. Empty config fields take DefaultConfig values.
func NewService(records repository.RecordRepository, audits *audit.Writer, config Config, opts ...Option) *Service {
	s := &Service{
		records: records,
		audits:  audits,
		config:  withDefaults(config),
		rng:     NewRand(0),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("stage", "cleaning")
	return s
}

func withDefaults(c Config) Config {
	d := DefaultConfig()
	if c.NullColumn == "" {
		c.NullColumn = d.NullColumn
	}
	if c.NameColumn == "" {
		c.NameColumn = d.NameColumn
	}
	if c.GenreColumn == "" {
		c.GenreColumn = d.GenreColumn
	}
	if c.DateColumn == "" {
		c.DateColumn = d.DateColumn
	}
	if c.Sentinel == "" {
		c.Sentinel = d.Sentinel
	}
	if c.Marker == "" {
		c.Marker = d.Marker
	}
	if c.PlaceholderDates == nil {
		c.PlaceholderDates = d.PlaceholderDates
	}
	return c
}

// Load reads the whole stored table ordered by id and validates its layout.
func (s *Service) Load(ctx context.Context) (domain.Table, error) {
	s.logger.Info("loading stored records")
	records, err := s.records.List(ctx)
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to load records: %w", err)
	}
	table := domain.RecordsToTable(records)
	if err := domain.ValidateRecordTable(table); err != nil {
		return domain.Table{}, err
	}
	return table, nil
}

// Save writes the cleaned table.
func (s *Service) Save(table domain.Table) error {
	s.logger.Info("saving cleaned table", "path", s.config.CleanedPath, "rows", table.Len())
	if _, err := export.WriteCSV(s.config.CleanedPath, table); err != nil {
		return fmt.Errorf("failed to save cleaned table: %w", err)
	}
	return nil
}

// Run loads, corrupts, explores, cleans, saves and audits.
func (s *Service) Run(ctx context.Context) (Result, error) {
	original, err := s.Load(ctx)
	if err != nil {
		return Result{}, err
	}

	corrupted, injection, err := s.Corrupt(original)
	if err != nil {
		return Result{}, err
	}

	if _, err := s.Explore(corrupted); err != nil {
		return Result{}, err
	}

	cleaned, stats, err := s.Clean(corrupted)
	if err != nil {
		return Result{}, err
	}

	if err := s.Save(cleaned); err != nil {
		return Result{}, err
	}

	result, err := s.Audit(original, corrupted, cleaned, injection, stats)
	if err != nil {
		return Result{}, err
	}

	s.logger.Info("cleaning completed",
		"original", result.Original, "corrupted", result.Corrupted, "cleaned", result.Cleaned)
	return result, nil
}

// Artifacts lists the files Run produces.
func (s *Service) Artifacts() []string {
	return []string{s.config.CorruptedPath, s.config.AnalysisPath, s.config.CleanedPath, s.config.AuditPath}
}
