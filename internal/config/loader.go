package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/rpattn/gamesetl/internal/db"
	"github.com/spf13/viper"
)

// APIConfig describes the catalogue endpoint.
type APIConfig struct {
	URL       string        `mapstructure:"url"`
	Limit     int           `mapstructure:"limit"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"`
}

// IngestionConfig lists the ingestion stage outputs.
type IngestionConfig struct {
	SpreadsheetPath string `mapstructure:"spreadsheet_path"`
	AuditPath       string `mapstructure:"audit_path"`
}

// CleaningConfig lists the cleaning stage outputs and column roles.
type CleaningConfig struct {
	CorruptedPath     string   `mapstructure:"corrupted_path"`
	CleanedPath       string   `mapstructure:"cleaned_path"`
	AuditPath         string   `mapstructure:"audit_path"`
	AnalysisPath      string   `mapstructure:"analysis_path"`
	NullColumn        string   `mapstructure:"null_column"`
	NameColumn        string   `mapstructure:"name_column"`
	GenreColumn       string   `mapstructure:"genre_column"`
	DateColumn        string   `mapstructure:"date_column"`
	NullFraction      float64  `mapstructure:"null_fraction"`
	DuplicateFraction float64  `mapstructure:"duplicate_fraction"`
	Seed              uint64   `mapstructure:"seed"`
	Marker            string   `mapstructure:"marker"`
	PlaceholderDates  []string `mapstructure:"placeholder_dates"`
}

// EnrichmentConfig lists the enrichment stage inputs and outputs.
type EnrichmentConfig struct {
	BasePath        string   `mapstructure:"base_path"`
	ExtraPath       string   `mapstructure:"extra_path"`
	OutputPath      string   `mapstructure:"output_path"`
	AuditPath       string   `mapstructure:"audit_path"`
	KeyColumn       string   `mapstructure:"key_column"`
	ProbeColumn     string   `mapstructure:"probe_column"`
	RequiredColumns []string `mapstructure:"required_columns"`
}

// AuditConfig controls report timestamps.
type AuditConfig struct {
	TimeZone string `mapstructure:"timezone"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StorageConfig enables publishing artifacts to an S3 compatible bucket.
type StorageConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Region    string `mapstructure:"region"`
}

// Config is the full pipeline configuration.
type Config struct {
	Sentinel   string           `mapstructure:"sentinel"`
	API        APIConfig        `mapstructure:"api"`
	Database   db.Config        `mapstructure:"database"`
	Ingestion  IngestionConfig  `mapstructure:"ingestion"`
	Cleaning   CleaningConfig   `mapstructure:"cleaning"`
	Enrichment EnrichmentConfig `mapstructure:"enrichment"`
	Audit      AuditConfig      `mapstructure:"audit"`
	Log        LogConfig        `mapstructure:"log"`
	Storage    StorageConfig    `mapstructure:"storage"`

	// Source is the config file that was read, empty when only defaults and env apply.
	Source string `mapstructure:"-"`
}

func setDefaults(v *viper.Viper) {
	dbDefaults := db.DefaultConfig()

	v.SetDefault("sentinel", "Desconocido")

	v.SetDefault("api.url", "https://api.sampleapis.com/switch/games")
	v.SetDefault("api.limit", 20)
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.rate_limit", 5.0)

	v.SetDefault("database.driver", dbDefaults.Driver)
	v.SetDefault("database.path", dbDefaults.Path)
	v.SetDefault("database.host", dbDefaults.Host)
	v.SetDefault("database.port", dbDefaults.Port)
	v.SetDefault("database.user", dbDefaults.User)
	v.SetDefault("database.password", dbDefaults.Password)
	v.SetDefault("database.dbname", dbDefaults.DBName)
	v.SetDefault("database.sslmode", dbDefaults.SSLMode)

	v.SetDefault("ingestion.spreadsheet_path", "data/xlsx/ingestion.xlsx")
	v.SetDefault("ingestion.audit_path", "data/audit/ingestion.txt")

	v.SetDefault("cleaning.corrupted_path", "data/csv/dirty_data.csv")
	v.SetDefault("cleaning.cleaned_path", "data/csv/cleaned_data.csv")
	v.SetDefault("cleaning.audit_path", "data/audit/cleaning_report.txt")
	v.SetDefault("cleaning.analysis_path", "data/audit/exploratory_analysis.txt")
	v.SetDefault("cleaning.null_column", "plataformas")
	v.SetDefault("cleaning.name_column", "nombre")
	v.SetDefault("cleaning.genre_column", "genero")
	v.SetDefault("cleaning.date_column", "año")
	v.SetDefault("cleaning.null_fraction", 0.05)
	v.SetDefault("cleaning.duplicate_fraction", 0.10)
	v.SetDefault("cleaning.seed", 0)
	v.SetDefault("cleaning.marker", "#")
	v.SetDefault("cleaning.placeholder_dates", []string{"TBA", "Unreleased"})

	v.SetDefault("enrichment.base_path", "data/csv/cleaned_data.csv")
	v.SetDefault("enrichment.extra_path", "data/csv/additional_info.csv")
	v.SetDefault("enrichment.output_path", "data/csv/enriched_data.csv")
	v.SetDefault("enrichment.audit_path", "data/audit/enriched_report.txt")
	v.SetDefault("enrichment.key_column", "id")
	v.SetDefault("enrichment.probe_column", "plataforma")
	v.SetDefault("enrichment.required_columns", []string{"plataforma", "calificación", "tamaño"})

	v.SetDefault("audit.timezone", "America/Bogota")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.endpoint", "localhost:9000")
	v.SetDefault("storage.bucket", "etl-artifacts")
	v.SetDefault("storage.prefix", "runs")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.use_ssl", false)
	v.SetDefault("storage.region", "")
}

// Load reads configuration from defaults, an optional YAML file and ETL_*
// environment variables, in increasing precedence. configPath may be a file or a
// directory searched for etl.yaml; an empty path searches the working directory.
func Load(configPath string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("ETL") // ETL_DATABASE_DRIVER, ETL_CLEANING_SEED, ...
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicitFile := false
	searchDir := "."
	if configPath != "" {
		info, err := os.Stat(configPath)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if info.IsDir() {
			searchDir = configPath
		} else {
			v.SetConfigFile(configPath)
			explicitFile = true
		}
	}
	if !explicitFile {
		v.SetConfigName("etl")
		v.SetConfigType("yaml")
		v.AddConfigPath(searchDir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicitFile || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		slog.Debug("no etl.yaml found, using defaults and env vars", "dir", searchDir)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if used := v.ConfigFileUsed(); used != "" {
		cfg.Source = filepath.Clean(used)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.API.URL) == "" {
		problems = append(problems, "api.url is required")
	}
	if c.API.Limit <= 0 {
		problems = append(problems, "api.limit must be positive")
	}
	if err := c.Database.Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Cleaning.NullFraction < 0 || c.Cleaning.NullFraction > 1 {
		problems = append(problems, "cleaning.null_fraction must be within [0,1]")
	}
	if c.Cleaning.DuplicateFraction < 0 || c.Cleaning.DuplicateFraction > 1 {
		problems = append(problems, "cleaning.duplicate_fraction must be within [0,1]")
	}
	if _, err := time.LoadLocation(c.Audit.TimeZone); err != nil {
		problems = append(problems, fmt.Sprintf("audit.timezone %q is unknown", c.Audit.TimeZone))
	}
	if c.Storage.Enabled && strings.TrimSpace(c.Storage.Bucket) == "" {
		problems = append(problems, "storage.bucket is required when storage is enabled")
	}

	paths := map[string]string{
		"ingestion.spreadsheet_path": c.Ingestion.SpreadsheetPath,
		"ingestion.audit_path":       c.Ingestion.AuditPath,
		"cleaning.corrupted_path":    c.Cleaning.CorruptedPath,
		"cleaning.cleaned_path":      c.Cleaning.CleanedPath,
		"cleaning.audit_path":        c.Cleaning.AuditPath,
		"cleaning.analysis_path":     c.Cleaning.AnalysisPath,
		"enrichment.base_path":       c.Enrichment.BasePath,
		"enrichment.extra_path":      c.Enrichment.ExtraPath,
		"enrichment.output_path":     c.Enrichment.OutputPath,
		"enrichment.audit_path":      c.Enrichment.AuditPath,
	}
	for _, key := range slices.Sorted(maps.Keys(paths)) {
		if strings.TrimSpace(paths[key]) == "" {
			problems = append(problems, key+" is required")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// SlogLevel maps the configured level to an slog.Level.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger described by the log section.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
