package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/rpattn/gamesetl/internal/audit"
	"github.com/rpattn/gamesetl/internal/cleaning"
	"github.com/rpattn/gamesetl/internal/enrichment"
	"github.com/rpattn/gamesetl/internal/ingestion"
	"github.com/rpattn/gamesetl/internal/pipeline"
	"github.com/rpattn/gamesetl/internal/repository"
	"github.com/rpattn/gamesetl/internal/storage"
)

// newRunner wires the run id into the audit writer and the artifact publisher.
func (a *app) newRunner() (*pipeline.Runner, *audit.Writer, error) {
	runID := pipeline.NewRunID()

	audits, err := audit.NewWriter(a.cfg.Audit.TimeZone, audit.WithRunID(runID))
	if err != nil {
		return nil, nil, err
	}

	publisher, err := a.publisher(runID)
	if err != nil {
		return nil, nil, err
	}

	runner := pipeline.NewRunner(
		pipeline.WithRunID(runID),
		pipeline.WithPublisher(publisher),
		pipeline.WithLogger(a.logger),
	)
	return runner, audits, nil
}

func (a *app) publisher(runID string) (storage.Publisher, error) {
	sc := a.cfg.Storage
	if !sc.Enabled {
		return storage.NopPublisher{}, nil
	}
	store, err := storage.NewMinioStore(storage.MinioConfig{
		Endpoint:  sc.Endpoint,
		AccessKey: sc.AccessKey,
		SecretKey: sc.SecretKey,
		UseSSL:    sc.UseSSL,
		Region:    sc.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to configure artifact storage: %w", err)
	}
	return storage.NewObjectPublisher(store, sc.Bucket, sc.Prefix, runID, a.logger), nil
}

func (a *app) ingestStage(audits *audit.Writer, out io.Writer) pipeline.Stage {
	return pipeline.NewStage("ingest", func(ctx context.Context) ([]string, error) {
		store, err := repository.Open(ctx, a.cfg.Database)
		if err != nil {
			return nil, err
		}
		defer store.Close()

		client := ingestion.NewClient(ingestion.ClientConfig{
			URL:       a.cfg.API.URL,
			Timeout:   a.cfg.API.Timeout,
			RateLimit: a.cfg.API.RateLimit,
			Sentinel:  a.cfg.Sentinel,
			Logger:    a.logger,
		})
		service := ingestion.NewService(client, store.Records, audits, ingestion.Config{
			Limit:           a.cfg.API.Limit,
			SpreadsheetPath: a.cfg.Ingestion.SpreadsheetPath,
			AuditPath:       a.cfg.Ingestion.AuditPath,
		}, ingestion.WithLogger(a.logger))

		summary, err := service.Run(ctx)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(out, "ingest: fetched=%d stored=%d match=%t\n", summary.Fetched, summary.Stored, summary.Match)
		return service.Artifacts(), nil
	})
}

func (a *app) cleanStage(audits *audit.Writer, out io.Writer) pipeline.Stage {
	return pipeline.NewStage("clean", func(ctx context.Context) ([]string, error) {
		store, err := repository.Open(ctx, a.cfg.Database)
		if err != nil {
			return nil, err
		}
		defer store.Close()

		cc := a.cfg.Cleaning
		service := cleaning.NewService(store.Records, audits, cleaning.Config{
			CorruptedPath:     cc.CorruptedPath,
			CleanedPath:       cc.CleanedPath,
			AuditPath:         cc.AuditPath,
			AnalysisPath:      cc.AnalysisPath,
			NullColumn:        cc.NullColumn,
			NameColumn:        cc.NameColumn,
			GenreColumn:       cc.GenreColumn,
			DateColumn:        cc.DateColumn,
			NullFraction:      cc.NullFraction,
			DuplicateFraction: cc.DuplicateFraction,
			Sentinel:          a.cfg.Sentinel,
			Marker:            cc.Marker,
			PlaceholderDates:  cc.PlaceholderDates,
		}, cleaning.WithSeed(cc.Seed), cleaning.WithLogger(a.logger))

		result, err := service.Run(ctx)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(out, "clean: original=%d corrupted=%d cleaned=%d nulls_filled=%d duplicates_dropped=%d\n",
			result.Original, result.Corrupted, result.Cleaned, result.NullsFilled, result.DuplicatesDropped)
		return service.Artifacts(), nil
	})
}

func (a *app) enrichStage(audits *audit.Writer, out io.Writer) pipeline.Stage {
	return pipeline.NewStage("enrich", func(ctx context.Context) ([]string, error) {
		ec := a.cfg.Enrichment
		service := enrichment.NewService(audits, enrichment.Config{
			BasePath:        ec.BasePath,
			ExtraPath:       ec.ExtraPath,
			OutputPath:      ec.OutputPath,
			AuditPath:       ec.AuditPath,
			KeyColumn:       ec.KeyColumn,
			ProbeColumn:     ec.ProbeColumn,
			RequiredColumns: ec.RequiredColumns,
		}, enrichment.WithLogger(a.logger))

		summary, err := service.Run(ctx)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(out, "enrich: base=%d extra=%d joined=%d matched=%d unmatched=%d\n",
			summary.BaseRows, summary.ExtraRows, summary.JoinedRows, summary.Matched, summary.Unmatched)
		return service.Artifacts(), nil
	})
}
