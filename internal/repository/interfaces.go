package repository

import (
	"context"

	"github.com/rpattn/gamesetl/internal/domain"
)

// RecordRepository defines the interface for the keyed video game table
type RecordRepository interface {
	// Upsert inserts records or replaces the stored row with the same id, in one transaction.
	Upsert(ctx context.Context, records []domain.Record) (int, error)
	// List returns every stored record ordered by id.
	List(ctx context.Context) ([]domain.Record, error)
	Count(ctx context.Context) (int, error)
}
