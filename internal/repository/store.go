package repository

import (
	"context"
	"fmt"

	"github.com/rpattn/gamesetl/internal/db"
)

// Store is an opened, migrated record store.
type Store struct {
	Records RecordRepository
	closeFn func()
}

// Close releases the underlying connections.
func (s *Store) Close() {
	if s != nil && s.closeFn != nil {
		s.closeFn()
	}
}

// Open connects to the configured driver, applies pending migrations and wires
// the matching RecordRepository.
func Open(ctx context.Context, cfg db.Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Driver {
	case db.DriverSQLite:
		conn, err := db.OpenSQLite(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}
		if err := db.RunMigrations(conn, db.DriverSQLite); err != nil {
			_ = conn.Close()
			return nil, err
		}
		return &Store{
			Records: NewSQLRecordRepository(conn),
			closeFn: func() { _ = conn.Close() },
		}, nil

	case db.DriverPostgres:
		conn, err := db.NewConnection(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := db.RunMigrations(conn.SQLDB(), db.DriverPostgres); err != nil {
			conn.Close()
			return nil, err
		}
		return &Store{
			Records: NewPgxRecordRepository(conn),
			closeFn: conn.Close,
		}, nil
	}

	return nil, fmt.Errorf("%w: %q", db.ErrUnknownDriver, cfg.Driver)
}
