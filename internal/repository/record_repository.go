package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpattn/gamesetl/internal/db"
	"github.com/rpattn/gamesetl/internal/domain"

	"github.com/jackc/pgx/v5"
)

const (
	upsertRecordSQLite = `INSERT INTO videojuegos (id, nombre, genero, plataformas, "año")
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			nombre = excluded.nombre,
			genero = excluded.genero,
			plataformas = excluded.plataformas,
			"año" = excluded."año"`

	upsertRecordPostgres = `INSERT INTO videojuegos (id, nombre, genero, plataformas, "año")
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT(id) DO UPDATE SET
			nombre = excluded.nombre,
			genero = excluded.genero,
			plataformas = excluded.plataformas,
			"año" = excluded."año"`

	listRecordsSQL = `SELECT id, COALESCE(nombre, ''), COALESCE(genero, ''), COALESCE(plataformas, ''), COALESCE("año", '')
		FROM videojuegos ORDER BY id`

	countRecordsSQL = `SELECT COUNT(*) FROM videojuegos`
)

type sqlRecordRepository struct {
	db *sql.DB
}

// NewSQLRecordRepository wires a repository backed by a database/sql handle
// opened on the SQLite driver.
func NewSQLRecordRepository(conn *sql.DB) RecordRepository {
	return &sqlRecordRepository{db: conn}
}

func (r *sqlRecordRepository) Upsert(ctx context.Context, records []domain.Record) (int, error) {
	if r.db == nil {
		return 0, fmt.Errorf("record repository not initialized")
	}
	if len(records) == 0 {
		return 0, nil
	}

	written := 0
	err := db.WithSQLTx(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, upsertRecordSQLite)
		if err != nil {
			return fmt.Errorf("prepare upsert: %w", err)
		}
		defer stmt.Close()

		for _, record := range records {
			if _, err := stmt.ExecContext(ctx, record.ID, record.Name, record.Genre, record.Platforms, record.Year); err != nil {
				return fmt.Errorf("upsert record %d: %w", record.ID, err)
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upsert records: %w", err)
	}
	return written, nil
}

func (r *sqlRecordRepository) List(ctx context.Context) ([]domain.Record, error) {
	if r.db == nil {
		return nil, fmt.Errorf("record repository not initialized")
	}

	rows, err := r.db.QueryContext(ctx, listRecordsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var records []domain.Record
	for rows.Next() {
		var record domain.Record
		if err := rows.Scan(&record.ID, &record.Name, &record.Genre, &record.Platforms, &record.Year); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

func (r *sqlRecordRepository) Count(ctx context.Context) (int, error) {
	if r.db == nil {
		return 0, fmt.Errorf("record repository not initialized")
	}
	var count int
	if err := r.db.QueryRowContext(ctx, countRecordsSQL).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

type pgxRecordRepository struct {
	conn *db.Connection
}

// NewPgxRecordRepository wires a repository backed by pgxpool.
func NewPgxRecordRepository(conn *db.Connection) RecordRepository {
	return &pgxRecordRepository{conn: conn}
}

func (r *pgxRecordRepository) Upsert(ctx context.Context, records []domain.Record) (int, error) {
	if r.conn == nil || r.conn.Pool == nil {
		return 0, fmt.Errorf("record repository not initialized")
	}
	if len(records) == 0 {
		return 0, nil
	}

	err := r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, record := range records {
			batch.Queue(upsertRecordPostgres, record.ID, record.Name, record.Genre, record.Platforms, record.Year)
		}
		results := tx.SendBatch(ctx, batch)
		for _, record := range records {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return fmt.Errorf("upsert record %d: %w", record.ID, err)
			}
		}
		return results.Close()
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upsert records: %w", err)
	}
	return len(records), nil
}

func (r *pgxRecordRepository) List(ctx context.Context) ([]domain.Record, error) {
	if r.conn == nil || r.conn.Pool == nil {
		return nil, fmt.Errorf("record repository not initialized")
	}

	rows, err := r.conn.Pool.Query(ctx, listRecordsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Record, error) {
		var record domain.Record
		err := row.Scan(&record.ID, &record.Name, &record.Genre, &record.Platforms, &record.Year)
		return record, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan records: %w", err)
	}
	return records, nil
}

func (r *pgxRecordRepository) Count(ctx context.Context) (int, error) {
	if r.conn == nil || r.conn.Pool == nil {
		return 0, fmt.Errorf("record repository not initialized")
	}
	var count int
	if err := r.conn.Pool.QueryRow(ctx, countRecordsSQL).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}
