/*
Package postgres provides a PostgreSQL-backed implementation of ledger.Store.

PURPOSE:
  Lets several service instances share one record set. The contract is the
  same flat load/rewrite/append as the file stores; the ledger still holds
  the full set in memory during a cycle.

KEY TABLE:
  attendance_records: one row per (user_id, day)
    seq              storage order (BIGSERIAL)
    user_id, day     uniqueness key, enforced by idx_attendance_user_day

REWRITES:
  RewriteAll deletes and re-inserts every row inside one transaction.

NOTE:
  The ledger's lock is per process. Running more than one instance against
  the same database needs external coordination for writes.
*/
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/warp/attendance-ledger/ledger"
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// Store implements ledger.Store using PostgreSQL.
type Store struct {
	db *sqlx.DB
}

type recordRow struct {
	UserID         string `db:"user_id"`
	Day            string `db:"day"`
	ArrivalTime    string `db:"arrival_time"`
	DepartureTime  string `db:"departure_time"`
	WorkedDuration string `db:"worked_duration"`
}

// New connects to dsn and creates the table if needed.
func New(dsn string) (*Store, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sqlx.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS attendance_records (
			seq BIGSERIAL PRIMARY KEY,
			user_id VARCHAR(255) NOT NULL,
			day VARCHAR(10) NOT NULL,
			arrival_time VARCHAR(8) NOT NULL DEFAULT '',
			departure_time VARCHAR(8) NOT NULL DEFAULT '',
			worked_duration VARCHAR(32) NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_attendance_user_day
			ON attendance_records(user_id, day)
	`)
	return err
}

// LoadAll returns every row in insertion order. Rows with an unparsable day
// are skipped.
func (s *Store) LoadAll(ctx context.Context) ([]ledger.Record, error) {
	var rows []recordRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT user_id, day, arrival_time, departure_time, worked_duration
		FROM attendance_records
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	records := make([]ledger.Record, 0, len(rows))
	for _, r := range rows {
		if _, err := ledger.ParseDay(r.Day); err != nil {
			continue
		}
		records = append(records, ledger.Record{
			UserID:         ledger.UserID(r.UserID),
			Day:            r.Day,
			ArrivalTime:    r.ArrivalTime,
			DepartureTime:  r.DepartureTime,
			WorkedDuration: r.WorkedDuration,
		})
	}
	return records, nil
}

// RewriteAll replaces every row inside one transaction.
func (s *Store) RewriteAll(ctx context.Context, records []ledger.Record) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM attendance_records`); err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}
	for _, r := range records {
		if err := insert(ctx, tx, r); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Append inserts one row.
func (s *Store) Append(ctx context.Context, record ledger.Record) error {
	return insert(ctx, s.db, record)
}

func insert(ctx context.Context, db sqlx.ExecerContext, r ledger.Record) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO attendance_records
		(user_id, day, arrival_time, departure_time, worked_duration)
		VALUES ($1, $2, $3, $4, $5)
	`, string(r.UserID), r.Day, r.ArrivalTime, r.DepartureTime, r.WorkedDuration)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%w: user %s on %s", ledger.ErrDuplicateRecord, r.UserID, r.Day)
		}
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

var _ ledger.Store = (*Store)(nil)
