/*
Package sqlite provides a SQLite-backed implementation of ledger.Store.

PURPOSE:
  Same flat contract as the CSV store, kept in one table so deployments
  that already ship SQLite files can use them. There is no query pushdown:
  the ledger still loads and rewrites the full set.

KEY TABLE:
  attendance_records: one row per (user_id, day)
    seq              storage order (autoincrement)
    user_id, day     uniqueness key, enforced by idx_unique_user_day
    arrival_time, departure_time, worked_duration  '' when absent

REWRITES:
  RewriteAll deletes and re-inserts every row inside one SQL transaction,
  so a failure rolls back to the previous set.

CONCURRENCY:
  A single connection (SQLite allows one writer) plus sync.RWMutex.

USAGE:
  store, err := sqlite.New("./data/attendance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  l := ledger.New(store)
*/
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/warp/attendance-ledger/ledger"
)

// Store implements ledger.Store using SQLite.
type Store struct {
	db *sqlx.DB
	mu sync.RWMutex
}

// recordRow is the table shape scanned by sqlx.
type recordRow struct {
	UserID         string `db:"user_id"`
	Day            string `db:"day"`
	ArrivalTime    string `db:"arrival_time"`
	DepartureTime  string `db:"departure_time"`
	WorkedDuration string `db:"worked_duration"`
}

// New opens (or creates) the database at dbPath.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: SQLite has a single writer, and ":memory:" databases
	// are per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS attendance_records (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		day TEXT NOT NULL,
		arrival_time TEXT NOT NULL DEFAULT '',
		departure_time TEXT NOT NULL DEFAULT '',
		worked_duration TEXT NOT NULL DEFAULT ''
	);

	-- At most one record per user and day
	CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_user_day
		ON attendance_records(user_id, day);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ledger.Store
// =============================================================================

// LoadAll returns every row in insertion order. Rows with an unparsable day
// are skipped.
func (s *Store) LoadAll(ctx context.Context) ([]ledger.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

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
	s.mu.Lock()
	defer s.mu.Unlock()

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
	s.mu.Lock()
	defer s.mu.Unlock()
	return insert(ctx, s.db, record)
}

func insert(ctx context.Context, db sqlx.ExecerContext, r ledger.Record) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO attendance_records
		(user_id, day, arrival_time, departure_time, worked_duration)
		VALUES (?, ?, ?, ?, ?)
	`, string(r.UserID), r.Day, r.ArrivalTime, r.DepartureTime, r.WorkedDuration)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: user %s on %s", ledger.ErrDuplicateRecord, r.UserID, r.Day)
		}
		return fmt.Errorf("failed to insert record: %w", err)
	}
	return nil
}

// Count returns the number of stored rows.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM attendance_records`)
	return n, err
}

func isUniqueConstraintError(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

var _ ledger.Store = (*Store)(nil)
