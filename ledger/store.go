/*
store.go - Persistence interface for attendance records

PURPOSE:
  Defines the boundary between the reconciliation engine and the flat
  record store. The store owns the full ordered collection of records and
  knows nothing about reconciliation.

CONTRACT:
  LoadAll:    every record, in storage order. A missing store is empty.
  RewriteAll: replaces the whole set, all-or-nothing.
  Append:     adds one record without reading the rest.

  Storage order is write order: append-on-create, in-place update on match.
  Stores do not serialize load/rewrite cycles; the Ledger does.

IMPLEMENTATIONS:
  - ledger/store/memory.go: In-memory, for tests and -store=memory
  - store/csvfile: Flat CSV file, temp-file + rename rewrites
  - store/sqlite: Single flat table, rewrite in one SQL transaction
*/
package ledger

import "context"

// Store persists the full ordered collection of records.
type Store interface {
	LoadAll(ctx context.Context) ([]Record, error)
	RewriteAll(ctx context.Context, records []Record) error
	Append(ctx context.Context, record Record) error
}

// Prober is implemented by stores that can tell whether their backing
// medium exists yet. Used for diagnostics only.
type Prober interface {
	Exists(ctx context.Context) (bool, error)
}

// =============================================================================
// NOTIFIER - Best-effort change feed
// =============================================================================

// Notifier is told about successful writes. Errors are logged by the
// Ledger and never fail the request.
type Notifier interface {
	RecordUpdated(ctx context.Context, record Record, field Field) error
	UserPurged(ctx context.Context, userID UserID, removed int) error
}

type nopNotifier struct{}

func (nopNotifier) RecordUpdated(context.Context, Record, Field) error { return nil }
func (nopNotifier) UserPurged(context.Context, UserID, int) error      { return nil }
