// Package store selects a ledger.Store backend by name.
package store

import (
	"fmt"
	"log/slog"

	"github.com/warp/attendance-ledger/ledger"
	memstore "github.com/warp/attendance-ledger/ledger/store"
	"github.com/warp/attendance-ledger/store/csvfile"
	"github.com/warp/attendance-ledger/store/postgres"
	"github.com/warp/attendance-ledger/store/sqlite"
)

// Backend names accepted by Open.
const (
	BackendCSV      = "csv"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Open returns the store for backend and a function that releases it. For
// the postgres backend path is the connection string.
func Open(backend, path string, logger *slog.Logger) (ledger.Store, func() error, error) {
	noop := func() error { return nil }

	switch backend {
	case BackendCSV, "":
		if path == "" {
			return nil, nil, fmt.Errorf("csv store requires a path")
		}
		return csvfile.New(path, logger), noop, nil
	case BackendSQLite:
		if path == "" {
			return nil, nil, fmt.Errorf("sqlite store requires a path")
		}
		s, err := sqlite.New(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case BackendPostgres:
		if path == "" {
			return nil, nil, fmt.Errorf("postgres store requires a connection string")
		}
		s, err := postgres.New(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case BackendMemory:
		return memstore.NewMemory(), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q (want %s, %s, %s or %s)",
			backend, BackendCSV, BackendSQLite, BackendPostgres, BackendMemory)
	}
}
