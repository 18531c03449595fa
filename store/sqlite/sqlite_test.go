package sqlite_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-ledger/ledger"
	"github.com/warp/attendance-ledger/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// =============================================================================
// STORE CONTRACT TESTS
// =============================================================================

func TestStore_EmptyLoad(t *testing.T) {
	store := newTestStore(t)

	records, err := store.LoadAll(context.Background())

	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStore_AppendKeepsOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, ledger.Record{UserID: "42", Day: "2024-01-02", ArrivalTime: "08:00:00"}))
	require.NoError(t, store.Append(ctx, ledger.Record{UserID: "7", Day: "2024-01-01", ArrivalTime: "09:00:00"}))

	records, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ledger.Record{
		{UserID: "42", Day: "2024-01-02", ArrivalTime: "08:00:00"},
		{UserID: "7", Day: "2024-01-01", ArrivalTime: "09:00:00"},
	}, records)
}

func TestStore_DuplicateDayRejected(t *testing.T) {
	// GIVEN: A record for user 42 on 2024-01-01
	// WHEN: Appending a second record for the same day
	// THEN: The unique index rejects it with ErrDuplicateRecord

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, ledger.Record{UserID: "42", Day: "2024-01-01", ArrivalTime: "08:00:00"}))
	err := store.Append(ctx, ledger.Record{UserID: "42", Day: "2024-01-01", DepartureTime: "17:00:00"})

	assert.ErrorIs(t, err, ledger.ErrDuplicateRecord)
	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_RewriteAll(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, ledger.Record{UserID: "1", Day: "2024-01-01"}))

	want := []ledger.Record{
		{UserID: "42", Day: "2024-01-01", ArrivalTime: "08:00:00", DepartureTime: "12:30:00", WorkedDuration: "4h 30m"},
		{UserID: "7", Day: "2024-01-01"},
	}
	require.NoError(t, store.RewriteAll(ctx, want))

	got, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStore_RewriteAllRollsBack(t *testing.T) {
	// GIVEN: A stored record
	// WHEN: Rewriting with a set that violates uniqueness
	// THEN: The transaction rolls back and the old set survives

	store := newTestStore(t)
	ctx := context.Background()
	original := ledger.Record{UserID: "42", Day: "2024-01-01", ArrivalTime: "08:00:00"}
	require.NoError(t, store.Append(ctx, original))

	err := store.RewriteAll(ctx, []ledger.Record{
		{UserID: "7", Day: "2024-01-01"},
		{UserID: "7", Day: "2024-01-01"},
	})
	assert.ErrorIs(t, err, ledger.ErrDuplicateRecord)

	got, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ledger.Record{original}, got)
}

func TestStore_WithLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance.db")
	store, err := sqlite.New(path)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	l := ledger.New(store,
		ledger.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		ledger.WithClock(func() time.Time { return time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC) }),
	)

	_, err = l.ApplyUpdate(ctx, "42", "2024-01-01", ledger.FieldArrival, "08:00:00")
	require.NoError(t, err)
	rec, err := l.ApplyUpdate(ctx, "42", "2024-01-01", ledger.FieldDeparture, "12:30:00")
	require.NoError(t, err)
	assert.Equal(t, "4h 30m", rec.WorkedDuration)

	history, err := l.History(ctx, "42", 0)
	require.NoError(t, err)
	assert.Equal(t, []ledger.Record{rec}, history)

	removed, err := l.Purge(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
