package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-ledger/ledger"
)

func TestMemory_LoadAllReturnsCopy(t *testing.T) {
	m := NewMemory(ledger.Record{UserID: "42", Day: "2024-01-01", ArrivalTime: "08:00:00"})
	ctx := context.Background()

	records, err := m.LoadAll(ctx)
	require.NoError(t, err)
	records[0].ArrivalTime = "changed"

	again, err := m.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "08:00:00", again[0].ArrivalTime)
}

func TestMemory_RewriteAndAppend(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	exists, err := m.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, m.Append(ctx, ledger.Record{UserID: "1", Day: "2024-01-01"}))
	require.NoError(t, m.Append(ctx, ledger.Record{UserID: "2", Day: "2024-01-01"}))
	assert.Equal(t, 2, m.Len())

	require.NoError(t, m.RewriteAll(ctx, []ledger.Record{{UserID: "3", Day: "2024-01-02"}}))
	records, err := m.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ledger.Record{{UserID: "3", Day: "2024-01-02"}}, records)

	require.NoError(t, m.RewriteAll(ctx, nil))
	assert.Equal(t, 0, m.Len())
	exists, err = m.Exists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)
}
