package csvfile

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-ledger/ledger"
)

func TestReadLegacyLog(t *testing.T) {
	input := strings.Join([]string{
		"42,IN,2024-01-01 08:00:00",
		"42,out,2024-01-01 12:30:00",
		"42,LUNCH,2024-01-01 12:00:00",
		"42,IN,yesterday",
		",IN,2024-01-01 08:00:00",
		"only,two",
		"7,IN,2024-01-02 09:15:00",
	}, "\n")

	events, err := ReadLegacyLog(strings.NewReader(input))

	require.NoError(t, err)
	assert.Equal(t, []ledger.Event{
		{UserID: "42", Field: ledger.FieldArrival, At: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)},
		{UserID: "42", Field: ledger.FieldDeparture, At: time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC)},
		{UserID: "7", Field: ledger.FieldArrival, At: time.Date(2024, 1, 2, 9, 15, 0, 0, time.UTC)},
	}, events)
}

func TestReadLegacyLog_Empty(t *testing.T) {
	events, err := ReadLegacyLog(strings.NewReader(""))

	require.NoError(t, err)
	assert.Empty(t, events)
}
