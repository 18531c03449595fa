package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-ledger/ledger"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

var fixedNow = time.Date(2024, time.January, 1, 12, 30, 0, 0, time.UTC)

func TestPublisher_RecordUpdated(t *testing.T) {
	w := &recordingWriter{}
	p := newPublisher(w, func() time.Time { return fixedNow })

	rec := ledger.Record{
		UserID: "42", Day: "2024-01-01",
		ArrivalTime: "08:00:00", DepartureTime: "12:30:00", WorkedDuration: "4h 30m",
	}
	require.NoError(t, p.RecordUpdated(context.Background(), rec, ledger.FieldDeparture))
	require.Len(t, w.msgs, 1)

	assert.Equal(t, []byte("42"), w.msgs[0].Key)

	var ev Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &ev))
	assert.Equal(t, EventRecordUpdated, ev.Type)
	assert.Equal(t, "departure", ev.Field)
	assert.Equal(t, fixedNow, ev.OccurredAt)
	require.NotNil(t, ev.Record)
	assert.Equal(t, rec, *ev.Record)
	_, err := uuid.Parse(ev.ID)
	assert.NoError(t, err)
}

func TestPublisher_UserPurged(t *testing.T) {
	w := &recordingWriter{}
	p := newPublisher(w, func() time.Time { return fixedNow })

	require.NoError(t, p.UserPurged(context.Background(), "42", 3))
	require.NoError(t, p.UserPurged(context.Background(), "42", 1))
	require.Len(t, w.msgs, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &first))
	require.NoError(t, json.Unmarshal(w.msgs[1].Value, &second))

	assert.Equal(t, EventUserPurged, first["type"])
	assert.Equal(t, float64(3), first["removed"])
	assert.NotContains(t, first, "record")
	assert.NotEqual(t, first["event_id"], second["event_id"])
}

func TestPublisher_WriteError(t *testing.T) {
	p := newPublisher(&recordingWriter{err: errors.New("broker down")}, time.Now)

	err := p.UserPurged(context.Background(), "42", 1)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "user_purged")
	assert.Contains(t, err.Error(), "broker down")
}

func TestNewPublisher_PartitionsByUser(t *testing.T) {
	// GIVEN: A publisher built for a real broker list
	// WHEN: Inspecting its writer
	// THEN: Partitions are chosen from the message key, and batches flush quickly

	p := NewPublisher([]string{"localhost:9092"}, "attendance-events")
	defer p.Close()

	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.IsType(t, &kafka.Hash{}, w.Balancer)
	assert.Equal(t, batchTimeout, w.BatchTimeout)

	partitions := []int{0, 1, 2, 3, 4, 5, 6, 7}
	msg := kafka.Message{Key: []byte("42")}
	first := w.Balancer.Balance(msg, partitions...)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, w.Balancer.Balance(msg, partitions...))
	}
}
