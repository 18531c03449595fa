// Package kafka publishes ledger change events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/warp/attendance-ledger/ledger"
)

// Event types.
const (
	EventRecordUpdated = "record_updated"
	EventUserPurged    = "user_purged"
)

// Event is the JSON message value. Messages are keyed by user and the
// writer hashes the key to pick the partition, so one user's events stay
// ordered within a partition.
type Event struct {
	ID         string         `json:"event_id"`
	Type       string         `json:"type"`
	UserID     ledger.UserID  `json:"user_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Field      string         `json:"field,omitempty"`
	Record     *ledger.Record `json:"record,omitempty"`
	Removed    int            `json:"removed,omitempty"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher implements ledger.Notifier.
type Publisher struct {
	writer messageWriter
	now    func() time.Time
}

// batchTimeout bounds how long a synchronous publish waits for a batch to
// fill. Publishing runs on the request path after the ledger lock is
// released.
const batchTimeout = 10 * time.Millisecond

// NewPublisher writes to topic on brokers.
func NewPublisher(brokers []string, topic string) *Publisher {
	return newPublisher(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: batchTimeout,
	}, time.Now)
}

func newPublisher(w messageWriter, now func() time.Time) *Publisher {
	return &Publisher{writer: w, now: now}
}

// RecordUpdated publishes a record_updated event.
func (p *Publisher) RecordUpdated(ctx context.Context, rec ledger.Record, field ledger.Field) error {
	return p.publish(ctx, Event{
		Type:   EventRecordUpdated,
		UserID: rec.UserID,
		Field:  field.String(),
		Record: &rec,
	})
}

// UserPurged publishes a user_purged event.
func (p *Publisher) UserPurged(ctx context.Context, userID ledger.UserID, removed int) error {
	return p.publish(ctx, Event{
		Type:    EventUserPurged,
		UserID:  userID,
		Removed: removed,
	})
}

func (p *Publisher) publish(ctx context.Context, ev Event) error {
	ev.ID = uuid.NewString()
	ev.OccurredAt = p.now().UTC()

	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.UserID),
		Value: data,
	}); err != nil {
		return fmt.Errorf("publishing %s: %w", ev.Type, err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ ledger.Notifier = (*Publisher)(nil)
