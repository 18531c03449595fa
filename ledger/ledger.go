/*
ledger.go - Reconciliation engine

PURPOSE:
  Applies (user, day, field, time) updates to the record set. Every
  mutation is a full load -> mutate -> write cycle under one process-wide
  lock, so concurrent requests can never clobber each other's rewrites.

RECONCILIATION:
  1. Load all records
  2. Find the first record for (user, day)
  3. Found: overwrite the field (last write wins), fold any later
     duplicates for the same key into it, recompute the duration
  4. Not found: create a record holding only that field
  5. Persist: Append on create, RewriteAll on update

WORKED DURATION:
  departure - arrival on the same day, whole hours and whole minutes,
  truncated. A departure at or before the arrival yields "0h 0m"; the times
  are kept as given so a later correction can fix them.

SEE ALSO:
  - query.go: History window
  - purge.go: Per-user deletion
  - compact.go: Store-wide duplicate merge
  - replay.go: Legacy IN/OUT import
*/
package ledger

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// =============================================================================
// LEDGER
// =============================================================================

// Ledger is the reconciliation engine. It is safe for concurrent use.
type Ledger struct {
	store    Store
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time

	// mu serializes every load/mutate/write cycle.
	mu sync.Mutex
}

type Option func(*Ledger)

// WithClock overrides the wall clock used by Arrive, Depart, SetTime and
// History.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func WithNotifier(n Notifier) Option {
	return func(l *Ledger) {
		if n != nil {
			l.notifier = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a ledger backed by store.
func New(store Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:    store,
		notifier: nopNotifier{},
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Now returns the ledger's current wall-clock time.
func (l *Ledger) Now() time.Time { return l.now() }

// Today returns the current day as YYYY-MM-DD.
func (l *Ledger) Today() string { return l.now().Format(DayLayout) }

// =============================================================================
// UPDATE - A single reconciliation request
// =============================================================================

// Update targets one boundary field of one (user, day) record.
type Update struct {
	UserID UserID
	Day    string
	Field  Field
	Time   string
}

// normalize validates u and returns it with Time in HH:MM:SS form.
func (u Update) normalize() (Update, error) {
	if strings.TrimSpace(string(u.UserID)) == "" {
		return Update{}, &ValidationError{Field: "user", Value: string(u.UserID), Err: ErrEmptyUser}
	}
	if _, err := ParseDay(u.Day); err != nil {
		return Update{}, err
	}
	if !u.Field.Valid() {
		return Update{}, &ValidationError{Field: "kind", Value: u.Field.String(), Err: ErrInvalidField}
	}
	clock, err := NormalizeClock(u.Time)
	if err != nil {
		return Update{}, err
	}
	u.Time = clock
	return u, nil
}

// =============================================================================
// OPERATIONS
// =============================================================================

// ApplyUpdate sets field to timeValue on the (userID, day) record, creating
// it if needed, and returns the resulting record.
func (l *Ledger) ApplyUpdate(ctx context.Context, userID UserID, day string, field Field, timeValue string) (Record, error) {
	u, err := Update{UserID: userID, Day: day, Field: field, Time: timeValue}.normalize()
	if err != nil {
		return Record{}, err
	}

	rec, created, err := l.apply(ctx, u)
	if err != nil {
		l.logger.Error("reconciliation failed",
			"user", u.UserID, "day", u.Day, "field", u.Field, "error", err)
		return Record{}, err
	}

	l.logger.Info("record reconciled",
		"user", rec.UserID, "day", rec.Day, "field", u.Field, "time", u.Time,
		"created", created, "worked", rec.WorkedDuration)
	if err := l.notifier.RecordUpdated(ctx, rec, u.Field); err != nil {
		l.logger.Warn("record update notification failed", "user", rec.UserID, "error", err)
	}
	return rec, nil
}

// Arrive records the current time as today's arrival.
func (l *Ledger) Arrive(ctx context.Context, userID UserID) (Record, error) {
	now := l.now()
	return l.ApplyUpdate(ctx, userID, now.Format(DayLayout), FieldArrival, now.Format(ClockLayout))
}

// Depart records the current time as today's departure.
func (l *Ledger) Depart(ctx context.Context, userID UserID) (Record, error) {
	now := l.now()
	return l.ApplyUpdate(ctx, userID, now.Format(DayLayout), FieldDeparture, now.Format(ClockLayout))
}

// SetTime applies a manual HH:MM correction to today's record.
func (l *Ledger) SetTime(ctx context.Context, userID UserID, hhmm string, field Field) (Record, error) {
	clock, err := ParseShortClock(hhmm)
	if err != nil {
		return Record{}, err
	}
	return l.ApplyUpdate(ctx, userID, l.Today(), field, clock)
}

func (l *Ledger) apply(ctx context.Context, u Update) (Record, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.store.LoadAll(ctx)
	if err != nil {
		return Record{}, false, storeErr("load", err)
	}

	records, idx, created, err := l.reconcile(records, u)
	if err != nil {
		return Record{}, false, err
	}

	if created {
		if err := l.store.Append(ctx, records[idx]); err != nil {
			return Record{}, false, storeErr("append", err)
		}
	} else if err := l.store.RewriteAll(ctx, records); err != nil {
		return Record{}, false, storeErr("rewrite", err)
	}
	return records[idx], created, nil
}

// reconcile applies u to records in memory. It returns the new slice, the
// index of the touched record and whether it was created.
func (l *Ledger) reconcile(records []Record, u Update) ([]Record, int, bool, error) {
	idx := -1
	for i := range records {
		if records[i].UserID == u.UserID && records[i].Day == u.Day {
			idx = i
			break
		}
	}

	if idx < 0 {
		rec := Record{UserID: u.UserID, Day: u.Day}
		rec.set(u.Field, u.Time)
		n := len(records)
		return append(records, rec), n, true, nil
	}

	// Work on a copy so records is untouched if derive fails.
	rec := records[idx]
	for _, r := range records[idx+1:] {
		if r.Key() == rec.Key() {
			rec.fill(r)
		}
	}
	rec.set(u.Field, u.Time)
	if err := l.derive(&rec); err != nil {
		return nil, 0, false, err
	}

	records = l.dropDuplicates(records, idx)
	records[idx] = rec
	return records, idx, false, nil
}

// dropDuplicates removes every record after idx that shares its key.
func (l *Ledger) dropDuplicates(records []Record, idx int) []Record {
	key := records[idx].Key()
	out := records[:idx+1]
	for _, r := range records[idx+1:] {
		if r.Key() != key {
			out = append(out, r)
		}
	}
	if dropped := len(records) - len(out); dropped > 0 {
		l.logger.Warn("merged duplicate records", "user", key.UserID, "day", key.Day, "dropped", dropped)
	}
	return out
}

// derive recomputes WorkedDuration when both boundary times are present.
// An incomplete record is left as is.
func (l *Ledger) derive(rec *Record) error {
	if !rec.Complete() {
		return nil
	}
	d, err := Elapsed(rec.Day, rec.ArrivalTime, rec.DepartureTime)
	if err != nil {
		return err
	}
	if d < 0 {
		l.logger.Warn("departure precedes arrival, clamping worked duration",
			"user", rec.UserID, "day", rec.Day,
			"arrival", rec.ArrivalTime, "departure", rec.DepartureTime)
		d = 0
	}
	rec.WorkedDuration = FormatDuration(d)
	return nil
}
