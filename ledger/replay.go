package ledger

import (
	"context"
	"time"
)

// Event is one timestamped arrival or departure, as kept by the legacy
// append-only IN/OUT log.
type Event struct {
	UserID UserID
	Field  Field
	At     time.Time
}

// Replay reconciles events in order and persists the result in a single
// rewrite. Events that fail validation are skipped. It returns the number
// of events applied.
//
// Replaying is lossy compared to the append-log: a later arrival on the
// same day overwrites an earlier one, exactly as a live Arrive would.
func (l *Ledger) Replay(ctx context.Context, events []Event) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.store.LoadAll(ctx)
	if err != nil {
		return 0, storeErr("load", err)
	}

	applied := 0
	for _, ev := range events {
		u, err := Update{
			UserID: ev.UserID,
			Day:    ev.At.Format(DayLayout),
			Field:  ev.Field,
			Time:   ev.At.Format(ClockLayout),
		}.normalize()
		if err != nil {
			l.logger.Warn("replay: skipping event", "user", ev.UserID, "error", err)
			continue
		}
		next, _, _, err := l.reconcile(records, u)
		if err != nil {
			l.logger.Warn("replay: skipping event", "user", ev.UserID, "day", u.Day, "error", err)
			continue
		}
		records = next
		applied++
	}

	if applied == 0 {
		return 0, nil
	}
	if err := l.store.RewriteAll(ctx, records); err != nil {
		return 0, storeErr("rewrite", err)
	}
	l.logger.Info("events replayed", "applied", applied, "skipped", len(events)-applied)
	return applied, nil
}
