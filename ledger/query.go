package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// HISTORY - Bounded-window read for one user
// =============================================================================

// History returns userID's records whose day falls inside the last
// windowDays calendar days, today included. windowDays <= 0 means
// DefaultWindowDays. Records keep store order. Rows with an unparsable day
// are skipped.
func (l *Ledger) History(ctx context.Context, userID UserID, windowDays int) ([]Record, error) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}

	l.mu.Lock()
	records, err := l.store.LoadAll(ctx)
	l.mu.Unlock()
	if err != nil {
		return nil, storeErr("load", err)
	}

	if len(records) == 0 {
		l.logEmptyStore(ctx, userID)
		return []Record{}, nil
	}

	from := windowStart(l.now(), windowDays)
	result := []Record{}
	for _, r := range records {
		if r.UserID != userID {
			continue
		}
		day, err := ParseDay(r.Day)
		if err != nil {
			continue
		}
		if day.Before(from) {
			continue
		}
		result = append(result, r)
	}
	return result, nil
}

// WindowStart returns the first day History includes for windowDays, as
// YYYY-MM-DD.
func (l *Ledger) WindowStart(windowDays int) string {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	return windowStart(l.now(), windowDays).Format(DayLayout)
}

// logEmptyStore distinguishes "no store yet" from "store is empty" for
// diagnostics. Both look the same to callers.
func (l *Ledger) logEmptyStore(ctx context.Context, userID UserID) {
	p, ok := l.store.(Prober)
	if !ok {
		return
	}
	exists, err := p.Exists(ctx)
	switch {
	case err != nil:
		l.logger.Debug("history: store probe failed", "user", userID, "error", err)
	case !exists:
		l.logger.Debug("history: no store yet", "user", userID)
	default:
		l.logger.Debug("history: store is empty", "user", userID)
	}
}

// =============================================================================
// SUMMARY - Totals over a set of records
// =============================================================================

// Summary aggregates a history listing.
type Summary struct {
	Days         int             `json:"days"`
	CompleteDays int             `json:"complete_days"`
	TotalHours   decimal.Decimal `json:"total_hours"`
}

var minutesPerHour = decimal.NewFromInt(60)

// Summarize totals the worked durations of records. Durations that cannot
// be parsed count as zero.
func Summarize(records []Record) Summary {
	s := Summary{TotalHours: decimal.Zero}
	minutes := decimal.Zero
	for _, r := range records {
		s.Days++
		if r.WorkedDuration == "" {
			continue
		}
		d, err := ParseWorked(r.WorkedDuration)
		if err != nil {
			continue
		}
		s.CompleteDays++
		minutes = minutes.Add(decimal.NewFromInt(int64(d.Minutes())))
	}
	s.TotalHours = minutes.Div(minutesPerHour).Round(2)
	return s
}
