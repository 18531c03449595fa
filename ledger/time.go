package ledger

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// WALL-CLOCK FORMATS - All times are local wall-clock strings, no zones
// =============================================================================

const (
	DayLayout        = "2006-01-02"
	ClockLayout      = "15:04:05"
	ShortClockLayout = "15:04"
	TimestampLayout  = DayLayout + " " + ClockLayout
)

// DefaultWindowDays is the history window used when none is given.
const DefaultWindowDays = 31

// ParseDay validates a YYYY-MM-DD day string.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "day", Value: s, Err: ErrInvalidDay}
	}
	return t, nil
}

// NormalizeClock accepts HH:MM:SS or HH:MM and returns HH:MM:SS.
func NormalizeClock(s string) (string, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(ClockLayout, s); err == nil {
		return t.Format(ClockLayout), nil
	}
	if t, err := time.Parse(ShortClockLayout, s); err == nil {
		return t.Format(ClockLayout), nil
	}
	return "", &ValidationError{Field: "time", Value: s, Err: ErrInvalidTime}
}

// ParseShortClock accepts exactly HH:MM, the manual correction format.
func ParseShortClock(s string) (string, error) {
	t, err := time.Parse(ShortClockLayout, strings.TrimSpace(s))
	if err != nil {
		return "", &ValidationError{Field: "time", Value: s, Err: ErrInvalidTime}
	}
	return t.Format(ClockLayout), nil
}

// Elapsed returns departure - arrival on the given day. The result may be
// negative when departure precedes arrival.
func Elapsed(day, arrival, departure string) (time.Duration, error) {
	from, err := time.Parse(TimestampLayout, day+" "+arrival)
	if err != nil {
		return 0, &MalformedRecordError{Day: day, Field: FieldArrival, Value: arrival}
	}
	to, err := time.Parse(TimestampLayout, day+" "+departure)
	if err != nil {
		return 0, &MalformedRecordError{Day: day, Field: FieldDeparture, Value: departure}
	}
	return to.Sub(from), nil
}

// FormatDuration renders whole hours and minutes, truncating seconds:
// 8h45m59s -> "8h 45m".
func FormatDuration(d time.Duration) string {
	secs := int64(d / time.Second)
	return fmt.Sprintf("%dh %dm", secs/3600, (secs%3600)/60)
}

// ParseWorked parses a "<H>h <M>m" string back into a duration.
func ParseWorked(s string) (time.Duration, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%dh %dm", &h, &m); err != nil {
		return 0, fmt.Errorf("%w: worked duration %q", ErrMalformedRecord, s)
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute, nil
}

// windowStart returns the first day included in a window of n days ending
// at now, today counted as the window's last day. n < 1 is treated as 1.
func windowStart(now time.Time, n int) time.Time {
	if n < 1 {
		n = 1
	}
	y, m, d := now.AddDate(0, 0, -(n - 1)).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
