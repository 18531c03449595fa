/*
Package ledger provides the attendance reconciliation engine.

PURPOSE:
  Keeps one Record per (user, day) and merges partial updates into it.
  Arrivals, departures and manual corrections all flow through the same
  find-or-create path, and the worked duration is derived whenever both
  boundary times are known.

KEY CONCEPTS IN THIS FILE (types.go):
  - Record: the unit of storage, one row per (user, day)
  - Key: the uniqueness key of a Record
  - Field: which boundary time an update targets

INVARIANTS:
  1. At most one Record per (UserID, Day)
  2. WorkedDuration is non-empty iff both boundary times are non-empty
     at the time of the last write touching the record
  3. WorkedDuration is derived, never set directly

SEE ALSO:
  - ledger.go: Reconciliation engine
  - store.go: Persistence interface
  - query.go: History window and summary
*/
package ledger

import (
	"fmt"
	"strings"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// UserID is the opaque identifier assigned by the transport layer.
type UserID string

// Key identifies the reconciliation bucket of a record.
type Key struct {
	UserID UserID
	Day    string
}

// =============================================================================
// RECORD - One attendance entry per user per day
// =============================================================================

// Record is a single (user, day) attendance entry. Empty strings mean
// "not recorded yet".
type Record struct {
	UserID         UserID `json:"user_id"`
	Day            string `json:"day"`
	ArrivalTime    string `json:"arrival_time"`
	DepartureTime  string `json:"departure_time"`
	WorkedDuration string `json:"worked_duration"`
}

// Key returns the record's uniqueness key.
func (r Record) Key() Key { return Key{UserID: r.UserID, Day: r.Day} }

// Complete reports whether both boundary times are recorded.
func (r Record) Complete() bool { return r.ArrivalTime != "" && r.DepartureTime != "" }

// Get returns the value of a boundary field.
func (r Record) Get(f Field) string {
	if f == FieldDeparture {
		return r.DepartureTime
	}
	return r.ArrivalTime
}

// set overwrites a boundary field. Callers recompute the duration.
func (r *Record) set(f Field, value string) {
	if f == FieldDeparture {
		r.DepartureTime = value
		return
	}
	r.ArrivalTime = value
}

// fill copies the boundary times of other into r where r has none.
// WorkedDuration is never copied; it is re-derived by the caller.
// Returns true if anything changed.
func (r *Record) fill(other Record) bool {
	changed := false
	if r.ArrivalTime == "" && other.ArrivalTime != "" {
		r.ArrivalTime = other.ArrivalTime
		changed = true
	}
	if r.DepartureTime == "" && other.DepartureTime != "" {
		r.DepartureTime = other.DepartureTime
		changed = true
	}
	return changed
}

// =============================================================================
// FIELD - Which boundary an update targets
// =============================================================================

// Field names one of the two boundary times of a daily record.
type Field int

const (
	// FieldArrival is the start of the working day.
	FieldArrival Field = iota
	// FieldDeparture is the end of the working day.
	FieldDeparture
)

// String returns "arrival" or "departure".
func (f Field) String() string {
	switch f {
	case FieldArrival:
		return "arrival"
	case FieldDeparture:
		return "departure"
	default:
		return fmt.Sprintf("Field(%d)", int(f))
	}
}

// ParseField accepts "arrival"/"in" and "departure"/"out", case-insensitive.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "arrival", "in":
		return FieldArrival, nil
	case "departure", "out":
		return FieldDeparture, nil
	}
	return 0, &ValidationError{Field: "kind", Value: s, Err: ErrInvalidField}
}

// Valid reports whether f is one of the two boundary fields.
func (f Field) Valid() bool { return f == FieldArrival || f == FieldDeparture }
