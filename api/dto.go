/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupled from the
  ledger types so the wire contract can evolve on its own.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Small response wrappers

VALIDATION:
  Validation is done by the ledger, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/attendance-ledger/ledger"
)

// =============================================================================
// RECORDS
// =============================================================================

// RecordDTO is one attendance day.
type RecordDTO struct {
	UserID         string `json:"user_id"`
	Day            string `json:"day"`
	ArrivalTime    string `json:"arrival_time,omitempty"`
	DepartureTime  string `json:"departure_time,omitempty"`
	WorkedDuration string `json:"worked_duration,omitempty"`
	Complete       bool   `json:"complete"`
}

func toRecordDTO(r ledger.Record) RecordDTO {
	return RecordDTO{
		UserID:         string(r.UserID),
		Day:            r.Day,
		ArrivalTime:    r.ArrivalTime,
		DepartureTime:  r.DepartureTime,
		WorkedDuration: r.WorkedDuration,
		Complete:       r.WorkedDuration != "",
	}
}

func toRecordDTOs(records []ledger.Record) []RecordDTO {
	dtos := make([]RecordDTO, len(records))
	for i, r := range records {
		dtos[i] = toRecordDTO(r)
	}
	return dtos
}

// HistoryDTO is the history listing for one user.
type HistoryDTO struct {
	UserID     string      `json:"user_id"`
	WindowDays int         `json:"window_days"`
	From       string      `json:"from"`
	Records    []RecordDTO `json:"records"`
	Summary    SummaryDTO  `json:"summary"`
}

// SummaryDTO totals a history listing.
type SummaryDTO struct {
	Days         int             `json:"days"`
	CompleteDays int             `json:"complete_days"`
	TotalHours   decimal.Decimal `json:"total_hours"`
}

// =============================================================================
// REQUESTS
// =============================================================================

// ManualTimeRequest corrects today's arrival or departure.
type ManualTimeRequest struct {
	Time string `json:"time"` // HH:MM
	Kind string `json:"kind"` // "in" | "out" | "arrival" | "departure"
}

// UpdateRequest sets one field of any day's record.
type UpdateRequest struct {
	Day   string `json:"day"`   // YYYY-MM-DD
	Field string `json:"field"` // "arrival" | "departure"
	Time  string `json:"time"`  // HH:MM:SS or HH:MM
}

// CommandRequest is a raw chat message.
type CommandRequest struct {
	Text string `json:"text"`
}

// =============================================================================
// RESPONSES
// =============================================================================

// CommandResponse is the bot reply and the keyboard to show with it.
type CommandResponse struct {
	Reply    string     `json:"reply"`
	Keyboard [][]string `json:"keyboard"`
}

// PurgeResponse reports how many records were deleted.
type PurgeResponse struct {
	Removed int `json:"removed"`
}

// CompactResponse reports how many duplicate records were merged away.
type CompactResponse struct {
	Merged int `json:"merged"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}
