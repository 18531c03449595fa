/*
handlers.go - HTTP API handlers for the attendance ledger

PURPOSE:
  Exposes the ledger via REST API. Handles HTTP request/response, JSON
  serialization, and delegates to the ledger.

ENDPOINTS:
  Attendance:
    POST   /api/users/{id}/arrival     Record arrival now
    POST   /api/users/{id}/departure   Record departure now
    PUT    /api/users/{id}/times       Manual HH:MM correction for today
    POST   /api/users/{id}/records     Set one field of any day

  Queries:
    GET    /api/users/{id}/history     Last 31 days (?days=N)

  Deletion:
    DELETE /api/users/{id}/records     Purge all of a user's records

  Chat:
    POST   /api/users/{id}/commands    Run a chat command, return the reply

  Admin:
    POST   /api/admin/compact          Merge duplicate (user, day) records

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, malformed stored times
  - 500: Store failures

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/warp/attendance-ledger/chat"
	"github.com/warp/attendance-ledger/ledger"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Ledger     *ledger.Ledger
	Bot        *chat.Bot
	WindowDays int

	logger *slog.Logger
}

// NewHandler creates a handler. windowDays <= 0 uses the default window.
func NewHandler(l *ledger.Ledger, windowDays int, logger *slog.Logger) *Handler {
	if windowDays <= 0 {
		windowDays = ledger.DefaultWindowDays
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Ledger:     l,
		Bot:        chat.NewBot(l, windowDays, logger),
		WindowDays: windowDays,
		logger:     logger,
	}
}

// Health reports liveness.
// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

// RecordArrival stamps today's arrival with the current time.
// POST /api/users/{id}/arrival
func (h *Handler) RecordArrival(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Ledger.Arrive(r.Context(), userParam(r))
	if err != nil {
		h.writeLedgerError(w, "Failed to record arrival", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(rec))
}

// RecordDeparture stamps today's departure with the current time.
// POST /api/users/{id}/departure
func (h *Handler) RecordDeparture(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Ledger.Depart(r.Context(), userParam(r))
	if err != nil {
		h.writeLedgerError(w, "Failed to record departure", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(rec))
}

// SetTime applies a manual HH:MM correction to today's record.
// PUT /api/users/{id}/times
func (h *Handler) SetTime(w http.ResponseWriter, r *http.Request) {
	var req ManualTimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	field, err := ledger.ParseField(req.Kind)
	if err != nil {
		h.writeLedgerError(w, "Invalid kind", err)
		return
	}

	rec, err := h.Ledger.SetTime(r.Context(), userParam(r), req.Time, field)
	if err != nil {
		h.writeLedgerError(w, "Failed to set time", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(rec))
}

// ApplyUpdate sets one boundary field of any day's record.
// POST /api/users/{id}/records
func (h *Handler) ApplyUpdate(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	field, err := ledger.ParseField(req.Field)
	if err != nil {
		h.writeLedgerError(w, "Invalid field", err)
		return
	}

	rec, err := h.Ledger.ApplyUpdate(r.Context(), userParam(r), req.Day, field, req.Time)
	if err != nil {
		h.writeLedgerError(w, "Failed to apply update", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(rec))
}

// =============================================================================
// QUERY HANDLERS
// =============================================================================

// GetHistory returns the user's records inside the history window.
// GET /api/users/{id}/history?days=31
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	days := h.WindowDays
	if s := r.URL.Query().Get("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "days must be a positive integer", err)
			return
		}
		days = n
	}

	userID := userParam(r)
	records, err := h.Ledger.History(r.Context(), userID, days)
	if err != nil {
		h.writeLedgerError(w, "Failed to load history", err)
		return
	}

	s := ledger.Summarize(records)
	writeJSON(w, http.StatusOK, HistoryDTO{
		UserID:     string(userID),
		WindowDays: days,
		From:       h.Ledger.WindowStart(days),
		Records:    toRecordDTOs(records),
		Summary: SummaryDTO{
			Days:         s.Days,
			CompleteDays: s.CompleteDays,
			TotalHours:   s.TotalHours,
		},
	})
}

// =============================================================================
// DELETION HANDLERS
// =============================================================================

// PurgeRecords deletes every record of the user.
// DELETE /api/users/{id}/records
func (h *Handler) PurgeRecords(w http.ResponseWriter, r *http.Request) {
	removed, err := h.Ledger.Purge(r.Context(), userParam(r))
	if err != nil {
		h.writeLedgerError(w, "Failed to purge records", err)
		return
	}
	writeJSON(w, http.StatusOK, PurgeResponse{Removed: removed})
}

// =============================================================================
// CHAT HANDLERS
// =============================================================================

// RunCommand executes a chat command for the user and returns the reply.
// Command errors are part of the reply, so this always answers 200 once
// the body decodes.
// POST /api/users/{id}/commands
func (h *Handler) RunCommand(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	reply := h.Bot.Handle(r.Context(), userParam(r), req.Text)
	writeJSON(w, http.StatusOK, CommandResponse{Reply: reply, Keyboard: chat.Keyboard()})
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// Compact merges duplicate (user, day) records store-wide.
// POST /api/admin/compact
func (h *Handler) Compact(w http.ResponseWriter, r *http.Request) {
	merged, err := h.Ledger.Compact(r.Context())
	if err != nil {
		h.writeLedgerError(w, "Failed to compact records", err)
		return
	}
	writeJSON(w, http.StatusOK, CompactResponse{Merged: merged})
}

// =============================================================================
// HELPERS
// =============================================================================

func userParam(r *http.Request) ledger.UserID {
	return ledger.UserID(chi.URLParam(r, "id"))
}

// writeLedgerError maps ledger errors to HTTP status codes.
func (h *Handler) writeLedgerError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, ledger.ErrMalformedRecord):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: message, Code: "MALFORMED_RECORD", Details: err.Error(),
		})
	case ledger.IsClientError(err):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: message, Code: "VALIDATION_ERROR", Details: err.Error(),
		})
	default:
		h.logger.Error(message, "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: message, Code: "STORE_FAILURE",
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
