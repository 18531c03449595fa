package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/warp/attendance-ledger/ledger"
)

const (
	msgStoreFailure = "Something went wrong, please try again."
	msgMalformed    = "A stored time for today is damaged. Set it again with /settime HH:MM in|out."
	msgMalformedAt  = "The stored %s time for today is damaged. Set it again with /settime HH:MM %s."
)

// Bot executes chat commands against a ledger.
type Bot struct {
	ledger     *ledger.Ledger
	windowDays int
	logger     *slog.Logger
}

// NewBot creates a bot. windowDays <= 0 uses the default history window.
func NewBot(l *ledger.Ledger, windowDays int, logger *slog.Logger) *Bot {
	if windowDays <= 0 {
		windowDays = ledger.DefaultWindowDays
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{ledger: l, windowDays: windowDays, logger: logger}
}

// Handle parses text and executes it for user, returning the reply.
func (b *Bot) Handle(ctx context.Context, user ledger.UserID, text string) string {
	cmd, err := Parse(text)
	if err != nil {
		return b.failure(user, err)
	}
	return b.Execute(ctx, user, cmd)
}

// Execute runs an already parsed command.
func (b *Bot) Execute(ctx context.Context, user ledger.UserID, cmd Command) string {
	switch cmd.Kind {
	case KindStart:
		return helpText

	case KindArrival:
		rec, err := b.ledger.Arrive(ctx, user)
		if err != nil {
			return b.failure(user, err)
		}
		return RenderRecorded(rec, ledger.FieldArrival)

	case KindDeparture:
		rec, err := b.ledger.Depart(ctx, user)
		if err != nil {
			return b.failure(user, err)
		}
		return RenderRecorded(rec, ledger.FieldDeparture)

	case KindManualTime:
		rec, err := b.ledger.SetTime(ctx, user, cmd.Time, cmd.Field)
		if err != nil {
			return b.failure(user, err)
		}
		return RenderManual(rec, cmd.Field)

	case KindHistory:
		days := cmd.WindowDays
		if days <= 0 {
			days = b.windowDays
		}
		records, err := b.ledger.History(ctx, user, days)
		if err != nil {
			return b.failure(user, err)
		}
		return RenderHistory(records, days)

	case KindPurge:
		removed, err := b.ledger.Purge(ctx, user)
		if err != nil {
			return b.failure(user, err)
		}
		return RenderPurge(removed)
	}
	return msgUnknown
}

// failure maps an error to the reply the user sees.
func (b *Bot) failure(user ledger.UserID, err error) string {
	var usage *UsageError
	var malformed *ledger.MalformedRecordError
	switch {
	case errors.As(err, &usage):
		return usage.Message
	case errors.Is(err, ledger.ErrInvalidTime):
		return msgTimeFormat
	case errors.As(err, &malformed):
		return fmt.Sprintf(msgMalformedAt, malformed.Field, settimeKind(malformed.Field))
	case errors.Is(err, ledger.ErrMalformedRecord):
		return msgMalformed
	case errors.Is(err, ledger.ErrEmptyUser):
		return msgUnknown
	}
	b.logger.Error("command failed", "user", user, "error", err)
	return msgStoreFailure
}

// settimeKind is the /settime argument that targets f.
func settimeKind(f ledger.Field) string {
	if f == ledger.FieldDeparture {
		return "out"
	}
	return "in"
}
