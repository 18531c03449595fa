/*
Package chat turns chat messages into ledger operations and renders the
replies.

COMMANDS:
  /start, /help            usage text
  /in, /arrival            record arrival now
  /out, /departure         record departure now
  /settime HH:MM in|out    correct today's arrival or departure
  /log [days], /history    list the last 31 (or N) days
  /clearlog, /purge        delete all of the caller's records

  Keyboard buttons ("Arrival", "Departure", "History", "Clear log") map to
  the same commands. A Telegram-style "@botname" suffix on the command is
  ignored.

SEE ALSO:
  - bot.go: Executes commands against the ledger
  - render.go: Reply text
*/
package chat

import (
	"errors"
	"strconv"
	"strings"

	"github.com/warp/attendance-ledger/ledger"
)

// Kind classifies an inbound message.
type Kind int

const (
	KindStart Kind = iota
	KindArrival
	KindDeparture
	KindManualTime
	KindHistory
	KindPurge
)

func (k Kind) String() string {
	switch k {
	case KindStart:
		return "start"
	case KindArrival:
		return "arrival"
	case KindDeparture:
		return "departure"
	case KindManualTime:
		return "manual_time"
	case KindHistory:
		return "history"
	case KindPurge:
		return "purge"
	}
	return "unknown"
}

// Command is a classified message.
type Command struct {
	Kind Kind

	// KindManualTime only.
	Time  string
	Field ledger.Field

	// KindHistory only; 0 means the default window.
	WindowDays int
}

// Keyboard button labels.
const (
	ButtonArrival   = "Arrival"
	ButtonDeparture = "Departure"
	ButtonHistory   = "History"
	ButtonClear     = "Clear log"
)

// Keyboard returns the reply keyboard layout, one slice per row.
func Keyboard() [][]string {
	return [][]string{
		{ButtonArrival, ButtonDeparture},
		{ButtonHistory, ButtonClear},
	}
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrArgCount       = errors.New("wrong number of arguments")
	ErrUnknownAction  = errors.New("unknown action keyword")
)

// UsageError carries the corrective message shown to the user.
type UsageError struct {
	Message string
	Err     error
}

func (e *UsageError) Error() string { return e.Message }

func (e *UsageError) Unwrap() error { return e.Err }

// Is makes usage errors count as ledger validation errors.
func (e *UsageError) Is(target error) bool { return target == ledger.ErrValidation }

const (
	msgUnknown     = "Unknown command. Send /help to see what I understand."
	msgSetTimeArgs = "Usage: /settime HH:MM in|out"
	msgSetTimeKind = "The second argument must be 'in' or 'out'."
	msgTimeFormat  = "Time must be in HH:MM format (e.g. 08:30)."
	msgLogArgs     = "Usage: /log [days]"
)

// =============================================================================
// PARSE
// =============================================================================

// Parse classifies a chat message.
func Parse(text string) (Command, error) {
	text = strings.TrimSpace(text)

	switch strings.ToLower(text) {
	case strings.ToLower(ButtonArrival):
		return Command{Kind: KindArrival}, nil
	case strings.ToLower(ButtonDeparture):
		return Command{Kind: KindDeparture}, nil
	case strings.ToLower(ButtonHistory):
		return Command{Kind: KindHistory}, nil
	case strings.ToLower(ButtonClear):
		return Command{Kind: KindPurge}, nil
	}

	if !strings.HasPrefix(text, "/") {
		return Command{}, &UsageError{Message: msgUnknown, Err: ErrUnknownCommand}
	}

	fields := strings.Fields(text)
	name := strings.ToLower(strings.TrimPrefix(fields[0], "/"))
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	args := fields[1:]

	switch name {
	case "start", "help":
		return Command{Kind: KindStart}, nil
	case "in", "arrival":
		return Command{Kind: KindArrival}, nil
	case "out", "departure":
		return Command{Kind: KindDeparture}, nil
	case "settime":
		return parseSetTime(args)
	case "log", "history":
		return parseLog(args)
	case "clearlog", "purge":
		return Command{Kind: KindPurge}, nil
	}
	return Command{}, &UsageError{Message: msgUnknown, Err: ErrUnknownCommand}
}

func parseSetTime(args []string) (Command, error) {
	if len(args) != 2 {
		return Command{}, &UsageError{Message: msgSetTimeArgs, Err: ErrArgCount}
	}

	field, err := ledger.ParseField(args[1])
	if err != nil {
		return Command{}, &UsageError{Message: msgSetTimeKind, Err: ErrUnknownAction}
	}
	if _, err := ledger.ParseShortClock(args[0]); err != nil {
		return Command{}, &UsageError{Message: msgTimeFormat, Err: ledger.ErrInvalidTime}
	}
	return Command{Kind: KindManualTime, Time: args[0], Field: field}, nil
}

func parseLog(args []string) (Command, error) {
	switch len(args) {
	case 0:
		return Command{Kind: KindHistory}, nil
	case 1:
		days, err := strconv.Atoi(args[0])
		if err != nil || days <= 0 {
			return Command{}, &UsageError{Message: msgLogArgs, Err: ErrArgCount}
		}
		return Command{Kind: KindHistory, WindowDays: days}, nil
	}
	return Command{}, &UsageError{Message: msgLogArgs, Err: ErrArgCount}
}
