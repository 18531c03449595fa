package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/warp/attendance-ledger/ledger"
)

// Legacy append-log actions.
const (
	ActionIn  = "IN"
	ActionOut = "OUT"
)

// ReadLegacyLog parses a three-field IN/OUT append log:
//
//	42,IN,2024-01-01 08:00:00
//	42,OUT,2024-01-01 12:30:00
//
// Rows with the wrong field count, an unknown action or an unparsable
// timestamp are skipped.
func ReadLegacyLog(r io.Reader) ([]ledger.Event, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var events []ledger.Event
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return nil, fmt.Errorf("reading legacy log: %w", err)
		}
		if ev, ok := parseLegacyRow(row); ok {
			events = append(events, ev)
		}
	}
	return events, nil
}

func parseLegacyRow(row []string) (ledger.Event, bool) {
	if len(row) != 3 || row[0] == "" {
		return ledger.Event{}, false
	}

	var field ledger.Field
	switch strings.ToUpper(row[1]) {
	case ActionIn:
		field = ledger.FieldArrival
	case ActionOut:
		field = ledger.FieldDeparture
	default:
		return ledger.Event{}, false
	}

	at, err := time.Parse(ledger.TimestampLayout, row[2])
	if err != nil {
		return ledger.Event{}, false
	}
	return ledger.Event{UserID: ledger.UserID(row[0]), Field: field, At: at}, true
}
