package chat

import (
	"fmt"
	"strings"

	"github.com/warp/attendance-ledger/ledger"
)

const helpText = `Hi! I keep track of when you arrive and leave.
/in - record your arrival now
/out - record your departure now
/settime HH:MM in|out - set today's arrival or departure by hand
/log [days] - show your records for the last 31 days
/clearlog - delete all of your records`

// RenderRecorded confirms an arrival or departure taken from the clock.
func RenderRecorded(rec ledger.Record, field ledger.Field) string {
	at := rec.Day + " " + rec.Get(field)
	if field == ledger.FieldArrival {
		return fmt.Sprintf("Arrival recorded at %s.", at)
	}
	if rec.WorkedDuration == "" {
		return fmt.Sprintf("Departure recorded at %s, but there is no arrival for that day to compute worked time.", at)
	}
	return fmt.Sprintf("Departure recorded at %s. Worked: %s.", at, rec.WorkedDuration)
}

// RenderManual confirms a manual correction.
func RenderManual(rec ledger.Record, field ledger.Field) string {
	label := "Arrival"
	if field == ledger.FieldDeparture {
		label = "Departure"
	}
	msg := fmt.Sprintf("%s set to %s on %s.", label, rec.Get(field), rec.Day)
	if rec.WorkedDuration != "" {
		msg += fmt.Sprintf(" Worked: %s.", rec.WorkedDuration)
	}
	return msg
}

// RenderHistory lists records, one day per line, followed by a total.
func RenderHistory(records []ledger.Record, windowDays int) string {
	if windowDays <= 0 {
		windowDays = ledger.DefaultWindowDays
	}
	if len(records) == 0 {
		return fmt.Sprintf("No records for the last %d days.", windowDays)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Your records for the last %d days (%d in total):\n", windowDays, len(records))
	for _, r := range records {
		fmt.Fprintf(&b, "%s  in %s  out %s  worked %s\n",
			r.Day, orDash(r.ArrivalTime), orDash(r.DepartureTime), orDash(r.WorkedDuration))
	}

	s := ledger.Summarize(records)
	fmt.Fprintf(&b, "Total worked: %sh over %d complete day(s).", s.TotalHours.StringFixed(2), s.CompleteDays)
	return b.String()
}

// RenderPurge confirms a purge.
func RenderPurge(removed int) string {
	if removed == 0 {
		return "You have no records, nothing was deleted."
	}
	return fmt.Sprintf("Your records have been deleted (%d removed).", removed)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
