package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/warp/attendance-ledger/chat"
	"github.com/warp/attendance-ledger/ledger"
)

// NewInCommand creates the in command.
func NewInCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "in",
		Short: "Record arrival now",
		Long: `Record the current time as today's arrival for --user.

Examples:
  attendctl in --user 42
  attendctl in --user 42 --store sqlite --path ./attendance.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStamp(rootOpts, cmd, ledger.FieldArrival)
		},
	}
}

// NewOutCommand creates the out command.
func NewOutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "out",
		Short: "Record departure now",
		Long: `Record the current time as today's departure for --user and print
the worked duration when an arrival exists.

Examples:
  attendctl out --user 42`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStamp(rootOpts, cmd, ledger.FieldDeparture)
		},
	}
}

func runStamp(opts *RootOptions, cmd *cobra.Command, field ledger.Field) error {
	user, err := opts.requireUser()
	if err != nil {
		return err
	}
	s, err := opts.open(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	ctx := context.Background()
	var rec ledger.Record
	if field == ledger.FieldArrival {
		rec, err = s.ledger.Arrive(ctx, user)
	} else {
		rec, err = s.ledger.Depart(ctx, user)
	}
	if err != nil {
		return ledgerError("failed to record "+field.String(), err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return out.Print(chat.RenderRecorded(rec, field), rec)
}

// NewSetTimeCommand creates the settime command.
func NewSetTimeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "settime HH:MM in|out",
		Short: "Correct today's arrival or departure",
		Long: `Set today's arrival (in) or departure (out) to a wall-clock time.
The worked duration is recomputed when both times are present.

Examples:
  attendctl settime 08:30 in --user 42
  attendctl settime 17:15 out --user 42`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetTime(rootOpts, cmd, args[0], args[1])
		},
	}
}

func runSetTime(opts *RootOptions, cmd *cobra.Command, hhmm, kind string) error {
	user, err := opts.requireUser()
	if err != nil {
		return err
	}
	field, err := ledger.ParseField(kind)
	if err != nil {
		return ledgerError("invalid kind", err)
	}

	s, err := opts.open(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	rec, err := s.ledger.SetTime(context.Background(), user, hhmm, field)
	if err != nil {
		return ledgerError("failed to set time", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return out.Print(chat.RenderManual(rec, field), rec)
}
