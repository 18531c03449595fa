package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/warp/attendance-ledger/chat"
	"github.com/warp/attendance-ledger/store/csvfile"
)

// NewClearLogCommand creates the clearlog command.
func NewClearLogCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clearlog",
		Short: "Delete all of a user's records",
		Long: `Delete every record of --user. Other users' records are untouched.

Examples:
  attendctl clearlog --user 42`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := rootOpts.requireUser()
			if err != nil {
				return err
			}
			s, err := rootOpts.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			removed, err := s.ledger.Purge(context.Background(), user)
			if err != nil {
				return ledgerError("failed to purge records", err)
			}

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return out.Print(chat.RenderPurge(removed), map[string]int{"removed": removed})
		},
	}
}

// NewCompactCommand creates the compact command.
func NewCompactCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "compact",
		Short: "Merge duplicate (user, day) records",
		Long: `Merge every group of records sharing a user and day into the first
one, filling its missing times from the others, and rewrite the store.

Examples:
  attendctl compact --path ./attendance.csv`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			merged, err := s.ledger.Compact(context.Background())
			if err != nil {
				return ledgerError("failed to compact store", err)
			}

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return out.Print(fmt.Sprintf("Merged %d duplicate record(s).", merged), map[string]int{"merged": merged})
		},
	}
}

// NewImportLegacyCommand creates the import-legacy command.
func NewImportLegacyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import-legacy FILE",
		Short: "Import an IN/OUT append log",
		Long: `Read a legacy log of "user_id,IN|OUT,YYYY-MM-DD HH:MM:SS" rows and
reconcile every event into the store in one rewrite. Malformed rows are
skipped.

Examples:
  attendctl import-legacy ./attendance_log.csv --path ./attendance.csv`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open legacy log", err)
			}
			defer f.Close()

			events, err := csvfile.ReadLegacyLog(f)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read legacy log", err)
			}

			s, err := rootOpts.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			applied, err := s.ledger.Replay(context.Background(), events)
			if err != nil {
				return ledgerError("failed to import legacy log", err)
			}

			out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return out.Print(
				fmt.Sprintf("Imported %d of %d event(s).", applied, len(events)),
				map[string]int{"applied": applied, "read": len(events)},
			)
		},
	}
}
