// Command attendctl records and inspects attendance from the shell.
package main

import (
	"fmt"
	"os"

	"github.com/warp/attendance-ledger/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
