package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "attendctl", cmd.Use)
	assert.Contains(t, cmd.Long, "arrivals and departures")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"in", "out", "settime", "log", "clearlog", "compact", "import-legacy"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	userFlag := cmd.PersistentFlags().Lookup("user")
	require.NotNil(t, userFlag)
	assert.Equal(t, "u", userFlag.Shorthand)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	for _, name := range []string{"config", "store", "path", "verbose"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestLogCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	logCmd, _, err := cmd.Find([]string{"log"})
	require.NoError(t, err)

	daysFlag := logCmd.Flags().Lookup("days")
	require.NotNil(t, daysFlag)
	assert.Equal(t, "d", daysFlag.Shorthand)
}

// =============================================================================
// END-TO-END AGAINST A CSV STORE
// =============================================================================

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func execute(t *testing.T, c *fakeClock, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := newRootCommand(&RootOptions{now: c.Now})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestInOutLog(t *testing.T) {
	// GIVEN: An empty CSV store
	// WHEN: User 42 checks in at 08:00 and out at 12:30, then lists the log
	// THEN: The departure prints the worked time and the log shows the day

	path := filepath.Join(t.TempDir(), "attendance.csv")
	c := &fakeClock{now: time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC)}
	common := []string{"--user", "42", "--store", "csv", "--path", path}

	out, err := execute(t, c, append([]string{"in"}, common...)...)
	require.NoError(t, err)
	assert.Equal(t, "Arrival recorded at 2024-01-01 08:00:00.\n", out)

	c.now = time.Date(2024, time.January, 1, 12, 30, 0, 0, time.UTC)
	out, err = execute(t, c, append([]string{"out"}, common...)...)
	require.NoError(t, err)
	assert.Equal(t, "Departure recorded at 2024-01-01 12:30:00. Worked: 4h 30m.\n", out)

	out, err = execute(t, c, append([]string{"log", "--format", "json"}, common...)...)
	require.NoError(t, err)

	var result LogResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 31, result.WindowDays)
	require.Len(t, result.Records, 1)
	assert.Equal(t, "4h 30m", result.Records[0].WorkedDuration)
	assert.Equal(t, 1, result.Summary.CompleteDays)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "42,2024-01-01,08:00:00,12:30:00,4h 30m\n", string(data))
}

func TestSetTimeAndClearLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance.csv")
	c := &fakeClock{now: time.Date(2024, time.January, 1, 18, 0, 0, 0, time.UTC)}
	common := []string{"-u", "42", "--path", path}

	out, err := execute(t, c, append([]string{"settime", "07:45", "in"}, common...)...)
	require.NoError(t, err)
	assert.Equal(t, "Arrival set to 07:45:00 on 2024-01-01.\n", out)

	out, err = execute(t, c, append([]string{"clearlog"}, common...)...)
	require.NoError(t, err)
	assert.Equal(t, "Your records have been deleted (1 removed).\n", out)

	out, err = execute(t, c, append([]string{"clearlog"}, common...)...)
	require.NoError(t, err)
	assert.Equal(t, "You have no records, nothing was deleted.\n", out)
}

func TestImportLegacyThenCompact(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "attendance.csv")
	legacy := filepath.Join(dir, "legacy.csv")
	require.NoError(t, os.WriteFile(legacy, []byte(
		"42,IN,2024-01-01 08:00:00\n"+
			"42,OUT,2024-01-01 12:30:00\n"+
			"broken row\n"+
			"7,IN,2024-01-02 09:00:00\n",
	), 0o644))
	c := &fakeClock{now: time.Date(2024, time.January, 3, 9, 0, 0, 0, time.UTC)}

	out, err := execute(t, c, "import-legacy", legacy, "--path", path)
	require.NoError(t, err)
	assert.Equal(t, "Imported 3 of 3 event(s).\n", out)

	out, err = execute(t, c, "compact", "--path", path)
	require.NoError(t, err)
	assert.Equal(t, "Merged 0 duplicate record(s).\n", out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"42,2024-01-01,08:00:00,12:30:00,4h 30m\n"+
			"7,2024-01-02,09:00:00,,\n",
		string(data))
}

func TestErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attendance.csv")
	c := &fakeClock{now: time.Now()}

	_, err := execute(t, c, "in", "--path", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "--user")

	_, err = execute(t, c, "settime", "25:00", "in", "-u", "42", "--path", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = execute(t, c, "settime", "08:00", "lunch", "-u", "42", "--path", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = execute(t, c, "log", "-u", "42", "--format", "xml", "--path", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")

	_, err = execute(t, c, "in", "-u", "42", "--store", "mongo", "--path", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
