package config_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-ledger/config"
)

// chdirTemp runs the test from an empty directory so no stray .env is read.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, 31, cfg.History.WindowDays)
	assert.Equal(t, "csv", cfg.Store.Backend)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	// GIVEN: A YAML file and an environment override for the same key
	// WHEN: Loading
	// THEN: The environment wins, YAML wins over defaults

	dir := chdirTemp(t)
	path := filepath.Join(dir, "attendance.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
  read_timeout: 5s
store:
  backend: sqlite
  path: /var/lib/attendance.db
history:
  window_days: 14
kafka:
  brokers: ["kafka-1:9092"]
`), 0o644))

	t.Setenv("ATTENDANCE_HISTORY_WINDOW_DAYS", "7")
	t.Setenv("ATTENDANCE_KAFKA_BROKERS", "a:9092, b:9092")
	t.Setenv("ATTENDANCE_COMPACTION_ENABLED", "false")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "/var/lib/attendance.db", cfg.Store.Path)
	assert.Equal(t, 7, cfg.History.WindowDays)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.Compaction.Enabled)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("ATTENDANCE_STORE_PATH=from-dotenv.csv\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("ATTENDANCE_STORE_PATH") })

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv.csv", cfg.Store.Path)
}

func TestLoad_Invalid(t *testing.T) {
	chdirTemp(t)
	t.Setenv("ATTENDANCE_STORE_BACKEND", "mongo")

	_, err := config.Load("")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.backend")
}

func TestLoad_MissingFile(t *testing.T) {
	chdirTemp(t)

	_, err := config.Load("does-not-exist.yaml")

	require.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := config.NewLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "user", "42")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"user":"42"`)

	_, err = config.NewLogger(config.LogConfig{Level: "loud"}, &buf)
	assert.Error(t, err)
	_, err = config.NewLogger(config.LogConfig{Format: "xml"}, &buf)
	assert.Error(t, err)
}
