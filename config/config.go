// Package config loads service configuration.
//
// Values are layered, later sources winning:
//   - built-in defaults
//   - an optional YAML file
//   - a .env file in the working directory, if present
//   - ATTENDANCE_* environment variables
//
// Command-line flags are applied by the binaries on top of the result.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ATTENDANCE_"

// Config holds all configuration for the application.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Store      StoreConfig      `yaml:"store"`
	History    HistoryConfig    `yaml:"history"`
	Compaction CompactionConfig `yaml:"compaction"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// StoreConfig selects the record store.
type StoreConfig struct {
	// Backend is csv, sqlite, postgres or memory. For postgres, Path holds
	// the connection string.
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// HistoryConfig holds the history listing configuration.
type HistoryConfig struct {
	WindowDays int `yaml:"window_days"`
}

// CompactionConfig controls the periodic duplicate merge.
type CompactionConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// KafkaConfig holds the event publisher configuration. No brokers means
// events are not published.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// LogConfig holds the logger configuration.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`
	// Format is text or json.
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Store: StoreConfig{
			Backend: "csv",
			Path:    "attendance.csv",
		},
		History: HistoryConfig{
			WindowDays: 31,
		},
		Compaction: CompactionConfig{
			Enabled:  true,
			Interval: time.Hour,
		},
		Kafka: KafkaConfig{
			Topic: "attendance-events",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration. path may be empty to skip the YAML file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	// .env never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnvAsInt("SERVER_PORT", c.Server.Port)
	c.Server.ReadTimeout = getEnvAsDuration("SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvAsDuration("SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.IdleTimeout = getEnvAsDuration("SERVER_IDLE_TIMEOUT", c.Server.IdleTimeout)
	c.Server.ShutdownTimeout = getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)

	c.Store.Backend = getEnv("STORE_BACKEND", c.Store.Backend)
	c.Store.Path = getEnv("STORE_PATH", c.Store.Path)

	c.History.WindowDays = getEnvAsInt("HISTORY_WINDOW_DAYS", c.History.WindowDays)

	c.Compaction.Enabled = getEnvAsBool("COMPACTION_ENABLED", c.Compaction.Enabled)
	c.Compaction.Interval = getEnvAsDuration("COMPACTION_INTERVAL", c.Compaction.Interval)

	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		c.Kafka.Brokers = splitList(brokers)
	}
	c.Kafka.Topic = getEnv("KAFKA_TOPIC", c.Kafka.Topic)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
}

// Validate rejects values the service cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	switch c.Store.Backend {
	case "csv", "sqlite", "postgres":
		if c.Store.Path == "" {
			errs = append(errs, fmt.Errorf("store.path is required for backend %q", c.Store.Backend))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("store.backend %q is not csv, sqlite, postgres or memory", c.Store.Backend))
	}
	if c.History.WindowDays <= 0 {
		errs = append(errs, fmt.Errorf("history.window_days must be positive, got %d", c.History.WindowDays))
	}
	if c.Compaction.Enabled && c.Compaction.Interval <= 0 {
		errs = append(errs, errors.New("compaction.interval must be positive when compaction is enabled"))
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("kafka.topic is required when brokers are set"))
	}
	return errors.Join(errs...)
}

// =============================================================================
// ENVIRONMENT HELPERS
// =============================================================================

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(EnvPrefix + key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
