package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// slogFormatter feeds chi's RequestLogger into the service's slog logger so
// access lines follow the configured level and format.
type slogFormatter struct {
	logger *slog.Logger
}

func (f slogFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &slogEntry{
		ctx:    r.Context(),
		logger: f.logger.With(
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"request_id", middleware.GetReqID(r.Context()),
		),
	}
}

type slogEntry struct {
	ctx    context.Context
	logger *slog.Logger
}

func (e *slogEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	level := slog.LevelInfo
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	e.logger.Log(e.ctx, level, "request",
		"status", status,
		"bytes", bytes,
		"elapsed", elapsed,
	)
}

func (e *slogEntry) Panic(v interface{}, stack []byte) {
	e.logger.Error("panic", "value", v, "stack", string(stack))
}
