package middleware

import (
	"fmt"
	"net/http"
	"time"

	"baby-care-log/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestLogger loguea una línea por request con status y duración, sobre
// chimw.RequestLogger. Va después de chimw.RequestID y antes de
// chimw.Recoverer: el Recoverer reporta el panic a la entrada de log.
func RequestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return chimw.RequestLogger(logFormatter{log: log})
}

type logFormatter struct {
	log logger.Logger
}

func (f logFormatter) NewLogEntry(r *http.Request) chimw.LogEntry {
	return &logEntry{log: f.log.With(map[string]any{
		"method":     r.Method,
		"path":       r.URL.Path,
		"request_id": chimw.GetReqID(r.Context()),
	})}
}

type logEntry struct {
	log logger.Logger
}

func (e *logEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ any) {
	fields := map[string]any{
		"status":      status,
		"bytes":       bytes,
		"duration_ms": elapsed.Milliseconds(),
	}
	switch {
	case status >= 500:
		e.log.Error("request", fields)
	case status >= 400:
		e.log.Warn("request", fields)
	default:
		e.log.Debug("request", fields)
	}
}

func (e *logEntry) Panic(v any, stack []byte) {
	e.log.Error("panic", map[string]any{
		"panic": fmt.Sprint(v),
		"stack": string(stack),
	})
}
