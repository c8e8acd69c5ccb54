package middleware

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/greencycle/greencycle-go/pkg/hash"
)

// RequestIDHeader carries the per-request correlation ID in both directions.
const RequestIDHeader = "X-Request-ID"

// Logger is the package-level zerolog logger used throughout the application.
var Logger = zerolog.Nop()

// InitLogger sets up the global zerolog logger. Level is parsed from the
// given string (e.g. "debug", "info", "warn", "error"). With pretty set the
// output is human-readable console text instead of JSON.
func InitLogger(level, service string, pretty bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.DurationFieldUnit = time.Millisecond
	zerolog.DurationFieldInteger = true

	var out io.Writer = os.Stdout
	if pretty {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}
	}

	Logger = zerolog.New(out).With().
		Timestamp().
		Str("service", service).
		Logger()
	return Logger
}

// sanitizePath replaces numeric path segments with a placeholder so record
// IDs do not fan out log cardinality.
func sanitizePath(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if p != "" && strings.Trim(p, "0123456789") == "" {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

// NewRequestLogger returns a Fiber middleware that tags each request with an
// ID and logs it as structured JSON once the handler chain returns. Raw IPs
// and emails are hashed.
func NewRequestLogger() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		reqID := c.Get(RequestIDHeader)
		if reqID == "" || len(reqID) > 64 {
			reqID = uuid.NewString()
		}
		c.Set(RequestIDHeader, reqID)
		c.Locals(localRequestID, reqID)

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			// The error handler has not written the status yet.
			var fe *fiber.Error
			if asFiberError(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		evt := Logger.Info()
		if status >= 500 {
			evt = Logger.Error().Err(err)
		} else if status >= 400 {
			evt = Logger.Warn()
		}

		evt = evt.
			Str("request_id", reqID).
			Str("method", c.Method()).
			Str("path", sanitizePath(c.Path())).
			Int("status", status).
			Dur("duration_ms", time.Since(start)).
			Str("ip_hash", hash.LogToken(c.IP())).
			Int("bytes_sent", len(c.Response().Body()))
		if email := c.Get(UserEmailHeader); email != "" {
			evt = evt.Str("user_hash", hash.LogToken(strings.ToLower(strings.TrimSpace(email))))
		}
		evt.Msg("request")

		return err
	}
}

// RequestID returns the correlation ID assigned by NewRequestLogger.
func RequestID(c fiber.Ctx) string {
	if id, ok := c.Locals(localRequestID).(string); ok {
		return id
	}
	return ""
}
