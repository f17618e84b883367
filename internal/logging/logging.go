// Package logging builds the application logger and contains helpers to print leveled messages
// and to log HTTP requests.
package logging

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// New creates a JSON logger writing to w at the given level. Unknown levels fall back to info.
// A nil writer means stdout.
func New(level string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// NewConsole creates a human friendly logger, used on development environments.
func NewConsole(level string) zerolog.Logger {
	return New(level, zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
}

// StdLogger bridges the given logger to the standard library logger, as required by http.Server.
func StdLogger(logger zerolog.Logger) *log.Logger {
	return log.New(logger.With().Str("source", "stdlib").Logger(), "", 0)
}

// PrintlnInfo prints the given values with the info level.
func PrintlnInfo(logger zerolog.Logger, v ...interface{}) {
	logger.Info().Msg(fmt.Sprint(v...))
}

// PrintlnWarn prints the given values with the warn level.
func PrintlnWarn(logger zerolog.Logger, v ...interface{}) {
	logger.Warn().Msg(fmt.Sprint(v...))
}

// PrintlnError prints the given values with the error level.
func PrintlnError(logger zerolog.Logger, v ...interface{}) {
	logger.Error().Msg(fmt.Sprint(v...))
}

// Middleware logs every request handled by the router, along with the request ID assigned by
// the chi RequestID middleware.
func Middleware(logger zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info().
					Str("request_id", middleware.GetReqID(r.Context())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("duration", time.Since(start)).
					Msg("request handled")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
