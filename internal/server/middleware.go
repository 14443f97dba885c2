package server

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/fnoscan/internal/cache"
	"github.com/bobmcallan/fnoscan/internal/common"
)

const (
	headerRequestID     = "X-Request-ID"
	headerCorrelationID = "X-Correlation-ID"

	headerSnapshotCycle     = "X-Snapshot-Cycle"
	headerSnapshotPublished = "X-Snapshot-Published"
	headerSnapshotDegraded  = "X-Snapshot-Degraded"
)

// responseWriter records the status and body size for request logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

// Hijack lets the WebSocket upgrader take over the connection.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	rw.statusCode = http.StatusSwitchingProtocols
	return h.Hijack()
}

func recoveryMiddleware(logger *common.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error().
						Str("panic", fmt.Sprintf("%v", rec)).
						Str("path", r.URL.Path).
						Str("stack", string(debug.Stack())).
						Msg("Panic recovered in HTTP handler")
					WriteError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// corsMiddleware lets the dashboard call the read API from any origin.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, "+headerRequestID+", "+headerCorrelationID)
		h.Set("Access-Control-Expose-Headers", headerSnapshotCycle+", "+headerSnapshotPublished+", "+headerSnapshotDegraded)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// correlationIDMiddleware echoes the caller's request ID or assigns a short one.
func correlationIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerRequestID)
		if id == "" {
			id = r.Header.Get(headerCorrelationID)
		}
		if id == "" {
			id = uuid.New().String()[:8]
		}
		w.Header().Set(headerCorrelationID, id)
		next.ServeHTTP(w, r)
	})
}

// snapshotMiddleware stamps every response with the live snapshot's cycle,
// publish time and degraded flag so clients can tell synthetic data apart.
func snapshotMiddleware(c *cache.Cache) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c != nil {
				if snap := c.Snapshot(); snap != nil {
					h := w.Header()
					h.Set(headerSnapshotCycle, snap.CycleID)
					h.Set(headerSnapshotPublished, snap.PublishedAt.UTC().Format(time.RFC3339))
					h.Set(headerSnapshotDegraded, strconv.FormatBool(snap.Degraded))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// loggingMiddleware logs each request. 2xx at trace, 4xx at info, 5xx at error.
func loggingMiddleware(logger *common.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			event := logger.Trace()
			switch {
			case rw.statusCode >= 500:
				event = logger.Error()
			case rw.statusCode >= 400:
				event = logger.Info()
			}

			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("query", r.URL.RawQuery).
				Int("status", rw.statusCode).
				Int("bytes", rw.bytesWritten).
				Dur("duration", time.Since(start)).
				Str("correlation_id", w.Header().Get(headerCorrelationID)).
				Msg("HTTP request")
		})
	}
}

// applyMiddleware wraps handler so that recovery runs outermost and logging
// sees the final status.
func applyMiddleware(handler http.Handler, logger *common.Logger, c *cache.Cache) http.Handler {
	handler = loggingMiddleware(logger)(handler)
	handler = snapshotMiddleware(c)(handler)
	handler = correlationIDMiddleware(handler)
	handler = corsMiddleware(handler)
	handler = recoveryMiddleware(logger)(handler)
	return handler
}
