// Package middleware provides HTTP middleware for the chromelogger server
package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/R3E-Network/chromelogger/internal/config"
	"github.com/R3E-Network/chromelogger/internal/logging"
	"github.com/R3E-Network/chromelogger/internal/metrics"
	"github.com/R3E-Network/chromelogger/pkg/chromelogger"
)

// ConsoleMiddleware attaches a Chrome Logger console to every request and
// delivers its rows in the X-ChromeLogger-Data header when the response is
// committed.
type ConsoleMiddleware struct {
	cfg     config.ConsoleConfig
	logger  *logging.Logger
	metrics *metrics.Collector
}

// NewConsoleMiddleware creates a new console middleware. m may be nil.
func NewConsoleMiddleware(cfg config.ConsoleConfig, logger *logging.Logger, m *metrics.Collector) *ConsoleMiddleware {
	return &ConsoleMiddleware{
		cfg:     cfg,
		logger:  logger,
		metrics: m,
	}
}

// Handler returns the console middleware handler
func (m *ConsoleMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.cfg.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		cfg := m.cfg.EncoderConfig()
		uri := r.RequestURI
		if uri == "" {
			uri = r.URL.RequestURI()
		}
		cfg.RequestURI = &uri

		console := chromelogger.New(cfg)
		cw := &consoleWriter{ResponseWriter: w, console: console}

		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					cw.commit()
					m.record(r, console, cw.sent)
					panic(rec)
				}
				console.ReportPanic(rec)
				m.logger.LogPanic(r.Context(), rec)
				if !cw.Written() {
					jsonError(cw, "internal server error", http.StatusInternalServerError)
				}
			}
			cw.commit()
			m.record(r, console, cw.sent)
		}()

		next.ServeHTTP(cw, r.WithContext(chromelogger.WithConsole(r.Context(), console)))
	})
}

func (m *ConsoleMiddleware) record(r *http.Request, console *chromelogger.Console, sent bool) {
	stats := console.Stats()
	if stats.Dropped > 0 {
		m.logger.WithContext(r.Context()).WithField("dropped", stats.Dropped).
			Debug("console rows emitted after the response was committed")
	}
	if m.metrics != nil {
		m.metrics.RecordConsole(stats, sent)
	}
}

// consoleWriter sends the log header right before the status line goes out
// and seals the console so later rows are dropped.
type consoleWriter struct {
	http.ResponseWriter
	console   *chromelogger.Console
	committed bool
	sent      bool
}

func (w *consoleWriter) commit() {
	if w.committed {
		return
	}
	w.committed = true
	w.sent = w.console.SendLogHeader(w.ResponseWriter)
	w.console.Seal()
}

func (w *consoleWriter) WriteHeader(code int) {
	// informational responses do not commit the final headers
	if code >= 100 && code < 200 && code != http.StatusSwitchingProtocols {
		w.ResponseWriter.WriteHeader(code)
		return
	}
	w.commit()
	w.ResponseWriter.WriteHeader(code)
}

func (w *consoleWriter) Write(b []byte) (int, error) {
	w.commit()
	return w.ResponseWriter.Write(b)
}

func (w *consoleWriter) Flush() {
	w.commit()
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Written reports whether the response headers have been committed.
func (w *consoleWriter) Written() bool {
	return w.committed
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *consoleWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
