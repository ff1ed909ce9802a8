// Package ginconsole attaches a Chrome Logger console to gin requests.
package ginconsole

import (
	"github.com/gin-gonic/gin"

	"github.com/R3E-Network/chromelogger/pkg/chromelogger"
)

// ContextKey is the gin context key holding the request console.
const ContextKey = "chromelogger.console"

// Middleware creates a console per request. The log header is written when
// the handler chain first commits the response, or after it returns.
func Middleware(cfg chromelogger.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqCfg := cfg
		uri := c.Request.RequestURI
		if uri == "" {
			uri = c.Request.URL.RequestURI()
		}
		reqCfg.RequestURI = &uri

		console := chromelogger.New(reqCfg)
		w := &writer{ResponseWriter: c.Writer, console: console}
		c.Writer = w
		c.Set(ContextKey, console)
		c.Request = c.Request.WithContext(chromelogger.WithConsole(c.Request.Context(), console))

		defer func() {
			// record the panic and let gin.Recovery answer it
			if rec := recover(); rec != nil {
				console.ReportPanic(rec)
				panic(rec)
			}
		}()

		c.Next()
		w.commit()
	}
}

// FromContext returns the request console, or nil when Middleware is not
// installed.
func FromContext(c *gin.Context) *chromelogger.Console {
	if v, ok := c.Get(ContextKey); ok {
		if console, ok := v.(*chromelogger.Console); ok {
			return console
		}
	}
	if c.Request == nil {
		return nil
	}
	return chromelogger.FromContext(c.Request.Context())
}

// writer commits the log header on the first call that sends the status line.
// gin's WriteHeader only records the status, so it is left alone.
type writer struct {
	gin.ResponseWriter
	console   *chromelogger.Console
	committed bool
}

func (w *writer) commit() {
	if w.committed {
		return
	}
	w.committed = true
	w.console.SendLogHeader(w.ResponseWriter)
	w.console.Seal()
}

func (w *writer) WriteHeaderNow() {
	w.commit()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *writer) Write(b []byte) (int, error) {
	w.commit()
	return w.ResponseWriter.Write(b)
}

func (w *writer) WriteString(s string) (int, error) {
	w.commit()
	return w.ResponseWriter.WriteString(s)
}

func (w *writer) Flush() {
	w.commit()
	w.ResponseWriter.Flush()
}
