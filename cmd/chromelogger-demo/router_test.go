package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/R3E-Network/chromelogger/internal/config"
	"github.com/R3E-Network/chromelogger/internal/logging"
	"github.com/R3E-Network/chromelogger/internal/metrics"
	"github.com/R3E-Network/chromelogger/pkg/chromelogger"
	"github.com/R3E-Network/chromelogger/pkg/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testRouter(t *testing.T, mutate func(*config.Config)) *mux.Router {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	logger := logging.NewWithOutput("demo", "debug", "json", io.Discard)
	logger.AddHook(logging.NewConsoleHook())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return newRouter(ctx, cfg, logger, metrics.NewCollector("demo"), zap.NewNop())
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func consoleLog(t *testing.T, rec *httptest.ResponseRecorder) (gjson.Result, string) {
	t.Helper()
	doc := testutil.DecodeLog(t, rec.Header())
	return doc, doc.Raw
}

func TestOrderDemo(t *testing.T) {
	rec := get(t, testRouter(t, nil), "/demo/order")
	require.Equal(t, http.StatusOK, rec.Code)

	doc, raw := consoleLog(t, rec)
	assert.Equal(t, "/demo/order", doc.Get("request_uri").String())

	assert.Equal(t, []string{"groupCollapsed", "log", "table", "groupEnd", "warn", "info", "info"}, testutil.RowKinds(doc))

	// group rows never carry a location
	assert.Equal(t, gjson.Null, doc.Get("rows.0.1").Type)
	assert.Equal(t, gjson.Null, doc.Get("rows.3.1").Type)

	o := doc.Get("rows.1.0.0")
	assert.Equal(t, "main.order", o.Get("___class_name").String())
	assert.Equal(t, "[redacted]", o.Get("PaymentKey").String())
	assert.False(t, o.Get("Internal").Exists())
	assert.Equal(t, "gift wrap", o.Get("private note").String())
	assert.Equal(t, "[redacted]", o.Get("Customer.Email").String())
	assert.Equal(t, "recursion - parent object [main.order]", o.Get("Customer.Orders.0").String())
	assert.Equal(t, "2024-03-01T09:30:00Z", o.Get("PlacedAt").String())

	assert.Equal(t, "order 1001 placed by Ada Lovelace", doc.Get("rows.5.0.0").String())
	assert.Equal(t, "order rendered", doc.Get("rows.6.0.0").String())

	assert.NotContains(t, raw, "pk_live_51H")
	assert.NotContains(t, raw, "ada@example.com")
}

func TestIndexServesOrderDemo(t *testing.T) {
	rec := get(t, testRouter(t, nil), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	doc, _ := consoleLog(t, rec)
	assert.Equal(t, "groupCollapsed", doc.Get("rows.0.2").String())
}

func TestLevelDemo(t *testing.T) {
	router := testRouter(t, nil)

	rec := get(t, router, "/demo/level?level=WARNING&msg=disk+%7Bdisk%7D+full&disk=sda")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "warn", gjson.Get(rec.Body.String(), "kind").String())

	doc, _ := consoleLog(t, rec)
	assert.Equal(t, "disk sda full", doc.Get("rows.0.0.0").String())
	assert.Equal(t, "sda", doc.Get("rows.0.0.1.disk").String())
	assert.Equal(t, "warn", doc.Get("rows.0.2").String())

	rec = get(t, router, "/demo/level?level=loud")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	doc, _ = consoleLog(t, rec)
	assert.Equal(t, "error", doc.Get("rows.0.2").String())
	assert.Contains(t, doc.Get("rows.0.0.0").String(), "invalid log level")
}

func TestZapDemo(t *testing.T) {
	rec := get(t, testRouter(t, nil), "/demo/zap")
	require.Equal(t, http.StatusOK, rec.Code)

	doc, _ := consoleLog(t, rec)
	require.Equal(t, int64(2), doc.Get("rows.#").Int())
	assert.Equal(t, "chromelogger: cache lookup", doc.Get("rows.0.0.0").String())
	assert.False(t, doc.Get("rows.0.0.1.hit").Bool())
	assert.Equal(t, "info", doc.Get("rows.1.2").String())
}

func TestPanicDemo(t *testing.T) {
	rec := get(t, testRouter(t, nil), "/demo/panic")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	doc, _ := consoleLog(t, rec)
	assert.Equal(t, "panic: demo panic", doc.Get("rows.1.0.0").String())
	assert.Contains(t, doc.Get("rows.1.1").String(), "handlers.go : ")
}

func TestGinDemo(t *testing.T) {
	rec := get(t, testRouter(t, nil), "/gin/hello?name=gopher")
	require.Equal(t, http.StatusOK, rec.Code)

	doc, _ := consoleLog(t, rec)
	assert.Equal(t, "hello from gin", doc.Get("rows.0.0.0").String())
	assert.Equal(t, "gopher", doc.Get("rows.0.0.1").String())
}

func TestConsoleDisabled(t *testing.T) {
	router := testRouter(t, func(cfg *config.Config) { cfg.Console.Enabled = false })

	for _, path := range []string{"/demo/order", "/gin/hello"} {
		rec := get(t, router, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Empty(t, rec.Header().Get(chromelogger.HeaderName), path)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	router := testRouter(t, nil)

	rec := get(t, router, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", gjson.Get(rec.Body.String(), "status").String())
	assert.Empty(t, rec.Header().Get(chromelogger.HeaderName))
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))

	get(t, router, "/demo/order")
	rec = get(t, router, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `demo_http_requests_total{method="GET",path="/demo/order",service="chromelogger",status="200"} 1`)
	assert.Contains(t, rec.Body.String(), `demo_console_headers_total{result="sent"} 1`)
}
