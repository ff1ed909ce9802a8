package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/chromelogger/pkg/chromelogger"
)

func TestNewCollector(t *testing.T) {
	c := NewCollector("test")
	require.NotNil(t, c)
	assert.NotNil(t, c.Registry())
}

func TestNewCollector_DefaultNamespace(t *testing.T) {
	c := NewCollector("")
	c.RecordHTTPRequest("svc", "get", "/", "200", time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "chromelogger_http_requests_total")
}

func TestCollector_HTTPMetrics(t *testing.T) {
	c := NewCollector("test")

	c.IncrementInFlight()
	assert.Equal(t, float64(1), testutil.ToFloat64(c.httpInFlight))
	c.DecrementInFlight()
	assert.Equal(t, float64(0), testutil.ToFloat64(c.httpInFlight))

	c.RecordHTTPRequest("", "get", "/orders", StatusLabel(200), 10*time.Millisecond)
	c.RecordHTTPRequest("", "GET", "/orders", StatusLabel(200), 10*time.Millisecond)
	assert.Equal(t, float64(2), testutil.ToFloat64(c.httpRequests.WithLabelValues("unknown", "GET", "/orders", "200")))
}

func TestCollector_RecordConsole(t *testing.T) {
	c := NewCollector("test")

	c.RecordConsole(chromelogger.Stats{
		Kinds:       map[chromelogger.Kind]int{chromelogger.KindLog: 3, chromelogger.KindError: 1},
		Dropped:     2,
		HeaderBytes: 512,
	}, true)
	c.RecordConsole(chromelogger.Stats{Truncated: true, HeaderBytes: 1024}, true)
	c.RecordConsole(chromelogger.Stats{}, false)

	assert.Equal(t, float64(3), testutil.ToFloat64(c.consoleRows.WithLabelValues("log")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.consoleRows.WithLabelValues("error")))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.consoleDropped))
	assert.Equal(t, float64(2), testutil.ToFloat64(c.consoleHeaders.WithLabelValues(ResultSent)))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.consoleHeaders.WithLabelValues(ResultTruncated)))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.consoleHeaders.WithLabelValues(ResultSkipped)))

	count, err := testutil.GatherAndCount(c.Registry(), "test_console_header_bytes")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCollector_HandlerExposesConsoleMetrics(t *testing.T) {
	c := NewCollector("test")
	c.RecordConsole(chromelogger.Stats{Kinds: map[chromelogger.Kind]int{chromelogger.KindWarn: 1}}, true)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()

	assert.True(t, strings.Contains(body, `test_console_rows_total{kind="warn"} 1`), body)
}
