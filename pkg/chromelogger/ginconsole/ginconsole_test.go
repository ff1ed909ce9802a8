package ginconsole

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/R3E-Network/chromelogger/pkg/chromelogger"
	"github.com/R3E-Network/chromelogger/pkg/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.RecoveryWithWriter(io.Discard), Middleware(chromelogger.Config{}))

	r.GET("/json", func(c *gin.Context) {
		FromContext(c).Log("hello", gin.H{"id": 7})
		c.JSON(http.StatusOK, gin.H{"ok": true})
		FromContext(c).Log("after commit")
	})
	r.GET("/status", func(c *gin.Context) {
		chromelogger.FromContext(c.Request.Context()).Info("via request context")
		c.Status(http.StatusNoContent)
	})
	r.GET("/abort", func(c *gin.Context) {
		FromContext(c).Warn("denied")
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	})
	r.GET("/panic", func(c *gin.Context) {
		FromContext(c).Log("about to fail")
		panic("kaboom")
	})
	return r
}

func serve(t *testing.T, path string) (*httptest.ResponseRecorder, gjson.Result) {
	t.Helper()
	rec := httptest.NewRecorder()
	newRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec, testutil.DecodeLog(t, rec.Header())
}

func TestMiddleware_JSONResponse(t *testing.T) {
	rec, doc := serve(t, "/json?x=1")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/json?x=1", doc.Get("request_uri").String())
	require.Equal(t, int64(1), doc.Get("rows.#").Int())
	assert.Equal(t, "hello", doc.Get("rows.0.0.0").String())
	assert.Equal(t, int64(7), doc.Get("rows.0.0.1.id").Int())
	assert.Contains(t, doc.Get("rows.0.1").String(), "ginconsole_test.go : ")
}

func TestMiddleware_StatusOnly(t *testing.T) {
	rec, doc := serve(t, "/status")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "via request context", doc.Get("rows.0.0.0").String())
	assert.Equal(t, "info", doc.Get("rows.0.2").String())
}

func TestMiddleware_Abort(t *testing.T) {
	rec, doc := serve(t, "/abort")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "warn", doc.Get("rows.0.2").String())
}

func TestMiddleware_Panic(t *testing.T) {
	rec, doc := serve(t, "/panic")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, int64(2), doc.Get("rows.#").Int())
	assert.Equal(t, "panic: kaboom", doc.Get("rows.1.0.0").String())
	assert.Equal(t, "error", doc.Get("rows.1.2").String())
}

func TestFromContext_WithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	console := FromContext(c)
	assert.Nil(t, console)
	console.Log("safe on nil")
}
