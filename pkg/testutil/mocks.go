// Package testutil provides common testing utilities for code that delivers
// Chrome Logger headers.
package testutil

import (
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/R3E-Network/chromelogger/pkg/chromelogger"
)

// MockHeaderWriter is a chromelogger.HeaderWriter that can pretend the
// response has already been committed.
type MockHeaderWriter struct {
	mu        sync.RWMutex
	header    http.Header
	committed bool
}

// NewMockHeaderWriter creates an uncommitted header writer.
func NewMockHeaderWriter() *MockHeaderWriter {
	return &MockHeaderWriter{header: make(http.Header)}
}

// Header returns the header map.
func (m *MockHeaderWriter) Header() http.Header {
	return m.header
}

// Commit marks the response as committed.
func (m *MockHeaderWriter) Commit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committed = true
}

// Written reports whether Commit was called.
func (m *MockHeaderWriter) Written() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.committed
}

// DecodeLog decodes the X-ChromeLogger-Data header, failing the test when it
// is missing or malformed.
func DecodeLog(t testing.TB, h http.Header) gjson.Result {
	t.Helper()
	value := h.Get(chromelogger.HeaderName)
	require.NotEmpty(t, value, "missing %s header", chromelogger.HeaderName)
	raw, err := chromelogger.DecodeHeader(value)
	require.NoError(t, err)
	return gjson.ParseBytes(raw)
}

// RowKinds returns the type column of every row in doc.
func RowKinds(doc gjson.Result) []string {
	var kinds []string
	for _, row := range doc.Get("rows").Array() {
		kinds = append(kinds, row.Get("2").String())
	}
	return kinds
}
