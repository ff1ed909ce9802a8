package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3E-Network/chromelogger/pkg/chromelogger"
)

func sampleEnvelope(t *testing.T) chromelogger.Envelope {
	t.Helper()
	uri := "/orders/7"
	c := chromelogger.New(chromelogger.Config{RequestURI: &uri})
	c.Group("order", 7)
	c.Log("items", []string{"a", "b"})
	for _, msg := range []string{"stock low", "backorder"} {
		c.Warn(msg)
	}
	c.GroupEnd()
	c.Error("failed")
	env, err := chromelogger.ParseHeader(c.EncodeHeader())
	require.NoError(t, err)
	return env
}

func TestPrinter_Print(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf).Print(sampleEnvelope(t)))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "/orders/7 v1.0.0", lines[0])
	assert.Equal(t, "▼ order 7", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "    items [\"a\",\"b\"]  "), lines[2])
	assert.Contains(t, lines[2], "output_test.go : ")
	assert.True(t, strings.HasPrefix(lines[3], "  ⚠ stock low  "), lines[3])
	// same location as the previous row, so none is printed
	assert.Equal(t, "  ⚠ backorder", lines[4])
	assert.True(t, strings.HasPrefix(lines[5], "✗ failed  "), lines[5])
}

func TestPrinter_NoLocationsAndColor(t *testing.T) {
	env := sampleEnvelope(t)

	var plain bytes.Buffer
	require.NoError(t, NewPrinter(&plain).ShowLocations(false).Print(env))
	assert.NotContains(t, plain.String(), " : ")
	assert.NotContains(t, plain.String(), "\033[")

	var colored bytes.Buffer
	p := NewPrinter(&colored)
	p.colorize = true
	require.NoError(t, p.Print(env))
	assert.Contains(t, colored.String(), ColorRed+"✗"+ColorReset)

	p.DisableColor()
	colored.Reset()
	require.NoError(t, p.Print(env))
	assert.NotContains(t, colored.String(), "\033[")
}

func TestPrinter_UnbalancedGroupEnd(t *testing.T) {
	c := chromelogger.New(chromelogger.Config{})
	c.GroupEnd()
	c.Log("top level")

	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf).ShowLocations(false).Print(c.Envelope()))
	assert.Equal(t, "(no request uri) v1.0.0\n  top level\n", buf.String())
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "null", FormatValue(nil))
	assert.Equal(t, "plain", FormatValue("plain"))
	assert.Equal(t, "12.5", FormatValue(json.Number("12.5")))
	assert.Equal(t, `{"a":"<b>"}`, FormatValue(map[string]any{"a": "<b>"}))
	assert.Equal(t, "true", FormatValue(true))
}

func TestSpinner_SilentWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner(&buf, "fetching")
	s.Start()
	s.Stop()
	s.Stop()
	assert.Empty(t, buf.String())
}

func TestGenerateCompletion(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish"} {
		var buf bytes.Buffer
		require.NoError(t, GenerateCompletion(&buf, shell), shell)
		assert.Contains(t, buf.String(), "chromelogger-inspect", shell)
	}

	assert.Error(t, GenerateCompletion(&bytes.Buffer{}, "powershell"))
}
