package chromelogger

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"emergency", LevelEmergency},
		{"ALERT", LevelAlert},
		{" critical ", LevelCritical},
		{"Warning", LevelWarning},
		{"debug", LevelDebug},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseLevel("verbose")
	assert.True(t, errors.Is(err, ErrInvalidLevel))
}

func TestLevel_Kind(t *testing.T) {
	tests := map[Level]Kind{
		LevelEmergency: KindError,
		LevelAlert:     KindError,
		LevelCritical:  KindError,
		LevelError:     KindError,
		LevelWarning:   KindWarn,
		LevelNotice:    KindInfo,
		LevelInfo:      KindInfo,
		LevelDebug:     KindLog,
	}
	for level, want := range tests {
		got, ok := level.Kind()
		assert.True(t, ok, string(level))
		assert.Equal(t, want, got, string(level))
	}

	_, ok := Level("trace").Kind()
	assert.False(t, ok)
}

func TestInterpolate(t *testing.T) {
	ctx := map[string]any{"user": "bob", "count": 3}

	assert.Equal(t, "bob has 3 items", Interpolate("{user} has {count} items", ctx))
	assert.Equal(t, "{missing} stays", Interpolate("{missing} stays", ctx))
	assert.Equal(t, "no placeholders", Interpolate("no placeholders", ctx))
	assert.Equal(t, "{user}", Interpolate("{user}", nil))
}

func TestConsole_LogLevel(t *testing.T) {
	c := New(Config{})

	_, file, line, _ := runtime.Caller(0)
	c.LogLevel(LevelWarning, "disk at {pct}%", map[string]any{"pct": 91})
	c.LogLevel(LevelDebug, "plain", nil)
	c.LogLevel(Level("bogus"), "ignored", nil)

	rows := c.Rows()
	require.Len(t, rows, 2)

	assert.Equal(t, KindWarn, rows[0].Kind)
	require.Len(t, rows[0].Values, 2)
	assert.Equal(t, "disk at 91%", rows[0].Values[0])
	ctx := asObject(t, rows[0].Values[1])
	assert.Equal(t, 91, get(t, ctx, "pct"))
	require.NotNil(t, rows[0].Location)
	assert.Equal(t, location(file, line+1), *rows[0].Location)

	assert.Equal(t, KindLog, rows[1].Kind)
	assert.Equal(t, []any{"plain"}, rows[1].Values)
}

func TestContext_RoundTrip(t *testing.T) {
	c := New(Config{})
	ctx := WithConsole(context.Background(), c)

	assert.Same(t, c, FromContext(ctx))
	assert.Nil(t, FromContext(context.Background()))
}
