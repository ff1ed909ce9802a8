package chromelogger

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Level is a PSR-3 style severity.
type Level string

const (
	LevelEmergency Level = "emergency"
	LevelAlert     Level = "alert"
	LevelCritical  Level = "critical"
	LevelError     Level = "error"
	LevelWarning   Level = "warning"
	LevelNotice    Level = "notice"
	LevelInfo      Level = "info"
	LevelDebug     Level = "debug"
)

// ErrInvalidLevel is returned by ParseLevel for unknown names.
var ErrInvalidLevel = errors.New("invalid log level")

var levelKinds = map[Level]Kind{
	LevelEmergency: KindError,
	LevelAlert:     KindError,
	LevelCritical:  KindError,
	LevelError:     KindError,
	LevelWarning:   KindWarn,
	LevelNotice:    KindInfo,
	LevelInfo:      KindInfo,
	LevelDebug:     KindLog,
}

// ParseLevel parses a level name, ignoring case and surrounding space.
func ParseLevel(name string) (Level, error) {
	level := Level(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := levelKinds[level]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidLevel, name)
	}
	return level, nil
}

// Kind returns the console row type used for the level.
func (l Level) Kind() (Kind, bool) {
	kind, ok := levelKinds[l]
	return kind, ok
}

// Interpolate replaces {key} placeholders in message with values from ctx.
// Placeholders without a matching key are left untouched.
func Interpolate(message string, ctx map[string]any) string {
	if len(ctx) == 0 || !strings.Contains(message, "{") {
		return message
	}
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", fmt.Sprint(ctx[k]))
	}
	return strings.NewReplacer(pairs...).Replace(message)
}

// LogLevel records message at a PSR-3 level. The interpolated message is the
// first value; a non-empty ctx is appended as a second value. Unknown levels
// are ignored.
func (c *Console) LogLevel(level Level, message string, ctx map[string]any) {
	kind, ok := level.Kind()
	if !ok {
		return
	}
	args := []any{Interpolate(message, ctx)}
	if len(ctx) > 0 {
		args = append(args, ctx)
	}
	c.emit(kind, args)
}
