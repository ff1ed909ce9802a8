package logging

import (
	"github.com/sirupsen/logrus"

	"github.com/R3E-Network/chromelogger/pkg/chromelogger"
)

// ConsoleHook copies log entries into the request's Chrome Logger console.
// Entries without a context, or whose context carries no console, are ignored.
type ConsoleHook struct {
	levels []logrus.Level
}

// NewConsoleHook creates a hook firing for levels, or for all levels if none
// are given.
func NewConsoleHook(levels ...logrus.Level) *ConsoleHook {
	if len(levels) == 0 {
		levels = logrus.AllLevels
	}
	return &ConsoleHook{levels: levels}
}

// Levels implements logrus.Hook.
func (h *ConsoleHook) Levels() []logrus.Level {
	return h.levels
}

// Fire implements logrus.Hook. The row is attributed to entry.Caller when the
// logger reports callers, otherwise to "unknown".
func (h *ConsoleHook) Fire(entry *logrus.Entry) error {
	if entry.Context == nil {
		return nil
	}
	console := chromelogger.FromContext(entry.Context)
	if console == nil {
		return nil
	}

	args := []any{entry.Message}
	if len(entry.Data) > 0 {
		data := make(map[string]any, len(entry.Data))
		for k, v := range entry.Data {
			data[k] = v
		}
		args = append(args, data)
	}

	var file string
	var line int
	if entry.HasCaller() {
		file, line = entry.Caller.File, entry.Caller.Line
	}
	console.EmitAt(LevelKind(entry.Level), file, line, args...)
	return nil
}

// LevelKind maps a logrus level onto a console row type.
func LevelKind(level logrus.Level) chromelogger.Kind {
	switch level {
	case logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel:
		return chromelogger.KindError
	case logrus.WarnLevel:
		return chromelogger.KindWarn
	case logrus.InfoLevel:
		return chromelogger.KindInfo
	default:
		return chromelogger.KindLog
	}
}
