// Package zapconsole forwards zap log entries to a Chrome Logger console.
//
// Tee the core with an existing one to keep regular output:
//
//	logger := zap.New(zapcore.NewTee(base.Core(), zapconsole.NewCore(console, zap.DebugLevel)), zap.AddCaller())
package zapconsole

import (
	"go.uber.org/zap/zapcore"

	"github.com/R3E-Network/chromelogger/pkg/chromelogger"
)

type core struct {
	zapcore.LevelEnabler
	console *chromelogger.Console
	fields  []zapcore.Field
}

// NewCore returns a zapcore.Core writing one row per entry to console. The
// row is attributed to the entry's caller when the logger records one.
func NewCore(console *chromelogger.Console, enab zapcore.LevelEnabler) zapcore.Core {
	return &core{LevelEnabler: enab, console: console}
}

func (c *core) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = append(c.fields[:len(c.fields):len(c.fields)], fields...)
	return &clone
}

func (c *core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.console != nil && c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	message := ent.Message
	if ent.LoggerName != "" {
		message = ent.LoggerName + ": " + message
	}
	args := []any{message}

	if len(c.fields)+len(fields) > 0 {
		enc := zapcore.NewMapObjectEncoder()
		for _, f := range c.fields {
			f.AddTo(enc)
		}
		for _, f := range fields {
			f.AddTo(enc)
		}
		args = append(args, enc.Fields)
	}

	var file string
	var line int
	if ent.Caller.Defined {
		file, line = ent.Caller.File, ent.Caller.Line
	}
	c.console.EmitAt(LevelKind(ent.Level), file, line, args...)
	return nil
}

func (c *core) Sync() error { return nil }

// LevelKind maps a zap level onto a console row type.
func LevelKind(level zapcore.Level) chromelogger.Kind {
	switch {
	case level >= zapcore.ErrorLevel:
		return chromelogger.KindError
	case level == zapcore.WarnLevel:
		return chromelogger.KindWarn
	case level == zapcore.InfoLevel:
		return chromelogger.KindInfo
	default:
		return chromelogger.KindLog
	}
}
