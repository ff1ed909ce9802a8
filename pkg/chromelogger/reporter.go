package chromelogger

import (
	"fmt"
	"runtime"
	"strings"
)

const maxPanicFrames = 64

// ReportError records err as an "error" row attributed to the caller.
func (c *Console) ReportError(err error) {
	if err == nil {
		return
	}
	c.emit(KindError, []any{err.Error()})
}

// ReportErrorAt records message as an "error" row at file:line, for errors
// whose origin is known, such as those carried by a parser.
func (c *Console) ReportErrorAt(message, file string, line int) {
	c.EmitAt(KindError, file, line, message)
}

// ReportPanic records a recovered panic value. It must be called from the
// deferred function that recovered, so the panicking frame is still on the
// stack.
func (c *Console) ReportPanic(v any) {
	if c == nil {
		return
	}
	file, line, _ := panicLocation()
	c.EmitAt(KindError, file, line, fmt.Sprintf("panic: %v", v))
}

// panicLocation returns the first non-runtime frame below runtime.gopanic.
func panicLocation() (string, int, bool) {
	pcs := make([]uintptr, maxPanicFrames)
	n := runtime.Callers(2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	afterPanic := false
	for {
		frame, more := frames.Next()
		if afterPanic && !strings.HasPrefix(frame.Function, "runtime.") {
			return frame.File, frame.Line, true
		}
		if frame.Function == "runtime.gopanic" {
			afterPanic = true
		}
		if !more {
			return "", 0, false
		}
	}
}
