package chromelogger

import (
	"fmt"
	"runtime"
	"sync"
)

const (
	// Version is the Chrome Logger protocol version written into every envelope.
	Version = "1.0.0"

	// HeaderName is the response header read by the browser extension.
	HeaderName = "X-ChromeLogger-Data"

	// DefaultBacktraceLevel attributes a row to the direct caller of the logging method.
	DefaultBacktraceLevel = 1

	// DefaultMaxDepth bounds how deep the flattener descends into nested values.
	DefaultMaxDepth = 32

	locationFormat  = "%s : %d"
	unknownLocation = "unknown"
)

// State is the delivery state of a Console.
type State int

const (
	StateAccumulating State = iota
	StateSent
	StateSealed
)

func (s State) String() string {
	switch s {
	case StateAccumulating:
		return "accumulating"
	case StateSent:
		return "sent"
	case StateSealed:
		return "sealed"
	default:
		return "unknown"
	}
}

// Config configures a Console.
type Config struct {
	// BacktraceLevel is the number of frames above the logging method used as
	// the row location. Zero or negative values select DefaultBacktraceLevel.
	BacktraceLevel int

	// MaxDepth limits nesting during flattening. Zero selects DefaultMaxDepth,
	// a negative value disables the limit.
	MaxDepth int

	// MaxHeaderBytes caps the encoded header. Zero means no cap.
	MaxHeaderBytes int

	// RequestURI is copied into the envelope; nil encodes as null.
	RequestURI *string
}

// Row is one console entry.
type Row struct {
	Values   []any
	Location *string
	Kind     Kind
}

// Stats summarises what a Console has recorded and delivered.
type Stats struct {
	Rows        int
	Dropped     int
	Kinds       map[Kind]int
	HeaderBytes int
	Truncated   bool
	State       State
}

// Console accumulates rows for a single request.
type Console struct {
	cfg Config

	mu           sync.Mutex
	rows         []Row
	lastLocation string
	hasLocation  bool
	dropped      int
	state        State
	headerBytes  int
	truncated    bool
}

// New creates a Console with defaults applied to cfg.
func New(cfg Config) *Console {
	if cfg.BacktraceLevel <= 0 {
		cfg.BacktraceLevel = DefaultBacktraceLevel
	}
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	if cfg.MaxHeaderBytes < 0 {
		cfg.MaxHeaderBytes = 0
	}
	if cfg.RequestURI != nil {
		uri := *cfg.RequestURI
		cfg.RequestURI = &uri
	}
	return &Console{cfg: cfg, rows: make([]Row, 0)}
}

// Emit records a row of the given kind. Unknown kinds are ignored.
func (c *Console) Emit(kind Kind, args ...any) { c.emit(kind, args) }

// Log records a "log" row.
func (c *Console) Log(args ...any) { c.emit(KindLog, args) }

// Info records an "info" row.
func (c *Console) Info(args ...any) { c.emit(KindInfo, args) }

// Warn records a "warn" row.
func (c *Console) Warn(args ...any) { c.emit(KindWarn, args) }

// Error records an "error" row.
func (c *Console) Error(args ...any) { c.emit(KindError, args) }

// Table records a "table" row.
func (c *Console) Table(args ...any) { c.emit(KindTable, args) }

// Group opens an expanded group.
func (c *Console) Group(args ...any) { c.emit(KindGroup, args) }

// GroupCollapsed opens a collapsed group.
func (c *Console) GroupCollapsed(args ...any) { c.emit(KindGroupCollapsed, args) }

// GroupEnd closes the innermost group. It is the only kind allowed without arguments.
func (c *Console) GroupEnd(args ...any) { c.emit(KindGroupEnd, args) }

// EmitAt records a row attributed to an explicit source location instead of
// the caller. An empty file is recorded as "unknown".
func (c *Console) EmitAt(kind Kind, file string, line int, args ...any) {
	if c == nil || !accepts(kind, args) {
		return
	}
	location := unknownLocation
	if file != "" {
		location = formatLocation(file, line)
	}
	c.addRow(kind, location, args)
}

// emit must be called directly by the exported logging methods: the caller
// frame is resolved relative to it.
func (c *Console) emit(kind Kind, args []any) {
	if c == nil || !accepts(kind, args) {
		return
	}
	location := unknownLocation
	// frame 0 is emit, frame 1 the exported method
	if _, file, line, ok := runtime.Caller(1 + c.cfg.BacktraceLevel); ok {
		location = formatLocation(file, line)
	}
	c.addRow(kind, location, args)
}

func accepts(kind Kind, args []any) bool {
	if !kind.Valid() {
		return false
	}
	return len(args) > 0 || kind == KindGroupEnd
}

func formatLocation(file string, line int) string {
	return fmt.Sprintf(locationFormat, file, line)
}

func (c *Console) addRow(kind Kind, location string, args []any) {
	// flatten outside the lock; ConsoleValue implementations may log
	f := newFlattener(c.cfg.MaxDepth)
	values := make([]any, len(args))
	for i, arg := range args {
		values[i] = f.flatten(arg)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateSealed {
		c.dropped++
		return
	}

	var loc *string
	if !kind.isGroup() {
		if !c.hasLocation || c.lastLocation != location {
			loc = &location
			c.lastLocation = location
			c.hasLocation = true
		}
	}
	c.rows = append(c.rows, Row{Values: values, Location: loc, Kind: kind})
}

// Rows returns a copy of the recorded rows in emission order.
func (c *Console) Rows() []Row {
	if c == nil {
		return []Row{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Row, len(c.rows))
	copy(out, c.rows)
	return out
}

// Len returns the number of recorded rows.
func (c *Console) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rows)
}

// Dropped returns the number of rows discarded because they arrived after Seal.
func (c *Console) Dropped() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

// State returns the current delivery state.
func (c *Console) State() State {
	if c == nil {
		return StateAccumulating
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Seal marks the response as committed. Rows emitted afterwards are dropped.
func (c *Console) Seal() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.state = StateSealed
	c.mu.Unlock()
}

// Stats returns counters describing the console.
func (c *Console) Stats() Stats {
	if c == nil {
		return Stats{Kinds: map[Kind]int{}}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	kinds := make(map[Kind]int)
	for _, row := range c.rows {
		kinds[row.Kind]++
	}
	return Stats{
		Rows:        len(c.rows),
		Dropped:     c.dropped,
		Kinds:       kinds,
		HeaderBytes: c.headerBytes,
		Truncated:   c.truncated,
		State:       c.state,
	}
}
