// Package cli provides terminal rendering of Chrome Logger data and shell
// completion for the inspector.
package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/R3E-Network/chromelogger/pkg/chromelogger"
)

// Color codes for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorCyan   = "\033[36m"
	ColorDim    = "\033[2m"
	ColorBold   = "\033[1m"
)

var kindStyles = map[chromelogger.Kind]struct {
	symbol string
	color  string
}{
	chromelogger.KindLog:            {" ", ""},
	chromelogger.KindInfo:           {"ℹ", ColorBlue},
	chromelogger.KindWarn:           {"⚠", ColorYellow},
	chromelogger.KindError:          {"✗", ColorRed},
	chromelogger.KindTable:          {"▦", ColorCyan},
	chromelogger.KindGroup:          {"▼", ColorBold},
	chromelogger.KindGroupCollapsed: {"▶", ColorBold},
}

// Printer renders an envelope as indented, optionally colored text.
type Printer struct {
	writer        io.Writer
	colorize      bool
	showLocations bool
	indent        string
}

// NewPrinter creates a printer. Color is enabled when w is a terminal.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{
		writer:        w,
		colorize:      isTerminal(w),
		showLocations: true,
		indent:        "  ",
	}
}

// DisableColor disables colored output
func (p *Printer) DisableColor() *Printer {
	p.colorize = false
	return p
}

// ShowLocations toggles the backtrace column.
func (p *Printer) ShowLocations(show bool) *Printer {
	p.showLocations = show
	return p
}

// Print writes every row of env. Rows inside groups are indented; a row whose
// location is null repeats the previous location and prints none.
func (p *Printer) Print(env chromelogger.Envelope) error {
	var buf bytes.Buffer

	title := "(no request uri)"
	if env.RequestURI != nil {
		title = *env.RequestURI
	}
	fmt.Fprintf(&buf, "%s %s\n", p.color(title, ColorBold), p.color("v"+env.Version, ColorDim))

	depth := 0
	for _, row := range env.Rows {
		if row.Kind == chromelogger.KindGroupEnd {
			if depth > 0 {
				depth--
			}
			continue
		}

		style, ok := kindStyles[row.Kind]
		if !ok {
			style = kindStyles[chromelogger.KindLog]
		}
		line := strings.Repeat(p.indent, depth) + p.color(style.symbol, style.color) + " " + p.formatValues(row)
		if p.showLocations && row.Location != nil {
			line += "  " + p.color(*row.Location, ColorDim)
		}
		buf.WriteString(line)
		buf.WriteByte('\n')

		if row.Kind == chromelogger.KindGroup || row.Kind == chromelogger.KindGroupCollapsed {
			depth++
		}
	}

	_, err := p.writer.Write(buf.Bytes())
	return err
}

func (p *Printer) formatValues(row chromelogger.Row) string {
	parts := make([]string, 0, len(row.Values))
	for _, v := range row.Values {
		parts = append(parts, FormatValue(v))
	}
	text := strings.Join(parts, " ")
	if style, ok := kindStyles[row.Kind]; ok && style.color != "" && row.Kind != chromelogger.KindTable {
		return p.color(text, style.color)
	}
	return text
}

// FormatValue renders strings verbatim and everything else as compact JSON.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case json.Number:
		return val.String()
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func (p *Printer) color(text, color string) string {
	if !p.colorize || color == "" {
		return text
	}
	return color + text + ColorReset
}

// Spinner shows activity on a terminal while a request is in flight.
type Spinner struct {
	frames   []string
	prefix   string
	writer   io.Writer
	interval time.Duration
	active   bool
	stopCh   chan struct{}
	doneCh   chan struct{}
	mu       sync.Mutex
}

// NewSpinner creates a new spinner writing to w. It stays silent unless w is
// a terminal.
func NewSpinner(w io.Writer, prefix string) *Spinner {
	return &Spinner{
		frames:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		prefix:   prefix,
		writer:   w,
		interval: 100 * time.Millisecond,
	}
}

// Start starts the spinner
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active || !isTerminal(s.writer) {
		return
	}
	s.active = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	go func(stop <-chan struct{}, done chan<- struct{}) {
		defer close(done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for i := 0; ; i++ {
			fmt.Fprintf(s.writer, "\r%s %s", s.frames[i%len(s.frames)], s.prefix)
			select {
			case <-stop:
				fmt.Fprintf(s.writer, "\r%s\r", strings.Repeat(" ", len(s.prefix)+2))
				return
			case <-ticker.C:
			}
		}
	}(s.stopCh, s.doneCh)
}

// Stop stops the spinner and clears its line
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	close(s.stopCh)
	done := s.doneCh
	s.mu.Unlock()
	<-done
}

// isTerminal checks if w is a character device
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fileInfo, err := f.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
