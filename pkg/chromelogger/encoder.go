package chromelogger

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
)

// Columns is the fixed row layout announced in every envelope.
var Columns = []string{"log", "backtrace", "type"}

// Envelope is the JSON document carried by the header.
type Envelope struct {
	Version    string   `json:"version"`
	Columns    []string `json:"columns"`
	Rows       []Row    `json:"rows"`
	RequestURI *string  `json:"request_uri"`
}

// MarshalJSON encodes a row as the [values, location, kind] tuple.
func (r Row) MarshalJSON() ([]byte, error) {
	values := r.Values
	if values == nil {
		values = []any{}
	}
	return marshalJSON([]any{values, r.Location, r.Kind})
}

// UnmarshalJSON reads the [values, location, kind] tuple. Values are decoded
// with json.Number for numbers; an empty kind is read as "log".
func (r *Row) UnmarshalJSON(data []byte) error {
	var tuple []json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return err
	}
	if len(tuple) != len(Columns) {
		return fmt.Errorf("row has %d columns, want %d", len(tuple), len(Columns))
	}

	dec := json.NewDecoder(bytes.NewReader(tuple[0]))
	dec.UseNumber()
	var values []any
	if err := dec.Decode(&values); err != nil {
		return fmt.Errorf("row values: %w", err)
	}
	var location *string
	if err := json.Unmarshal(tuple[1], &location); err != nil {
		return fmt.Errorf("row backtrace: %w", err)
	}
	var kind Kind
	if err := json.Unmarshal(tuple[2], &kind); err != nil {
		return fmt.Errorf("row type: %w", err)
	}
	if kind == "" {
		kind = KindLog
	}

	*r = Row{Values: values, Location: location, Kind: kind}
	return nil
}

// HeaderWriter is the part of http.ResponseWriter needed to deliver the log.
// Writers that also implement Written() bool are skipped once the response
// has been committed.
type HeaderWriter interface {
	Header() http.Header
}

type writtenReporter interface {
	Written() bool
}

// Envelope returns the envelope for the rows recorded so far.
func (c *Console) Envelope() Envelope {
	env := Envelope{
		Version: Version,
		Columns: append([]string(nil), Columns...),
		Rows:    c.Rows(),
	}
	if c != nil && c.cfg.RequestURI != nil {
		uri := *c.cfg.RequestURI
		env.RequestURI = &uri
	}
	return env
}

// EncodeHeader returns base64(JSON) of the envelope.
func (c *Console) EncodeHeader() string {
	value, _ := c.encode()
	return value
}

// encode reports whether the rows had to be replaced to respect MaxHeaderBytes.
func (c *Console) encode() (string, bool) {
	env := c.Envelope()
	value, err := encodeEnvelope(env)
	if err != nil {
		env.Rows = []Row{noticeRow(fmt.Sprintf("chromelogger: encode failed: %v", err))}
		value, _ = encodeEnvelope(env)
	}
	if c == nil || c.cfg.MaxHeaderBytes <= 0 || len(value) <= c.cfg.MaxHeaderBytes {
		return value, false
	}
	dropped := len(env.Rows)
	env.Rows = []Row{noticeRow(fmt.Sprintf("chromelogger: log truncated, %d rows dropped (%d bytes)", dropped, len(value)))}
	value, _ = encodeEnvelope(env)
	return value, true
}

// SendLogHeader sets the header on w unless the response was already
// committed. It reports whether the header was set. Calling it again before
// the response is committed replaces the previous value.
func (c *Console) SendLogHeader(w HeaderWriter) bool {
	if c == nil || w == nil {
		return false
	}
	if wr, ok := w.(writtenReporter); ok && wr.Written() {
		return false
	}
	value, truncated := c.encode()
	w.Header().Set(HeaderName, value)

	c.mu.Lock()
	if c.state == StateAccumulating {
		c.state = StateSent
	}
	c.headerBytes = len(value)
	c.truncated = truncated
	c.mu.Unlock()
	return true
}

// DecodeHeader reverses EncodeHeader and returns the JSON document.
func DecodeHeader(value string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", HeaderName, err)
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("decode %s: payload is not valid JSON", HeaderName)
	}
	return raw, nil
}

// ParseHeader decodes a header value into an Envelope.
func ParseHeader(value string) (Envelope, error) {
	raw, err := DecodeHeader(value)
	if err != nil {
		return Envelope{}, err
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode %s: %w", HeaderName, err)
	}
	return env, nil
}

func encodeEnvelope(env Envelope) (string, error) {
	raw, err := marshalJSON(env)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func noticeRow(message string) Row {
	return Row{Values: []any{message}, Kind: KindWarn}
}

// marshalJSON is json.Marshal without HTML escaping and without the trailing
// newline added by json.Encoder. Invalid UTF-8 is replaced by U+FFFD.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
