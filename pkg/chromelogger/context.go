package chromelogger

import "context"

type contextKey struct{}

// WithConsole returns a copy of ctx carrying c.
func WithConsole(ctx context.Context, c *Console) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext returns the Console stored in ctx, or nil. The nil Console is
// safe to log to.
func FromContext(ctx context.Context) *Console {
	if ctx == nil {
		return nil
	}
	c, _ := ctx.Value(contextKey{}).(*Console)
	return c
}
