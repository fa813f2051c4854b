package platform

import "context"

// ProgressFunc receives human readable progress messages.
type ProgressFunc func(msg string)

type progressKey struct{}

// WithProgress returns a context carrying fn.
func WithProgress(ctx context.Context, fn ProgressFunc) context.Context {
	return context.WithValue(ctx, progressKey{}, fn)
}

// ReportProgress calls the callback in ctx. Contexts without one (HTTP and
// MCP requests) are ignored.
func ReportProgress(ctx context.Context, msg string) {
	if fn, ok := ctx.Value(progressKey{}).(ProgressFunc); ok && fn != nil {
		fn(msg)
	}
}
