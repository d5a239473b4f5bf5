// Package artifacts threads a request-scoped recorder through the
// agent loop so chart tools can report the files they produced, instead
// of the HTTP layer inferring production from a filesystem poll alone.
package artifacts

import (
	"context"
	"sync"
)

type contextKey struct{}

// Recorder collects paths of artifacts produced during one request.
// Safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	paths []string
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

// Paths returns the recorded artifact paths in production order.
func (r *Recorder) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.paths))
	copy(out, r.paths)
	return out
}

// WithRecorder binds a recorder to the context for the request's agent
// invocation.
func WithRecorder(ctx context.Context, r *Recorder) context.Context {
	return context.WithValue(ctx, contextKey{}, r)
}

// Record reports a produced artifact. Calls without a bound recorder
// (the CLI chat path) are no-ops.
func Record(ctx context.Context, path string) {
	if r, ok := ctx.Value(contextKey{}).(*Recorder); ok {
		r.add(path)
	}
}
