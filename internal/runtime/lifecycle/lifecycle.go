// Package lifecycle owns the process-wide active trace context. Execution
// environments are reused across invocations (warm starts), so the guard
// must be reset at the top of every invocation entry point — otherwise the
// previous transaction's correlation id and debug decision leak into an
// unrelated transaction.
package lifecycle

import (
	"sync/atomic"

	"github.com/drblury/hoplog/internal/runtime/tracectx"
)

// Guard holds the trace context of the invocation currently being served.
// State moves through init → use → clear, scoped to exactly one invocation.
type Guard struct {
	active atomic.Pointer[tracectx.Context]
}

// Begin seeds the guard for a new invocation. Any context left over from a
// previous invocation is discarded unconditionally.
func (g *Guard) Begin(tc tracectx.Context) {
	g.active.Store(&tc)
}

// Current returns the active trace context, if an invocation is in flight.
func (g *Guard) Current() (tracectx.Context, bool) {
	p := g.active.Load()
	if p == nil {
		return tracectx.Context{}, false
	}
	return *p, true
}

// Reset clears the active context at invocation end.
func (g *Guard) Reset() {
	g.active.Store(nil)
}

// Default is the ambient guard used by call sites that do not thread a
// context.Context (structured logging deep inside business code).
var Default = &Guard{}

// Begin seeds the default guard.
func Begin(tc tracectx.Context) { Default.Begin(tc) }

// Current reads the default guard.
func Current() (tracectx.Context, bool) { return Default.Current() }

// Reset clears the default guard.
func Reset() { Default.Reset() }
