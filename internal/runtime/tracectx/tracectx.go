// Package tracectx defines the per-invocation trace context carried across
// every hop of a transaction: the stable correlation identifier, the hop
// depth, and the sticky debug-sampling decision.
package tracectx

import "context"

// Context is the immutable correlation state of a single invocation.
// It is fully determined before any business logic runs and is never
// mutated afterwards; deriving the state for the next hop produces a new
// value via NextHop.
type Context struct {
	// CorrelationID identifies the whole transaction. It is assigned once
	// at the transaction root and reused verbatim on every later hop.
	CorrelationID string

	// ChainLength counts the hops traversed so far, including this one.
	// The root of a transaction has ChainLength 1.
	ChainLength int

	// DebugEnabled is the transaction-wide sampling decision. Once true it
	// stays true on every downstream hop; downstream hops never resample.
	DebugEnabled bool

	// InvocationID identifies the current invocation only. It is not
	// propagated downstream.
	InvocationID string
}

// NextHop derives the context to hand to a downstream call: same
// correlation id and debug decision, chain length incremented by one,
// invocation id dropped (the next hop assigns its own).
func (c Context) NextHop() Context {
	return Context{
		CorrelationID: c.CorrelationID,
		ChainLength:   c.ChainLength + 1,
		DebugEnabled:  c.DebugEnabled,
	}
}

// IsZero reports whether the context carries no correlation state.
func (c Context) IsZero() bool {
	return c.CorrelationID == "" && c.ChainLength == 0 && !c.DebugEnabled && c.InvocationID == ""
}

type contextKey struct{}

// With returns a child context.Context carrying the trace context.
func With(ctx context.Context, tc Context) context.Context {
	return context.WithValue(ctx, contextKey{}, tc)
}

// From extracts the trace context from a context.Context. The second
// return value is false when no trace context was attached.
func From(ctx context.Context) (Context, bool) {
	if ctx == nil {
		return Context{}, false
	}
	tc, ok := ctx.Value(contextKey{}).(Context)
	return tc, ok
}
