package lifecycle

import (
	"testing"

	"github.com/drblury/hoplog/internal/runtime/tracectx"
)

func TestBeginReplacesPreviousInvocation(t *testing.T) {
	var g Guard

	g.Begin(tracectx.Context{CorrelationID: "t1", ChainLength: 1, InvocationID: "inv-1"})
	g.Begin(tracectx.Context{CorrelationID: "t2", ChainLength: 1, InvocationID: "inv-2"})

	tc, ok := g.Current()
	if !ok {
		t.Fatal("expected an active context")
	}
	if tc.CorrelationID != "t2" {
		t.Fatalf("previous invocation leaked: got %q", tc.CorrelationID)
	}
}

func TestResetClearsActiveContext(t *testing.T) {
	var g Guard

	g.Begin(tracectx.Context{CorrelationID: "t1"})
	g.Reset()

	if tc, ok := g.Current(); ok {
		t.Fatalf("expected no active context after reset, got %+v", tc)
	}
}

func TestCurrentOnFreshGuard(t *testing.T) {
	var g Guard
	if _, ok := g.Current(); ok {
		t.Fatal("expected fresh guard to hold no context")
	}
}

func TestWarmReuseDoesNotLeakAcrossInvocations(t *testing.T) {
	var g Guard

	// First invocation inherits a transaction.
	g.Begin(tracectx.Context{CorrelationID: "t1", ChainLength: 2, DebugEnabled: true})
	g.Reset()

	// Second invocation in the same process originates a fresh transaction.
	g.Begin(tracectx.Context{CorrelationID: "fresh", ChainLength: 1})

	tc, ok := g.Current()
	if !ok {
		t.Fatal("expected an active context")
	}
	if tc.CorrelationID == "t1" {
		t.Fatal("correlation id from the previous invocation leaked")
	}
	if tc.DebugEnabled {
		t.Fatal("debug decision from the previous invocation leaked")
	}
}

func TestDefaultGuardHelpers(t *testing.T) {
	t.Cleanup(Reset)

	Begin(tracectx.Context{CorrelationID: "ambient", ChainLength: 1})
	tc, ok := Current()
	if !ok || tc.CorrelationID != "ambient" {
		t.Fatalf("expected ambient context, got %+v (ok=%v)", tc, ok)
	}

	Reset()
	if _, ok := Current(); ok {
		t.Fatal("expected default guard to be cleared")
	}
}
