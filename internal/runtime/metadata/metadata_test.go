package metadata

import (
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
)

func TestCloneDoesNotAliasOriginal(t *testing.T) {
	inbound := Metadata{"x-correlation-id": "abc", "call-chain-length": "1"}
	outbound := inbound.Clone()
	outbound["call-chain-length"] = "2"

	if inbound["call-chain-length"] != "1" {
		t.Fatalf("expected inbound envelope untouched, got %q", inbound["call-chain-length"])
	}
}

func TestCloneNil(t *testing.T) {
	var m Metadata
	cloned := m.Clone()
	if cloned == nil || len(cloned) != 0 {
		t.Fatalf("expected empty non-nil clone, got %#v", cloned)
	}
}

func TestWithAndWithAll(t *testing.T) {
	base := Metadata{"x-correlation-id": "abc"}

	stamped := base.With("debug-log-enabled", "true")
	if _, ok := base.Lookup("debug-log-enabled"); ok {
		t.Fatal("expected base envelope to stay unchanged")
	}
	if stamped.Get("debug-log-enabled") != "true" {
		t.Fatal("expected stamped envelope to carry the new entry")
	}

	merged := stamped.WithAll(Metadata{"call-chain-length": "3"})
	if merged.Get("call-chain-length") != "3" || merged.Get("x-correlation-id") != "abc" {
		t.Fatalf("expected merged envelope to carry both entries, got %#v", merged)
	}
}

func TestLookupDistinguishesAbsent(t *testing.T) {
	m := Metadata{"debug-log-enabled": ""}

	if _, ok := m.Lookup("debug-log-enabled"); !ok {
		t.Fatal("expected empty value to still count as present")
	}
	if _, ok := m.Lookup("x-correlation-id"); ok {
		t.Fatal("expected missing key to be reported absent")
	}
}

func TestWatermillConversionCopies(t *testing.T) {
	md := Metadata{"x-correlation-id": "abc"}

	wm := ToWatermill(md)
	wm["x-correlation-id"] = "mutated"
	if md["x-correlation-id"] != "abc" {
		t.Fatal("expected original envelope to be isolated from watermill map")
	}

	back := FromWatermill(message.Metadata{"call-chain-length": "2"})
	if back.Get("call-chain-length") != "2" {
		t.Fatal("expected watermill metadata to convert back")
	}

	if len(ToWatermill(nil)) != 0 || len(FromWatermill(nil)) != 0 {
		t.Fatal("expected nil inputs to yield empty maps")
	}
}
