package propagation

import (
	"net/http"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/drblury/hoplog/internal/runtime/sampling"
	"github.com/drblury/hoplog/internal/runtime/tracectx"
)

func TestInjectEncodesWireFields(t *testing.T) {
	tc := tracectx.Context{CorrelationID: "abc", ChainLength: 2, DebugEnabled: true, InvocationID: "inv"}

	md := Inject(tc)

	if md.Get(KeyCorrelationID) != "abc" {
		t.Fatalf("expected correlation id on the wire, got %q", md.Get(KeyCorrelationID))
	}
	if md.Get(KeyChainLength) != "2" {
		t.Fatalf("expected sender chain length on the wire, got %q", md.Get(KeyChainLength))
	}
	if md.Get(KeyDebugEnabled) != "true" {
		t.Fatalf("expected debug flag on the wire, got %q", md.Get(KeyDebugEnabled))
	}
	if _, present := md.Lookup("invocation_id"); present {
		t.Fatal("invocation id must never be transmitted")
	}
}

func TestRoundTripThroughMetadata(t *testing.T) {
	e := NewExtractor(sampling.Sampler{Probability: 0, Rand: func() float64 {
		t.Fatal("round trip must not resample")
		return 0
	}})

	sender := tracectx.Context{CorrelationID: "abc", ChainLength: 4, DebugEnabled: true, InvocationID: "inv-a"}
	receiver := e.FromMetadata(Inject(sender))

	if receiver.CorrelationID != sender.CorrelationID {
		t.Fatalf("correlation id changed in flight: %q", receiver.CorrelationID)
	}
	if receiver.ChainLength != sender.ChainLength+1 {
		t.Fatalf("expected chain length %d, got %d", sender.ChainLength+1, receiver.ChainLength)
	}
	if receiver.DebugEnabled != sender.DebugEnabled {
		t.Fatal("debug decision changed in flight")
	}
}

func TestRoundTripThroughHTTPHeaders(t *testing.T) {
	e := NewExtractor(sampling.Sampler{})

	sender := tracectx.Context{CorrelationID: "abc", ChainLength: 1, DebugEnabled: false}
	h := http.Header{}
	InjectHTTPHeader(sender, h)

	receiver := e.FromHTTPHeader(h)
	if receiver.CorrelationID != "abc" || receiver.ChainLength != 2 || receiver.DebugEnabled {
		t.Fatalf("unexpected context after HTTP round trip: %+v", receiver)
	}
}

func TestRoundTripThroughMessage(t *testing.T) {
	e := NewExtractor(sampling.Sampler{})

	sender := tracectx.Context{CorrelationID: "abc", ChainLength: 1, DebugEnabled: true}
	msg := message.NewMessage("uuid", []byte("payload"))
	StampMessage(sender, msg)

	receiver := e.FromMessage(msg)
	if receiver.CorrelationID != "abc" || receiver.ChainLength != 2 || !receiver.DebugEnabled {
		t.Fatalf("unexpected context after message round trip: %+v", receiver)
	}
	if string(msg.Payload) != "payload" {
		t.Fatal("stamping must not touch the payload")
	}
}

func TestInjectWithoutMetadataChannelIsSafe(t *testing.T) {
	tc := tracectx.Context{CorrelationID: "abc", ChainLength: 1}

	// None of these may panic; the downstream hop simply starts fresh.
	InjectHTTPHeader(tc, nil)
	InjectRequest(tc, nil)
	StampMessage(tc, nil)
}

func TestStampMessageInitialisesMissingMetadata(t *testing.T) {
	msg := &message.Message{UUID: "uuid", Payload: []byte("body")}
	StampMessage(tracectx.Context{CorrelationID: "abc", ChainLength: 1}, msg)

	if msg.Metadata[KeyCorrelationID] != "abc" {
		t.Fatalf("expected stamped metadata, got %#v", msg.Metadata)
	}
	if string(msg.Payload) != "body" {
		t.Fatal("payload must remain unmodified")
	}
}

func TestInjectRequestSetsHeaders(t *testing.T) {
	req, err := http.NewRequest(http.MethodPost, "http://downstream/orders", nil)
	if err != nil {
		t.Fatal(err)
	}

	InjectRequest(tracectx.Context{CorrelationID: "abc", ChainLength: 2, DebugEnabled: true}, req)

	if req.Header.Get(KeyCorrelationID) != "abc" {
		t.Fatal("expected correlation header on outbound request")
	}
	if req.Header.Get(KeyChainLength) != "2" {
		t.Fatalf("expected chain length 2, got %q", req.Header.Get(KeyChainLength))
	}
}
