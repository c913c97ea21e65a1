package propagation

import (
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/drblury/hoplog/internal/runtime/lifecycle"
	"github.com/drblury/hoplog/internal/runtime/tracectx"
)

type capturingPublisher struct {
	topic    string
	messages []*message.Message
	err      error
	closed   bool
}

func (c *capturingPublisher) Publish(topic string, messages ...*message.Message) error {
	c.topic = topic
	c.messages = messages
	return c.err
}

func (c *capturingPublisher) Close() error {
	c.closed = true
	return nil
}

func TestStampingPublisherUsesMessageContext(t *testing.T) {
	inner := &capturingPublisher{}
	pub := NewStampingPublisher(inner, &lifecycle.Guard{})

	msg := message.NewMessage("uuid", []byte("payload"))
	msg.SetContext(tracectx.With(msg.Context(), tracectx.Context{
		CorrelationID: "abc", ChainLength: 2, DebugEnabled: true,
	}))

	if err := pub.Publish("orders", msg); err != nil {
		t.Fatal(err)
	}

	if inner.topic != "orders" {
		t.Fatalf("expected publish to reach the wrapped publisher, got topic %q", inner.topic)
	}
	got := inner.messages[0].Metadata
	if got[KeyCorrelationID] != "abc" || got[KeyChainLength] != "2" || got[KeyDebugEnabled] != "true" {
		t.Fatalf("unexpected stamped metadata: %#v", got)
	}
}

func TestStampingPublisherFallsBackToGuard(t *testing.T) {
	var guard lifecycle.Guard
	guard.Begin(tracectx.Context{CorrelationID: "ambient", ChainLength: 1})

	inner := &capturingPublisher{}
	pub := NewStampingPublisher(inner, &guard)

	msg := message.NewMessage("uuid", nil)
	if err := pub.Publish("orders", msg); err != nil {
		t.Fatal(err)
	}

	if inner.messages[0].Metadata[KeyCorrelationID] != "ambient" {
		t.Fatalf("expected guard context to be stamped, got %#v", inner.messages[0].Metadata)
	}
}

func TestStampingPublisherWithoutActiveInvocation(t *testing.T) {
	inner := &capturingPublisher{}
	pub := NewStampingPublisher(inner, &lifecycle.Guard{})

	msg := message.NewMessage("uuid", []byte("payload"))
	if err := pub.Publish("orders", msg); err != nil {
		t.Fatal(err)
	}

	if _, stamped := inner.messages[0].Metadata[KeyCorrelationID]; stamped {
		t.Fatal("expected nothing to be transmitted without an active invocation")
	}
	if string(inner.messages[0].Payload) != "payload" {
		t.Fatal("payload must pass through unmodified")
	}
}

func TestStampingPublisherRespectsExplicitMetadata(t *testing.T) {
	var guard lifecycle.Guard
	guard.Begin(tracectx.Context{CorrelationID: "ambient", ChainLength: 1})

	inner := &capturingPublisher{}
	pub := NewStampingPublisher(inner, &guard)

	msg := message.NewMessage("uuid", nil)
	msg.Metadata.Set(KeyCorrelationID, "explicit")
	if err := pub.Publish("orders", msg); err != nil {
		t.Fatal(err)
	}

	if inner.messages[0].Metadata[KeyCorrelationID] != "explicit" {
		t.Fatal("caller-stamped metadata must win over the ambient context")
	}
}

func TestStampingPublisherPropagatesErrors(t *testing.T) {
	boom := errors.New("broker down")
	inner := &capturingPublisher{err: boom}
	pub := NewStampingPublisher(inner, &lifecycle.Guard{})

	if err := pub.Publish("orders", message.NewMessage("uuid", nil)); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped publisher error, got %v", err)
	}

	if err := pub.Close(); err != nil {
		t.Fatal(err)
	}
	if !inner.closed {
		t.Fatal("expected close to reach the wrapped publisher")
	}
}
