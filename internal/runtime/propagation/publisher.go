package propagation

import (
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/drblury/hoplog/internal/runtime/lifecycle"
	"github.com/drblury/hoplog/internal/runtime/tracectx"
)

// StampingPublisher decorates a watermill publisher so every published
// message carries the next-hop context before it reaches the wire. The
// context is taken from the message's Go context when present, falling
// back to the guard's active invocation. Messages already stamped by the
// caller are left alone so explicit metadata wins.
type StampingPublisher struct {
	inner message.Publisher
	guard *lifecycle.Guard
}

// NewStampingPublisher wraps pub. A nil guard falls back to the default
// ambient guard.
func NewStampingPublisher(pub message.Publisher, guard *lifecycle.Guard) *StampingPublisher {
	if guard == nil {
		guard = lifecycle.Default
	}
	return &StampingPublisher{inner: pub, guard: guard}
}

// Publish stamps each message and forwards to the wrapped publisher.
// Stamping happens synchronously, before dispatch, so the injected context
// can never be stale.
func (p *StampingPublisher) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		if msg == nil {
			continue
		}
		if _, stamped := msg.Metadata[KeyCorrelationID]; stamped {
			continue
		}

		tc, ok := tracectx.From(msg.Context())
		if !ok {
			tc, ok = p.guard.Current()
		}
		if !ok {
			// No active invocation: transmit nothing and let the next hop
			// originate its own transaction.
			continue
		}
		StampMessage(tc, msg)
	}
	return p.inner.Publish(topic, messages...)
}

// Close closes the wrapped publisher.
func (p *StampingPublisher) Close() error {
	return p.inner.Close()
}
