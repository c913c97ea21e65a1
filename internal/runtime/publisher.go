package runtime

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"

	errspkg "github.com/drblury/hoplog/internal/runtime/errors"
	idspkg "github.com/drblury/hoplog/internal/runtime/ids"
	metadatapkg "github.com/drblury/hoplog/internal/runtime/metadata"
)

// NewMessage builds a watermill message with a fresh ULID and the supplied
// caller metadata. The propagation layer adds the correlation fields at
// publish time.
func NewMessage(payload []byte, md metadatapkg.Metadata) (*message.Message, error) {
	if payload == nil {
		return nil, errspkg.ErrPayloadRequired
	}

	msg := message.NewMessage(idspkg.New(), payload)
	msg.Metadata = metadatapkg.ToWatermill(md)
	return msg, nil
}

// Publish sends a payload to topic through the given publisher. The message
// carries ctx so a stamping publisher can read the trace context from it.
func Publish(ctx context.Context, publisher message.Publisher, topic string, payload []byte, md metadatapkg.Metadata) error {
	if publisher == nil {
		return errspkg.ErrPublisherRequired
	}
	if topic == "" {
		return errspkg.ErrTopicRequired
	}

	msg, err := NewMessage(payload, md)
	if err != nil {
		return err
	}

	if ctx != nil {
		msg.SetContext(ctx)
	}

	return publisher.Publish(topic, msg)
}

// Publish emits the payload through the hop's stamping publisher so call
// sites outside a handler can enqueue correlated messages.
func (h *Hop) Publish(ctx context.Context, topic string, payload []byte, md metadatapkg.Metadata) error {
	if h == nil {
		return errspkg.ErrHopRequired
	}
	return Publish(ctx, h.publisher, topic, payload, md)
}
