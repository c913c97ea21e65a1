package runtime

import (
	"github.com/ThreeDotsLabs/watermill/message"

	errspkg "github.com/drblury/hoplog/internal/runtime/errors"
)

// MessageHandlerRegistration wires a raw watermill handler onto the hop's
// router. Leave Subscriber/Publisher nil to use the hop's transport; the
// hop publisher stamps outgoing messages either way.
type MessageHandlerRegistration struct {
	Name         string
	ConsumeTopic string
	PublishTopic string
	Handler      message.HandlerFunc
	Subscriber   message.Subscriber
	Publisher    message.Publisher
}

// RegisterMessageHandler attaches the provided handler to the hop router.
func RegisterMessageHandler(h *Hop, cfg MessageHandlerRegistration) error {
	if h == nil {
		return errspkg.ErrHopRequired
	}
	return h.registerHandler(cfg)
}

// RegisterHandler attaches a handler consuming consumeTopic and publishing
// its returned messages to publishTopic.
func (h *Hop) RegisterHandler(name, consumeTopic, publishTopic string, fn message.HandlerFunc) error {
	return h.registerHandler(MessageHandlerRegistration{
		Name:         name,
		ConsumeTopic: consumeTopic,
		PublishTopic: publishTopic,
		Handler:      fn,
	})
}

// RegisterConsumer attaches a handler that consumes consumeTopic without
// publishing anything.
func (h *Hop) RegisterConsumer(name, consumeTopic string, fn message.NoPublishHandlerFunc) error {
	if fn == nil {
		return errspkg.ErrHandlerRequired
	}
	if name == "" {
		return errspkg.ErrHandlerNameRequired
	}
	if consumeTopic == "" {
		return errspkg.ErrConsumeTopicRequired
	}

	h.router.AddNoPublisherHandler(name, consumeTopic, h.subscriber, fn)
	return nil
}

func (h *Hop) registerHandler(cfg MessageHandlerRegistration) error {
	if cfg.Handler == nil {
		return errspkg.ErrHandlerRequired
	}
	if cfg.Name == "" {
		return errspkg.ErrHandlerNameRequired
	}
	if cfg.ConsumeTopic == "" {
		return errspkg.ErrConsumeTopicRequired
	}
	if cfg.Subscriber == nil {
		cfg.Subscriber = h.subscriber
	}
	if cfg.Publisher == nil {
		cfg.Publisher = h.publisher
	}

	h.router.AddHandler(
		cfg.Name,
		cfg.ConsumeTopic,
		cfg.Subscriber,
		cfg.PublishTopic,
		cfg.Publisher,
		cfg.Handler,
	)

	return nil
}
