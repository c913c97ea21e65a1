// Package jetstream provides a NATS JetStream transport built directly on
// the NATS client. Metadata rides in NATS message headers, so correlation
// state survives persistence and redelivery.
package jetstream

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/nats-io/nats.go"

	"github.com/drblury/hoplog/transport"
)

// TransportName is the registry name of this transport.
const TransportName = "nats-jetstream"

const (
	// DefaultStreamName is the stream used when none is configured.
	DefaultStreamName = "HOPLOG"

	// DefaultAckWait is how long JetStream waits for an ack before
	// redelivering.
	DefaultAckWait = 30 * time.Second

	// fetchBatchSize is how many messages a single pull fetch requests.
	fetchBatchSize = 10

	// headerMessageUUID carries the watermill message UUID across the
	// wire, separate from user metadata.
	headerMessageUUID = "_hoplog_message_uuid"
)

// ConnectFactory allows overriding the NATS connection for testing.
var ConnectFactory = func(url string) (*nats.Conn, error) {
	return nats.Connect(url)
}

func init() {
	transport.RegisterWithCapabilities(TransportName, Build, transport.NATSJetStreamCapabilities)
}

// Config holds JetStream-specific settings.
type Config struct {
	// URL is the NATS server URL.
	URL string

	// StreamName is the JetStream stream to publish into. Topics become
	// subjects under "<StreamName>.<topic>".
	StreamName string

	// AckWait is the redelivery timeout for unacknowledged messages.
	AckWait time.Duration
}

func (c Config) withDefaults() Config {
	if c.StreamName == "" {
		c.StreamName = DefaultStreamName
	}
	if c.AckWait <= 0 {
		c.AckWait = DefaultAckWait
	}
	return c
}

// Build creates the JetStream transport from the shared config surface.
func Build(ctx context.Context, cfg transport.Config, logger watermill.LoggerAdapter) (transport.Transport, error) {
	t, err := New(Config{URL: cfg.GetNATSURL()}, logger)
	if err != nil {
		return transport.Transport{}, err
	}
	return transport.Transport{
		Publisher:  t,
		Subscriber: t,
	}, nil
}

// Capabilities returns the capabilities of this transport.
func Capabilities() transport.Capabilities {
	return transport.NATSJetStreamCapabilities
}

// Transport is a combined JetStream publisher and subscriber.
type Transport struct {
	conf   Config
	conn   *nats.Conn
	js     nats.JetStreamContext
	logger watermill.LoggerAdapter

	mu     sync.Mutex
	subs   []*nats.Subscription
	closed bool

	// closedChan stops every fetch loop when the transport is closed
	// without its subscribe contexts being cancelled.
	closedChan chan struct{}
}

// New connects to NATS and ensures the stream exists.
func New(conf Config, logger watermill.LoggerAdapter) (*Transport, error) {
	conf = conf.withDefaults()

	conn, err := ConnectFactory(conf.URL)
	if err != nil {
		return nil, fmt.Errorf("jetstream: connect failed: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: context creation failed: %w", err)
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:     conf.StreamName,
		Subjects: []string{conf.StreamName + ".>"},
	})
	if err != nil && err != nats.ErrStreamNameAlreadyInUse {
		conn.Close()
		return nil, fmt.Errorf("jetstream: stream setup failed: %w", err)
	}

	return &Transport{
		conf:       conf,
		conn:       conn,
		js:         js,
		logger:     logger,
		closedChan: make(chan struct{}),
	}, nil
}

func (t *Transport) subject(topic string) string {
	return t.conf.StreamName + "." + topic
}

// Publish sends each message to the topic's subject, mapping metadata onto
// NATS headers.
func (t *Transport) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		header := nats.Header{}
		for k, v := range msg.Metadata {
			header.Set(k, v)
		}
		header.Set(headerMessageUUID, msg.UUID)

		if _, err := t.js.PublishMsg(&nats.Msg{
			Subject: t.subject(topic),
			Data:    msg.Payload,
			Header:  header,
		}); err != nil {
			return fmt.Errorf("jetstream: publish to %q failed: %w", topic, err)
		}
	}
	return nil
}

// Subscribe consumes the topic's subject through a durable pull
// subscription with explicit acks. The returned channel is closed by the
// fetch goroutine once the context is cancelled or the transport closed.
func (t *Transport) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, fmt.Errorf("jetstream: transport is closed")
	}
	t.mu.Unlock()

	sub, err := t.js.PullSubscribe(
		t.subject(topic),
		topic+"-consumers",
		nats.AckWait(t.conf.AckWait),
	)
	if err != nil {
		return nil, fmt.Errorf("jetstream: subscribe to %q failed: %w", topic, err)
	}

	t.mu.Lock()
	t.subs = append(t.subs, sub)
	t.mu.Unlock()

	out := make(chan *message.Message)
	go t.fetchMessages(ctx, sub, out, topic)

	return out, nil
}

// fetchMessages is the only goroutine that sends on out, and the only one
// that closes it.
func (t *Transport) fetchMessages(ctx context.Context, sub *nats.Subscription, out chan<- *message.Message, topic string) {
	defer close(out)

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.closedChan:
			return
		default:
		}

		msgs, err := sub.Fetch(fetchBatchSize, nats.MaxWait(time.Second))
		if err != nil {
			if err == nats.ErrTimeout {
				continue
			}
			t.logError("Failed to fetch JetStream messages", err, watermill.LogFields{"topic": topic})
			continue
		}

		for _, natsMsg := range msgs {
			if !t.deliver(ctx, natsMsg, out) {
				return
			}
		}
	}
}

// deliver hands one fetched message to the consumer and waits for the
// ack decision. It reports false when the subscription is shutting down;
// undelivered messages are nacked for redelivery.
func (t *Transport) deliver(ctx context.Context, natsMsg *nats.Msg, out chan<- *message.Message) bool {
	uuid := natsMsg.Header.Get(headerMessageUUID)
	msg := message.NewMessage(uuid, natsMsg.Data)
	for key := range natsMsg.Header {
		if key == headerMessageUUID {
			continue
		}
		msg.Metadata.Set(key, natsMsg.Header.Get(key))
	}
	msg.SetContext(ctx)

	select {
	case out <- msg:
	case <-ctx.Done():
		_ = natsMsg.Nak()
		return false
	case <-t.closedChan:
		_ = natsMsg.Nak()
		return false
	}

	select {
	case <-msg.Acked():
		if err := natsMsg.Ack(); err != nil {
			t.logError("Failed to ack JetStream message", err, watermill.LogFields{"uuid": uuid})
		}
	case <-msg.Nacked():
		_ = natsMsg.Nak()
	case <-ctx.Done():
		_ = natsMsg.Nak()
		return false
	case <-t.closedChan:
		_ = natsMsg.Nak()
		return false
	}
	return true
}

func (t *Transport) logError(msg string, err error, fields watermill.LogFields) {
	if t.logger != nil {
		t.logger.Error(msg, err, fields)
	}
}

// Close stops the fetch loops, drains subscriptions, and closes the
// connection. Each subscription's output channel is closed by its own
// fetch goroutine on the way out.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	close(t.closedChan)

	for _, sub := range t.subs {
		if err := sub.Unsubscribe(); err != nil {
			t.logError("Failed to unsubscribe", err, nil)
		}
	}
	t.conn.Close()
	return nil
}
