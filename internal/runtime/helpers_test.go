package runtime

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	configpkg "github.com/drblury/hoplog/internal/runtime/config"
	"github.com/drblury/hoplog/internal/runtime/lifecycle"
	loggingpkg "github.com/drblury/hoplog/internal/runtime/logging"
	"github.com/drblury/hoplog/internal/runtime/sampling"
	transportpkg "github.com/drblury/hoplog/transport"
)

type stubPublisher struct {
	mu       sync.Mutex
	topics   []string
	messages []*message.Message
	err      error
	closed   bool
}

func (p *stubPublisher) Publish(topic string, messages ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.messages = append(p.messages, messages...)
	return p.err
}

func (p *stubPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *stubPublisher) published() []*message.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*message.Message(nil), p.messages...)
}

type stubSubscriber struct {
	ch chan *message.Message
}

func (s *stubSubscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return s.ch, nil
}

func (s *stubSubscriber) Close() error { return nil }

func stubTransportBuilder(pub message.Publisher, sub message.Subscriber) transportpkg.Builder {
	return func(ctx context.Context, cfg transportpkg.Config, logger watermill.LoggerAdapter) (transportpkg.Transport, error) {
		return transportpkg.Transport{Publisher: pub, Subscriber: sub}, nil
	}
}

// neverSample draws above every probability, so no transaction is sampled.
var neverSample = func() float64 { return 1 }

func newTestHop(t *testing.T, conf *configpkg.Config, pub *stubPublisher) (*Hop, *lifecycle.Guard) {
	t.Helper()

	if conf == nil {
		conf = &configpkg.Config{Stage: "dev", Environment: "test", PubSubSystem: "stub"}
	}
	if pub == nil {
		pub = &stubPublisher{}
	}

	guard := &lifecycle.Guard{}
	logger := loggingpkg.New(loggingpkg.Options{Sink: io.Discard, Guard: guard})
	sampler := sampling.Sampler{Probability: conf.SampleRate(), Rand: neverSample}

	h := NewHop(conf, logger, context.Background(), HopDependencies{
		TransportBuilder: stubTransportBuilder(pub, &stubSubscriber{ch: make(chan *message.Message)}),
		Guard:            guard,
		Sampler:          &sampler,
	})
	t.Cleanup(guard.Reset)
	return h, guard
}
