// Package transport defines the interfaces and registry for hoplog
// transports. Each backend (kafka, rabbitmq, aws, ...) lives in its own
// sub-package and registers itself with the registry, declaring whether it
// offers a metadata channel for correlation state.
package transport

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Transport is the publisher/subscriber pair produced by a builder.
type Transport struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
}

// Builder creates a transport from configuration.
type Builder func(ctx context.Context, cfg Config, logger watermill.LoggerAdapter) (Transport, error)

// Config exposes the configuration values transports need, so a transport
// package depends only on this interface rather than the full config
// package.
type Config interface {
	// GetPubSubSystem returns the selected transport name.
	GetPubSubSystem() string

	// Kafka
	GetKafkaBrokers() []string
	GetKafkaConsumerGroup() string

	// RabbitMQ
	GetRabbitMQURL() string

	// NATS (core and JetStream)
	GetNATSURL() string

	// HTTP
	GetHTTPServerAddress() string
	GetHTTPPublisherURL() string

	// AWS SNS/SQS
	GetAWSRegion() string
	GetAWSAccountID() string
	GetAWSAccessKeyID() string
	GetAWSSecretAccessKey() string
	GetAWSEndpoint() string
}

// CapabilitiesProvider is implemented by transports that report their
// capabilities.
type CapabilitiesProvider interface {
	Capabilities() Capabilities
}
