package transport

// Capabilities describes what a transport backend can do. The propagation
// layer keys off SupportsMetadata: a transport without a metadata channel
// transmits no correlation state, and the next hop originates a fresh
// transaction instead of failing.
type Capabilities struct {
	// Name is the registry name of the transport.
	Name string

	// SupportsMetadata indicates the transport carries per-message
	// key/value metadata separate from the payload.
	SupportsMetadata bool

	// Synchronous indicates a call-and-reply transport rather than an
	// asynchronous publish transport.
	Synchronous bool

	// SupportsAck indicates explicit message acknowledgment.
	SupportsAck bool

	// SupportsOrdering indicates messages within a partition or stream
	// arrive in publish order.
	SupportsOrdering bool
}

// CanPropagate reports whether correlation state survives a hop over this
// transport.
func (c Capabilities) CanPropagate() bool {
	return c.SupportsMetadata
}

// Predefined capability sets for the built-in transports.
var (
	ChannelCapabilities = Capabilities{
		Name:             "channel",
		SupportsMetadata: true,
		SupportsAck:      true,
		SupportsOrdering: true,
	}

	HTTPCapabilities = Capabilities{
		Name:             "http",
		SupportsMetadata: true,
		Synchronous:      true,
	}

	KafkaCapabilities = Capabilities{
		Name:             "kafka",
		SupportsMetadata: true,
		SupportsAck:      true,
		SupportsOrdering: true,
	}

	NATSCapabilities = Capabilities{
		Name:             "nats",
		SupportsMetadata: true,
	}

	NATSJetStreamCapabilities = Capabilities{
		Name:             "nats-jetstream",
		SupportsMetadata: true,
		SupportsAck:      true,
		SupportsOrdering: true,
	}

	RabbitMQCapabilities = Capabilities{
		Name:             "rabbitmq",
		SupportsMetadata: true,
		SupportsAck:      true,
	}

	AWSCapabilities = Capabilities{
		Name:             "aws",
		SupportsMetadata: true,
		SupportsAck:      true,
	}
)
