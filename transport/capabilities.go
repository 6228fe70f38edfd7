package transport

// Capabilities describes the delivery guarantees of a transport backend.
// The relay consults them to know whether discarding and requeueing are
// real operations or best-effort ones.
type Capabilities struct {
	// Name is the registered transport name.
	Name string

	// Durable indicates jobs survive a broker restart.
	Durable bool

	// SupportsAck indicates the transport supports explicit message
	// acknowledgment (the relay's "delete job").
	SupportsAck bool

	// SupportsNack indicates the transport redelivers on negative
	// acknowledgment (the relay's "leave job for another consumer").
	SupportsNack bool

	// SupportsOrdering indicates messages on one topic arrive in
	// publication order.
	SupportsOrdering bool

	// MaxMessageSize is the maximum payload size in bytes (0 = unknown).
	MaxMessageSize int64
}

// AtLeastOnce reports whether the transport gives the at-least-once,
// single-consumer-per-job semantics the relay is specified against.
func (c Capabilities) AtLeastOnce() bool {
	return c.SupportsAck && c.SupportsNack
}

// Predefined capability sets for the built-in transports.
var (
	ChannelCapabilities = Capabilities{
		Name:             "channel",
		SupportsAck:      true,
		SupportsNack:     true,
		SupportsOrdering: true,
	}

	IOCapabilities = Capabilities{
		Name:             "io",
		Durable:          true,
		SupportsOrdering: true,
	}

	NATSCapabilities = Capabilities{
		Name:           "nats",
		MaxMessageSize: 1048576,
	}

	NATSJetStreamCapabilities = Capabilities{
		Name:             "nats-jetstream",
		Durable:          true,
		SupportsAck:      true,
		SupportsNack:     true,
		SupportsOrdering: true,
		MaxMessageSize:   1048576,
	}

	KafkaCapabilities = Capabilities{
		Name:             "kafka",
		Durable:          true,
		SupportsAck:      true,
		SupportsOrdering: true,
		MaxMessageSize:   1048576,
	}

	RabbitMQCapabilities = Capabilities{
		Name:             "rabbitmq",
		Durable:          true,
		SupportsAck:      true,
		SupportsNack:     true,
		SupportsOrdering: true,
	}

	HTTPCapabilities = Capabilities{
		Name: "http",
	}

	SQLiteCapabilities = Capabilities{
		Name:             "sqlite",
		Durable:          true,
		SupportsAck:      true,
		SupportsNack:     true,
		SupportsOrdering: true,
	}

	AWSCapabilities = Capabilities{
		Name:           "aws",
		Durable:        true,
		SupportsAck:    true,
		SupportsNack:   true,
		MaxMessageSize: 262144,
	}
)

// GetCapabilities returns the capabilities registered under a transport
// name, or a zero value carrying just the name when unknown.
func GetCapabilities(transportName string) Capabilities {
	return DefaultRegistry.GetCapabilities(transportName)
}
