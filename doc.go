// Package hoplog propagates a correlation context across chains of
// independently deployed compute units: HTTP handlers, event-bus consumers,
// and notification-topic consumers.
//
// Every hop in a transaction shares one correlation id, the call-chain
// depth grows by exactly one per hop, and the decision to log a
// transaction at verbose detail is made once at the root and inherited by
// every later hop. The structured JSON logger stamps all of this onto
// every record, so log lines from separate processes line up by
// correlation id.
//
// The Hop runtime wires a watermill router over a pluggable transport
// (in-memory channel, HTTP, Kafka, NATS, JetStream, RabbitMQ, or AWS
// SNS/SQS) and installs the propagation middleware chain, so handler code
// never touches the wire metadata directly:
//
//	conf := &hoplog.Config{PubSubSystem: "channel", Stage: "dev"}
//	logger := hoplog.NewLogger(hoplog.LoggerOptions{})
//	hop := hoplog.NewHop(conf, logger, ctx, hoplog.HopDependencies{})
//	hop.RegisterHandler("orders", "orders.incoming", "orders.processed", handle)
//	hop.Start(ctx)
//
// Transports register themselves on import:
//
//	import _ "github.com/drblury/hoplog/transport/channel"
package hoplog
