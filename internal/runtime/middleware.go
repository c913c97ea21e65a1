package runtime

import (
	"errors"

	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	loggingpkg "github.com/drblury/hoplog/internal/runtime/logging"
	"github.com/drblury/hoplog/internal/runtime/propagation"
	"github.com/drblury/hoplog/internal/runtime/tracectx"
)

// MiddlewareBuilder constructs a handler middleware using the hop instance.
type MiddlewareBuilder func(*Hop) (message.HandlerMiddleware, error)

// MiddlewareRegistration captures how a middleware should be registered on
// the hop's router.
type MiddlewareRegistration struct {
	Name       string
	Middleware message.HandlerMiddleware
	Builder    MiddlewareBuilder
}

// DefaultMiddlewares returns the standard middleware chain registered by
// NewHop. Propagation comes first so every later middleware and the handler
// itself see the invocation's trace context.
func DefaultMiddlewares() []MiddlewareRegistration {
	return []MiddlewareRegistration{
		PropagationMiddleware(),
		LogMessagesMiddleware(nil),
		TracerMiddleware(),
		MetricsMiddleware(),
		RecovererMiddleware(),
	}
}

// PropagationMiddleware resets the lifecycle guard, reconstructs the trace
// context from the inbound message, and stamps all produced messages with
// the next-hop context.
func PropagationMiddleware() MiddlewareRegistration {
	return MiddlewareRegistration{
		Name: "propagation",
		Builder: func(h *Hop) (message.HandlerMiddleware, error) {
			return h.propagationMiddleware(), nil
		},
	}
}

// LogMessagesMiddleware logs the payload and metadata of handled messages
// at DEBUG, so sampled transactions leave a full trace.
func LogMessagesMiddleware(logger *loggingpkg.Logger) MiddlewareRegistration {
	return MiddlewareRegistration{
		Name: "log_messages",
		Builder: func(h *Hop) (message.HandlerMiddleware, error) {
			l := logger
			if l == nil {
				l = h.Logger
			}
			if l == nil {
				return nil, errors.New("log messages middleware requires a logger")
			}
			return h.logMessagesMiddleware(l), nil
		},
	}
}

// TracerMiddleware wraps handler execution in an OpenTelemetry span carrying
// the correlation attributes.
func TracerMiddleware() MiddlewareRegistration {
	return MiddlewareRegistration{
		Name: "tracer",
		Builder: func(h *Hop) (message.HandlerMiddleware, error) {
			return h.tracerMiddleware(), nil
		},
	}
}

// MetricsMiddleware adds Prometheus router metrics and, when a metrics port
// is configured, mounts the /metrics endpoint.
func MetricsMiddleware() MiddlewareRegistration {
	return MiddlewareRegistration{
		Name: "metrics",
		Builder: func(h *Hop) (message.HandlerMiddleware, error) {
			if !h.Conf.MetricsEnabled {
				return nil, nil
			}

			metricsBuilder := metrics.NewPrometheusMetricsBuilder(
				h.metricsRegisterer,
				"hoplog",
				h.Conf.PubSubSystem,
			)
			metricsBuilder.AddPrometheusRouterMetrics(h.router)

			if h.Conf.MetricsPort > 0 {
				h.RegisterHTTPHandler(h.Conf.MetricsPort, "/metrics", promhttp.Handler())
			}

			return metricsBuilder.NewRouterMiddleware().Middleware, nil
		},
	}
}

// RecovererMiddleware converts handler panics into errors so a broken
// handler cannot take down the router.
func RecovererMiddleware() MiddlewareRegistration {
	return MiddlewareRegistration{
		Name:       "recoverer",
		Middleware: middleware.Recoverer,
	}
}

// RegisterMiddleware attaches the supplied middleware to the router.
func (h *Hop) RegisterMiddleware(cfg MiddlewareRegistration) error {
	if h.router == nil {
		return errors.New("router is not initialised")
	}

	var mw message.HandlerMiddleware
	switch {
	case cfg.Middleware != nil:
		mw = cfg.Middleware
	case cfg.Builder != nil:
		var err error
		mw, err = cfg.Builder(h)
		if err != nil {
			return err
		}
	default:
		return errors.New("middleware registration requires Middleware or Builder")
	}

	if mw == nil {
		return nil
	}

	h.router.AddMiddleware(mw)
	return nil
}

// propagationMiddleware is the message-boundary counterpart of the HTTP
// handler middleware: unconditional guard reset, extraction, seeding, and
// outbound stamping, in that order.
func (h *Hop) propagationMiddleware() message.HandlerMiddleware {
	return func(next message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			h.guard.Reset()

			inherited := msg.Metadata.Get(propagation.KeyCorrelationID) != ""
			tc := h.extractor.FromMessage(msg)
			h.guard.Begin(tc)
			msg.SetContext(tracectx.With(msg.Context(), tc))

			h.metrics.ObserveInvocation(inherited, tc.DebugEnabled, tc.ChainLength)

			produced, err := next(msg)

			for _, out := range produced {
				if out == nil {
					continue
				}
				if out.Metadata.Get(propagation.KeyCorrelationID) != "" {
					continue
				}
				propagation.StampMessage(tc, out)
			}

			return produced, err
		}
	}
}

func (h *Hop) logMessagesMiddleware(logger *loggingpkg.Logger) message.HandlerMiddleware {
	return func(next message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			logger.Debug("Processing message", loggingpkg.LogFields{
				"message_uuid": msg.UUID,
				"payload":      string(msg.Payload),
				"metadata":     msg.Metadata,
			})
			return next(msg)
		}
	}
}

func (h *Hop) tracerMiddleware() message.HandlerMiddleware {
	return func(next message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			attrs := []attribute.KeyValue{attribute.String("message.uuid", msg.UUID)}
			if tc, ok := tracectx.From(msg.Context()); ok {
				attrs = append(attrs,
					attribute.String("hoplog.correlation_id", tc.CorrelationID),
					attribute.Int("hoplog.chain_length", tc.ChainLength),
					attribute.Bool("hoplog.debug_enabled", tc.DebugEnabled),
				)
			}

			tracer := otel.Tracer("hoplog")
			ctx, span := tracer.Start(msg.Context(), "ProcessMessage", trace.WithAttributes(attrs...))
			defer span.End()
			msg.SetContext(ctx)

			return next(msg)
		}
	}
}
