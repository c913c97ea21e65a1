package runtime

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/plugin"
	"github.com/prometheus/client_golang/prometheus"

	configpkg "github.com/drblury/hoplog/internal/runtime/config"
	"github.com/drblury/hoplog/internal/runtime/lifecycle"
	loggingpkg "github.com/drblury/hoplog/internal/runtime/logging"
	"github.com/drblury/hoplog/internal/runtime/propagation"
	"github.com/drblury/hoplog/internal/runtime/sampling"
	transportpkg "github.com/drblury/hoplog/transport"
)

var routerRun = func(router *message.Router, ctx context.Context) error {
	return router.Run(ctx)
}

// HopDependencies holds the optional collaborators a Hop can use. Leave
// fields nil for the defaults.
type HopDependencies struct {
	// Middlewares are appended after the default middleware chain.
	Middlewares []MiddlewareRegistration

	// DisableDefaultMiddlewares skips the default chain when true.
	DisableDefaultMiddlewares bool

	// TransportBuilder overrides the registry dispatch on PubSubSystem.
	TransportBuilder transportpkg.Builder

	// Guard overrides the ambient lifecycle guard.
	Guard *lifecycle.Guard

	// Sampler overrides the debug sampler built from the config rate.
	Sampler *sampling.Sampler

	// MetricsRegisterer overrides the Prometheus registerer; only read when
	// the config enables metrics.
	MetricsRegisterer prometheus.Registerer
}

// Hop wires one compute unit into the correlation chain: it owns the
// transport, a watermill router with the propagation middleware chain, and
// a publisher that stamps every outgoing message with the next-hop context.
type Hop struct {
	Conf   *configpkg.Config
	Logger *loggingpkg.Logger

	guard     *lifecycle.Guard
	extractor propagation.Extractor

	publisher  message.Publisher
	subscriber message.Subscriber
	router     *message.Router

	metrics           *Metrics
	metricsRegisterer prometheus.Registerer

	httpServers   map[int]*http.ServeMux
	httpServersMu sync.Mutex
}

// NewHop constructs a Hop for the supplied configuration. Register handlers
// on the returned Hop before calling Start.
func NewHop(conf *configpkg.Config, log *loggingpkg.Logger, ctx context.Context, deps HopDependencies) *Hop {
	wmLogger := loggingpkg.NewWatermillAdapter(log)
	log.Info("Creating hop runtime", loggingpkg.LogFields{
		"pubsub_system": conf.PubSubSystem,
		"config":        conf.String(),
	})

	guard := deps.Guard
	if guard == nil {
		guard = lifecycle.Default
	}

	sampler := sampling.New(conf.SampleRate())
	if deps.Sampler != nil {
		sampler = *deps.Sampler
	}

	h := &Hop{
		Conf:      conf,
		Logger:    log,
		guard:     guard,
		extractor: propagation.NewExtractor(sampler),
	}

	if conf.MetricsEnabled {
		h.metricsRegisterer = deps.MetricsRegisterer
		if h.metricsRegisterer == nil {
			h.metricsRegisterer = prometheus.DefaultRegisterer
		}
		h.metrics = NewMetrics(h.metricsRegisterer)
	}

	builder := deps.TransportBuilder
	if builder == nil {
		builder = transportpkg.Build
	}
	transport, err := builder(ctx, conf, wmLogger)
	if err != nil {
		panic(err)
	}

	if caps := transportpkg.GetCapabilities(conf.PubSubSystem); !caps.CanPropagate() {
		log.Warn("Transport carries no metadata channel, correlation context will not propagate", loggingpkg.LogFields{
			"pubsub_system": conf.PubSubSystem,
		})
	}

	h.publisher = propagation.NewStampingPublisher(transport.Publisher, guard)
	h.subscriber = transport.Subscriber

	router, err := message.NewRouter(message.RouterConfig{}, wmLogger)
	if err != nil {
		panic(err)
	}
	h.router = router
	h.router.AddPlugin(plugin.SignalsHandler)

	h.registerConfiguredMiddlewares(deps)

	return h
}

// Start runs the underlying watermill router until the provided context is
// cancelled.
func (h *Hop) Start(ctx context.Context) error {
	h.startHTTPServers()
	return routerRun(h.router, ctx)
}

// Publisher exposes the stamping publisher for call sites that need the
// raw watermill interface.
func (h *Hop) Publisher() message.Publisher {
	return h.publisher
}

func (h *Hop) registerConfiguredMiddlewares(deps HopDependencies) {
	var defaults []MiddlewareRegistration
	if !deps.DisableDefaultMiddlewares {
		defaults = DefaultMiddlewares()
	}
	registrations := make([]MiddlewareRegistration, 0, len(defaults)+len(deps.Middlewares))
	registrations = append(registrations, defaults...)
	registrations = append(registrations, deps.Middlewares...)

	for _, reg := range registrations {
		if err := h.RegisterMiddleware(reg); err != nil {
			name := reg.Name
			if name == "" {
				name = "anonymous_middleware"
			}
			panic(fmt.Sprintf("failed to register middleware %s: %v", name, err))
		}
	}
}

// RegisterHTTPHandler mounts a handler on the mux that Start will serve on
// the given port.
func (h *Hop) RegisterHTTPHandler(port int, pattern string, handler http.Handler) {
	h.httpServersMu.Lock()
	defer h.httpServersMu.Unlock()

	if h.httpServers == nil {
		h.httpServers = make(map[int]*http.ServeMux)
	}

	mux, ok := h.httpServers[port]
	if !ok {
		mux = http.NewServeMux()
		h.httpServers[port] = mux
	}

	mux.Handle(pattern, handler)
}

func (h *Hop) startHTTPServers() {
	h.httpServersMu.Lock()
	defer h.httpServersMu.Unlock()

	for port, mux := range h.httpServers {
		addr := fmt.Sprintf(":%d", port)
		h.Logger.Info("Starting HTTP server", loggingpkg.LogFields{"address": addr})
		go func(addr string, handler http.Handler) {
			if err := http.ListenAndServe(addr, handler); err != nil {
				h.Logger.Error("Failed to start HTTP server", err, loggingpkg.LogFields{"address": addr})
			}
		}(addr, mux)
	}
}
