package hoplog

import (
	runtimepkg "github.com/drblury/hoplog/internal/runtime"
	configpkg "github.com/drblury/hoplog/internal/runtime/config"
	errspkg "github.com/drblury/hoplog/internal/runtime/errors"
	idspkg "github.com/drblury/hoplog/internal/runtime/ids"
	"github.com/drblury/hoplog/internal/runtime/jsoncodec"
	"github.com/drblury/hoplog/internal/runtime/lifecycle"
	loggingpkg "github.com/drblury/hoplog/internal/runtime/logging"
	metadatapkg "github.com/drblury/hoplog/internal/runtime/metadata"
	"github.com/drblury/hoplog/internal/runtime/propagation"
	"github.com/drblury/hoplog/internal/runtime/sampling"
	"github.com/drblury/hoplog/internal/runtime/tracectx"
	transportpkg "github.com/drblury/hoplog/transport"
)

type (
	Config          = configpkg.Config
	Hop             = runtimepkg.Hop
	HopDependencies = runtimepkg.HopDependencies

	MessageHandlerRegistration = runtimepkg.MessageHandlerRegistration
	MiddlewareBuilder          = runtimepkg.MiddlewareBuilder
	MiddlewareRegistration     = runtimepkg.MiddlewareRegistration

	// Context is the per-invocation correlation value.
	Context = tracectx.Context

	Sampler   = sampling.Sampler
	Guard     = lifecycle.Guard
	Extractor = propagation.Extractor

	Metadata = metadatapkg.Metadata

	Logger        = loggingpkg.Logger
	LoggerOptions = loggingpkg.Options
	LogFields     = loggingpkg.LogFields
	Level         = loggingpkg.Level

	// Modular transport types. Import individual transports via
	// _ "github.com/drblury/hoplog/transport/kafka" or pull in the full set
	// with _ "github.com/drblury/hoplog/transport/transports".
	Transport             = transportpkg.Transport
	TransportBuilder      = transportpkg.Builder
	TransportConfig       = transportpkg.Config
	TransportRegistry     = transportpkg.Registry
	TransportCapabilities = transportpkg.Capabilities
)

// Log levels, ordered so numeric comparison matches severity.
const (
	LevelDebug = loggingpkg.LevelDebug
	LevelInfo  = loggingpkg.LevelInfo
	LevelWarn  = loggingpkg.LevelWarn
	LevelError = loggingpkg.LevelError
)

// Wire metadata keys, the versioned contract between injector and
// extractor across all transports.
const (
	KeyCorrelationID = propagation.KeyCorrelationID
	KeyChainLength   = propagation.KeyChainLength
	KeyDebugEnabled  = propagation.KeyDebugEnabled

	// HeaderRequestID is honored by the HTTP boundary as the invocation id.
	HeaderRequestID = runtimepkg.HeaderRequestID
)

// DefaultDebugSampleRate is the probability a transaction root enables
// verbose logging when the config leaves the rate unset.
const DefaultDebugSampleRate = sampling.DefaultProbability

var (
	NewHop         = runtimepkg.NewHop
	ValidateConfig = configpkg.ValidateConfig

	RegisterMessageHandler = runtimepkg.RegisterMessageHandler
	NewMessage             = runtimepkg.NewMessage
	Publish                = runtimepkg.Publish

	DefaultMiddlewares    = runtimepkg.DefaultMiddlewares
	PropagationMiddleware = runtimepkg.PropagationMiddleware
	LogMessagesMiddleware = runtimepkg.LogMessagesMiddleware
	TracerMiddleware      = runtimepkg.TracerMiddleware
	MetricsMiddleware     = runtimepkg.MetricsMiddleware
	RecovererMiddleware   = runtimepkg.RecovererMiddleware

	// HTTP boundary helpers.
	HTTPHandlerMiddleware = runtimepkg.HTTPHandlerMiddleware
	NewHTTPClient         = runtimepkg.NewHTTPClient

	// Propagation primitives for call sites outside the hop runtime.
	NewExtractor         = propagation.NewExtractor
	Inject               = propagation.Inject
	InjectHTTPHeader     = propagation.InjectHTTPHeader
	InjectRequest        = propagation.InjectRequest
	StampMessage         = propagation.StampMessage
	NewStampingPublisher = propagation.NewStampingPublisher

	NewSampler = sampling.New

	NewLogger           = loggingpkg.New
	NewWatermillAdapter = loggingpkg.NewWatermillAdapter
	ParseLevel          = loggingpkg.ParseLevel

	// Ambient invocation state. The hop runtime and the HTTP middleware
	// manage these automatically; manual boundaries call them directly.
	DefaultGuard      = lifecycle.Default
	BeginInvocation   = lifecycle.Begin
	CurrentInvocation = lifecycle.Current
	ResetInvocation   = lifecycle.Reset

	Marshal   = jsoncodec.Marshal
	Unmarshal = jsoncodec.Unmarshal
	Encode    = jsoncodec.Encode
	Decode    = jsoncodec.Decode

	NewULID = idspkg.New

	// Context plumbing through context.Context values.
	WithContext = tracectx.With
	FromContext = tracectx.From

	// Modular transport registry.
	DefaultTransportRegistry = transportpkg.DefaultRegistry
	RegisterTransport        = transportpkg.Register
	BuildTransport           = transportpkg.Build
	GetCapabilities          = transportpkg.GetCapabilities

	ErrHopRequired          = errspkg.ErrHopRequired
	ErrHandlerRequired      = errspkg.ErrHandlerRequired
	ErrConsumeTopicRequired = errspkg.ErrConsumeTopicRequired
	ErrHandlerNameRequired  = errspkg.ErrHandlerNameRequired
	ErrPublisherRequired    = errspkg.ErrPublisherRequired
	ErrTopicRequired        = errspkg.ErrTopicRequired
	ErrPayloadRequired      = errspkg.ErrPayloadRequired
)
