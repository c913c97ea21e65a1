package runtime

import (
	"net/http"

	"github.com/drblury/hoplog/internal/runtime/lifecycle"
	"github.com/drblury/hoplog/internal/runtime/propagation"
	"github.com/drblury/hoplog/internal/runtime/tracectx"
)

// HeaderRequestID is the platform request id header. When present it
// becomes the invocation id, so hop-local log lines line up with the
// hosting platform's own request logs. It is never transmitted downstream.
const HeaderRequestID = "x-request-id"

// HTTPHandlerMiddleware wraps an HTTP handler with the invocation boundary:
// unconditional guard reset, extraction from request headers, and seeding
// of both the guard and the request context.
func HTTPHandlerMiddleware(extractor propagation.Extractor, guard *lifecycle.Guard) func(http.Handler) http.Handler {
	if guard == nil {
		guard = lifecycle.Default
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			guard.Reset()

			tc := extractor.FromHTTPHeader(r.Header)
			if rid := r.Header.Get(HeaderRequestID); rid != "" {
				tc.InvocationID = rid
			}
			guard.Begin(tc)

			next.ServeHTTP(w, r.WithContext(tracectx.With(r.Context(), tc)))
		})
	}
}

// HTTPHandlerMiddleware returns the invocation-boundary middleware bound to
// the hop's extractor and guard, with metrics observation.
func (h *Hop) HTTPHandlerMiddleware() func(http.Handler) http.Handler {
	boundary := HTTPHandlerMiddleware(h.extractor, h.guard)
	return func(next http.Handler) http.Handler {
		observed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tc, ok := tracectx.From(r.Context()); ok {
				inherited := r.Header.Get(propagation.KeyCorrelationID) != ""
				h.metrics.ObserveInvocation(inherited, tc.DebugEnabled, tc.ChainLength)
			}
			next.ServeHTTP(w, r)
		})
		return boundary(observed)
	}
}

// stampingRoundTripper injects the next-hop headers into every outbound
// request. The request context wins over the ambient guard.
type stampingRoundTripper struct {
	base  http.RoundTripper
	guard *lifecycle.Guard
}

func (t *stampingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	tc, ok := tracectx.From(req.Context())
	if !ok {
		tc, ok = t.guard.Current()
	}
	if ok {
		// RoundTrippers must not mutate the caller's request.
		req = req.Clone(req.Context())
		propagation.InjectRequest(tc, req)
	}
	return t.base.RoundTrip(req)
}

// NewHTTPClient returns a copy of base whose transport stamps next-hop
// correlation headers onto every request. A nil base starts from a zero
// client; a nil guard falls back to the ambient guard.
func NewHTTPClient(base *http.Client, guard *lifecycle.Guard) *http.Client {
	if guard == nil {
		guard = lifecycle.Default
	}

	client := &http.Client{}
	if base != nil {
		*client = *base
	}

	rt := client.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	client.Transport = &stampingRoundTripper{base: rt, guard: guard}
	return client
}
