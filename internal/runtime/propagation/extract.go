// Package propagation moves trace context across invocation boundaries: it
// extracts inbound metadata into a tracectx.Context and injects the
// next-hop context into outbound calls and messages. Extraction never
// fails; malformed fields degrade to their documented defaults so a broken
// upstream can never take down this invocation.
package propagation

import (
	"net/http"
	"strconv"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/drblury/hoplog/internal/runtime/ids"
	"github.com/drblury/hoplog/internal/runtime/metadata"
	"github.com/drblury/hoplog/internal/runtime/sampling"
	"github.com/drblury/hoplog/internal/runtime/tracectx"
)

// Extractor reconstructs trace context from inbound metadata, or
// originates a fresh transaction when none is inherited.
type Extractor struct {
	// Sampler draws the debug decision for transaction roots.
	Sampler sampling.Sampler

	// NewID generates correlation and invocation ids. Nil falls back to
	// ULIDs.
	NewID func() string
}

// NewExtractor returns an Extractor drawing root decisions from sampler.
func NewExtractor(sampler sampling.Sampler) Extractor {
	return Extractor{Sampler: sampler}
}

func (e Extractor) newID() string {
	if e.NewID != nil {
		return e.NewID()
	}
	return ids.New()
}

// FromMetadata builds the invocation's trace context from an inbound
// envelope. A correlation id present in the envelope is reused verbatim
// and the chain is extended by one; otherwise a fresh transaction is
// originated. A new invocation id is assigned either way.
func (e Extractor) FromMetadata(md metadata.Metadata) tracectx.Context {
	correlationID, inherited := md.Lookup(KeyCorrelationID)
	if !inherited || correlationID == "" {
		return e.Originate()
	}

	return tracectx.Context{
		CorrelationID: correlationID,
		ChainLength:   parseChainLength(md.Get(KeyChainLength)) + 1,
		DebugEnabled:  e.Sampler.Decide(parseDebugFlag(md)),
		InvocationID:  e.newID(),
	}
}

// FromHTTPHeader builds the trace context from inbound request headers.
func (e Extractor) FromHTTPHeader(h http.Header) tracectx.Context {
	if h == nil {
		return e.Originate()
	}

	md := make(metadata.Metadata, 3)
	for _, key := range []string{KeyCorrelationID, KeyChainLength, KeyDebugEnabled} {
		if values := h.Values(key); len(values) > 0 {
			md[key] = values[0]
		}
	}
	return e.FromMetadata(md)
}

// FromMessage builds the trace context from a consumed message's metadata
// section. A nil message originates a fresh transaction.
func (e Extractor) FromMessage(msg *message.Message) tracectx.Context {
	if msg == nil {
		return e.Originate()
	}
	return e.FromMetadata(metadata.FromWatermill(msg.Metadata))
}

// Originate starts a brand new transaction: fresh correlation id, chain
// length 1, debug decision drawn from the sampler.
func (e Extractor) Originate() tracectx.Context {
	return tracectx.Context{
		CorrelationID: e.newID(),
		ChainLength:   1,
		DebugEnabled:  e.Sampler.Decide(nil),
		InvocationID:  e.newID(),
	}
}

// parseChainLength reads the wire-encoded hop count. Absent, negative, or
// unparsable values count as 0, which makes the current hop the first.
func parseChainLength(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// parseDebugFlag maps the wire field onto the sampler's existing-decision
// input: absent means no decision, "true" means enabled, any other present
// value means disabled.
func parseDebugFlag(md metadata.Metadata) *bool {
	raw, present := md.Lookup(KeyDebugEnabled)
	if !present {
		return nil
	}
	decision := raw == truthy
	return &decision
}
