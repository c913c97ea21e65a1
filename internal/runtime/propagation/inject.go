package propagation

import (
	"net/http"
	"strconv"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/drblury/hoplog/internal/runtime/metadata"
	"github.com/drblury/hoplog/internal/runtime/tracectx"
)

// Inject encodes tc as a wire metadata envelope. The chain length on the
// wire is the sender's own depth; the receiving extractor adds one, so the
// depth grows by exactly one per hop. The invocation id is deliberately
// not transmitted; the next hop assigns its own.
func Inject(tc tracectx.Context) metadata.Metadata {
	return metadata.Metadata{
		KeyCorrelationID: tc.CorrelationID,
		KeyChainLength:   strconv.Itoa(tc.ChainLength),
		KeyDebugEnabled:  strconv.FormatBool(tc.DebugEnabled),
	}
}

// InjectHTTPHeader stamps the next-hop context onto outbound request
// headers. A nil header means the transport offers no metadata channel;
// nothing is transmitted and the downstream hop originates a fresh
// transaction.
func InjectHTTPHeader(tc tracectx.Context, h http.Header) {
	if h == nil {
		return
	}
	for key, value := range Inject(tc) {
		h.Set(key, value)
	}
}

// InjectRequest stamps the next-hop context onto an outbound HTTP request.
// Nil requests are ignored.
func InjectRequest(tc tracectx.Context, req *http.Request) {
	if req == nil {
		return
	}
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	InjectHTTPHeader(tc, req.Header)
}

// StampMessage stamps the next-hop context onto a message's metadata
// section, leaving the payload untouched. Nil messages are ignored.
func StampMessage(tc tracectx.Context, msg *message.Message) {
	if msg == nil {
		return
	}
	if msg.Metadata == nil {
		msg.Metadata = message.Metadata{}
	}
	for key, value := range Inject(tc) {
		msg.Metadata[key] = value
	}
}
