package propagation

import (
	"net/http"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/drblury/hoplog/internal/runtime/metadata"
	"github.com/drblury/hoplog/internal/runtime/sampling"
)

func alwaysSample() sampling.Sampler {
	return sampling.Sampler{Probability: 1.0, Rand: func() float64 { return 0 }}
}

func neverSample() sampling.Sampler {
	return sampling.Sampler{Probability: 0.0, Rand: func() float64 { return 0.99 }}
}

func TestExtractColdStartOriginatesTransaction(t *testing.T) {
	e := NewExtractor(alwaysSample())

	tc := e.FromMetadata(metadata.Metadata{})

	if tc.CorrelationID == "" {
		t.Fatal("expected a generated correlation id")
	}
	if tc.ChainLength != 1 {
		t.Fatalf("expected chain length 1 at the transaction root, got %d", tc.ChainLength)
	}
	if !tc.DebugEnabled {
		t.Fatal("expected forced sampling to enable debug")
	}
	if tc.InvocationID == "" {
		t.Fatal("expected a fresh invocation id")
	}
}

func TestExtractInheritsTransaction(t *testing.T) {
	sampler := sampling.Sampler{Probability: 0, Rand: func() float64 {
		t.Fatal("sampler must not draw when a decision is inherited")
		return 0
	}}
	e := NewExtractor(sampler)

	tc := e.FromMetadata(metadata.Metadata{
		KeyCorrelationID: "abc",
		KeyChainLength:   "1",
		KeyDebugEnabled:  "true",
	})

	if tc.CorrelationID != "abc" {
		t.Fatalf("expected inherited correlation id, got %q", tc.CorrelationID)
	}
	if tc.ChainLength != 2 {
		t.Fatalf("expected chain length 2, got %d", tc.ChainLength)
	}
	if !tc.DebugEnabled {
		t.Fatal("expected inherited debug decision to stick")
	}
	if tc.InvocationID == "" {
		t.Fatal("expected a fresh invocation id despite inheritance")
	}
}

func TestExtractMalformedChainLengthDegradesToRoot(t *testing.T) {
	e := NewExtractor(neverSample())

	tests := []struct {
		name string
		raw  string
	}{
		{"unparsable", "not-a-number"},
		{"negative", "-3"},
		{"empty", ""},
		{"float", "2.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := e.FromMetadata(metadata.Metadata{
				KeyCorrelationID: "abc",
				KeyChainLength:   tt.raw,
			})
			if tc.ChainLength != 1 {
				t.Fatalf("expected malformed chain length to count as 0 and become 1, got %d", tc.ChainLength)
			}
			if tc.CorrelationID != "abc" {
				t.Fatal("correlation id must survive a malformed sibling field")
			}
		})
	}
}

func TestExtractDebugFlagHandling(t *testing.T) {
	tests := []struct {
		name    string
		md      metadata.Metadata
		sampler sampling.Sampler
		want    bool
	}{
		{
			name:    "explicit true inherited",
			md:      metadata.Metadata{KeyCorrelationID: "abc", KeyDebugEnabled: "true"},
			sampler: neverSample(),
			want:    true,
		},
		{
			name:    "explicit false inherited",
			md:      metadata.Metadata{KeyCorrelationID: "abc", KeyDebugEnabled: "false"},
			sampler: alwaysSample(),
			want:    false,
		},
		{
			name:    "non-truthy marker reads as false",
			md:      metadata.Metadata{KeyCorrelationID: "abc", KeyDebugEnabled: "TRUE"},
			sampler: alwaysSample(),
			want:    false,
		},
		{
			name:    "garbage marker reads as false",
			md:      metadata.Metadata{KeyCorrelationID: "abc", KeyDebugEnabled: "1"},
			sampler: alwaysSample(),
			want:    false,
		},
		{
			name:    "absent flag lets the sampler draw",
			md:      metadata.Metadata{KeyCorrelationID: "abc"},
			sampler: alwaysSample(),
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExtractor(tt.sampler)
			if got := e.FromMetadata(tt.md).DebugEnabled; got != tt.want {
				t.Fatalf("expected debug %v, got %v", tt.want, got)
			}
		})
	}
}

func TestExtractEmptyCorrelationIDOriginates(t *testing.T) {
	e := NewExtractor(neverSample())

	tc := e.FromMetadata(metadata.Metadata{KeyCorrelationID: "", KeyChainLength: "4"})

	if tc.CorrelationID == "" {
		t.Fatal("expected a generated correlation id")
	}
	if tc.ChainLength != 1 {
		t.Fatalf("expected a fresh transaction, got chain length %d", tc.ChainLength)
	}
}

func TestExtractFromHTTPHeader(t *testing.T) {
	e := NewExtractor(neverSample())

	h := http.Header{}
	h.Set(KeyCorrelationID, "abc")
	h.Set(KeyChainLength, "2")
	h.Set(KeyDebugEnabled, "true")

	tc := e.FromHTTPHeader(h)
	if tc.CorrelationID != "abc" || tc.ChainLength != 3 || !tc.DebugEnabled {
		t.Fatalf("unexpected context from headers: %+v", tc)
	}
}

func TestExtractFromHTTPHeaderColdRequest(t *testing.T) {
	e := NewExtractor(alwaysSample())

	tc := e.FromHTTPHeader(http.Header{})
	if tc.ChainLength != 1 || tc.CorrelationID == "" || !tc.DebugEnabled {
		t.Fatalf("unexpected root context: %+v", tc)
	}

	// No metadata channel at all.
	tc = e.FromHTTPHeader(nil)
	if tc.ChainLength != 1 || tc.CorrelationID == "" {
		t.Fatalf("unexpected root context from nil header: %+v", tc)
	}
}

func TestExtractFromMessage(t *testing.T) {
	e := NewExtractor(neverSample())

	msg := message.NewMessage("uuid", []byte(`{"orderId":"42"}`))
	msg.Metadata.Set(KeyCorrelationID, "abc")
	msg.Metadata.Set(KeyChainLength, "1")
	msg.Metadata.Set(KeyDebugEnabled, "true")

	tc := e.FromMessage(msg)
	if tc.CorrelationID != "abc" || tc.ChainLength != 2 || !tc.DebugEnabled {
		t.Fatalf("unexpected context from message: %+v", tc)
	}

	if tc := e.FromMessage(nil); tc.ChainLength != 1 || tc.CorrelationID == "" {
		t.Fatalf("expected nil message to originate a transaction, got %+v", tc)
	}
}

func TestExtractAssignsDistinctInvocationIDs(t *testing.T) {
	e := NewExtractor(neverSample())
	md := metadata.Metadata{KeyCorrelationID: "abc", KeyChainLength: "1"}

	first := e.FromMetadata(md)
	second := e.FromMetadata(md)
	if first.InvocationID == second.InvocationID {
		t.Fatal("expected each invocation to get its own invocation id")
	}
}
