package propagation

// Wire-level metadata keys. These are a versioned contract between the
// injector on the sending side and the extractor on the receiving side and
// must match across every transport.
const (
	// KeyCorrelationID carries the transaction identifier.
	KeyCorrelationID = "x-correlation-id"

	// KeyChainLength carries the hop count as a string-encoded integer.
	// Absent or unparsable values are treated as 0.
	KeyChainLength = "call-chain-length"

	// KeyDebugEnabled carries the sampling decision as "true"/"false".
	// Absent means no decision has been made yet.
	KeyDebugEnabled = "debug-log-enabled"
)

// truthy is the only marker accepted as an enabled debug flag. Anything
// else present on the wire reads as false.
const truthy = "true"
