// Package ids generates the identifiers used for correlation ids,
// invocation ids, and message UUIDs. ULIDs are used so ids sort by creation
// time, which keeps log output and queue introspection readable.
package ids

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// New returns a fresh 26-character ULID string.
func New() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}
