// Package sampling decides whether a transaction gets verbose debug
// logging. The decision is made exactly once, at the transaction root, and
// is sticky from then on.
package sampling

import "math/rand/v2"

// DefaultProbability is the sampling rate used when none is configured.
// Verbose logging is meant to be rare outside deliberately traced
// transactions.
const DefaultProbability = 0.10

// Sampler draws the root debug-logging decision for a transaction.
type Sampler struct {
	// Probability is the chance in [0,1] that a fresh transaction is
	// sampled for debug logging.
	Probability float64

	// Rand returns a uniform value in [0,1). Overridable so tests can
	// force either outcome. Nil falls back to math/rand/v2.
	Rand func() float64
}

// New returns a Sampler with the given probability. Negative values are
// clamped to zero; values above one always sample.
func New(probability float64) Sampler {
	if probability < 0 {
		probability = 0
	}
	return Sampler{Probability: probability}
}

// Decide returns the debug decision for a transaction. An inherited
// decision wins unchanged; only when no decision exists yet is a random
// draw made.
func (s Sampler) Decide(existing *bool) bool {
	if existing != nil {
		return *existing
	}

	draw := s.Rand
	if draw == nil {
		draw = rand.Float64
	}
	return draw() < s.Probability
}
