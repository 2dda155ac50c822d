package classifier

import "math/rand/v2"

// Random is the source of the jitter term.
// IntN returns a uniformly distributed integer in [0, n) and is only called
// with n > 0.
type Random interface {
	IntN(n int) int
}

// systemRandom draws from the goroutine-safe global generator of math/rand/v2.
type systemRandom struct{}

// IntN implements Random.
func (systemRandom) IntN(n int) int {
	return rand.IntN(n) //nolint:gosec // jitter is not security sensitive
}

// FixedRandom always returns the same value, reduced into [0, n).
// It is meant for tests and for reproducible runs.
type FixedRandom int

// IntN implements Random.
func (f FixedRandom) IntN(n int) int {
	v := int(f) % n
	if v < 0 {
		v += n
	}
	return v
}
