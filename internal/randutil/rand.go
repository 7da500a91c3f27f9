// Package randutil builds the deterministic random sources used by game
// rounds. A session seeded with the same value replays the same targets,
// tiles, codes and questions.
package randutil

import (
	rand "math/rand/v2"
	"time"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
// Both PCG words are derived from the one seed so call sites only carry an
// int64 around (flags, config, logs).
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Seed returns the configured seed when one is given, otherwise a seed
// derived from the current time. The second result reports whether the seed
// was chosen by the caller.
func Seed(configured *int64) (int64, bool) {
	if configured != nil {
		return *configured, true
	}
	return time.Now().UnixNano(), false
}

// IntRange returns a uniformly distributed value in [lo, hi].
func IntRange(rng *rand.Rand, lo, hi int) int {
	return lo + rng.IntN(hi-lo+1)
}

// splitmix64 finaliser
func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
