package core

// RandomSource yields random integers in [0, n). *math/rand.Rand satisfies it.
type RandomSource interface {
	Intn(n int) int
}

// drawDelta draws from the half-open interval [lo, hi). An empty interval
// (lo == hi) yields lo without consuming randomness.
func drawDelta(rng RandomSource, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo)
}
