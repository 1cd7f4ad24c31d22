package scheduling

import "math/rand"

// StepRand returns a PRNG seeded from the run seed and a logical step
// index (course ordinal, student ordinal, ticket ordinal) rather than from
// a single run-wide stream. Any two runs with the same seed make the same
// random choice at the same step regardless of what ran before it, which
// is what makes a run's output independent of unrelated input reordering.
func StepRand(seed int64, step int) *rand.Rand {
	return rand.New(rand.NewSource(seed*1000003 + int64(step)))
}
