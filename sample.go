package sweep

import (
	"math/rand"
	"sync"
)

//////
// Range sampling.
//////

// Sample returns a copy of task where every Range marker is replaced by an
// independent uniform draw from r. The template is left untouched, so calling
// Sample repeatedly on it yields fresh, independent values.
//
// Each draw is computed as lo + u*(hi-lo) with u in [0, 1).
func Sample(task Params, r Rand) Params {
	out := task.Clone()

	for i, param := range out {
		if rng, ok := param.Value.(Range); ok {
			out[i].Value = rng.Lo + r.Float64()*(rng.Hi-rng.Lo)
		}
	}

	return out
}

// HasRange reports whether any value of task is still a Range marker.
func HasRange(task Params) bool {
	for _, param := range task {
		if _, ok := param.Value.(Range); ok {
			return true
		}
	}

	return false
}

// lockedRand serializes access to a *rand.Rand so that concurrent workers can
// share one stream.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newLockedRand(rng *rand.Rand) *lockedRand {
	return &lockedRand{rng: rng}
}

// Float64 implements Rand.
func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.rng.Float64()
}

// Intn implements Rand.
func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.rng.Intn(n)
}

// draw picks a template uniformly and samples it. The lock is held for the
// whole draw so that one unit's values come from consecutive numbers of the
// stream.
func (l *lockedRand) draw(templates []Params) (int, Params) {
	l.mu.Lock()
	defer l.mu.Unlock()

	index := l.rng.Intn(len(templates))

	return index, Sample(templates[index], l.rng)
}
