package market

import (
	"math/rand"
	"time"
)

const (
	// DefaultMinDelta and DefaultMaxDelta bound the per-step integer move, inclusive.
	DefaultMinDelta int64 = -10
	DefaultMaxDelta int64 = 10
	// DefaultFloor is the lowest price the walk can reach.
	DefaultFloor int64 = 1
)

// Walker draws uniform integer deltas from a closed range and clamps the result at a floor.
// It is not safe for concurrent use; Market serializes calls under its write lock.
type Walker struct {
	rng      *rand.Rand
	minDelta int64
	maxDelta int64
	floor    int64
}

// NewWalker builds a walker over [minDelta, maxDelta]. A zero seed picks a time-based one.
func NewWalker(seed, minDelta, maxDelta, floor int64) *Walker {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if minDelta > maxDelta {
		minDelta, maxDelta = maxDelta, minDelta
	}
	if floor < 1 {
		floor = DefaultFloor
	}
	return &Walker{
		rng:      rand.New(rand.NewSource(seed)),
		minDelta: minDelta,
		maxDelta: maxDelta,
		floor:    floor,
	}
}

// DefaultWalker uses the [-10, 10] range floored at 1.
func DefaultWalker(seed int64) *Walker {
	return NewWalker(seed, DefaultMinDelta, DefaultMaxDelta, DefaultFloor)
}

// Floor reports the minimum price the walker will ever return.
func (w *Walker) Floor() int64 { return w.floor }

// Delta draws the next raw move.
func (w *Walker) Delta() int64 {
	return w.minDelta + w.rng.Int63n(w.maxDelta-w.minDelta+1)
}

// Step applies one draw to price and clamps at the floor.
func (w *Walker) Step(price int64) int64 {
	return w.clamp(price + w.Delta())
}

func (w *Walker) clamp(price int64) int64 {
	if price < w.floor {
		return w.floor
	}
	return price
}
