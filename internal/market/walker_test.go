package market

import (
	"testing"

	"pgregory.net/rapid"
)

func TestWalkerDeltaWithinRange(t *testing.T) {
	w := DefaultWalker(1)
	seen := map[int64]bool{}
	for i := 0; i < 5000; i++ {
		d := w.Delta()
		if d < DefaultMinDelta || d > DefaultMaxDelta {
			t.Fatalf("delta %d outside [%d, %d]", d, DefaultMinDelta, DefaultMaxDelta)
		}
		seen[d] = true
	}
	// Both bounds are inclusive.
	if !seen[DefaultMinDelta] || !seen[DefaultMaxDelta] {
		t.Fatalf("expected both bounds to be drawn, saw %v", seen)
	}
	if len(seen) != 21 {
		t.Fatalf("expected 21 distinct deltas, got %d", len(seen))
	}
}

func TestWalkerClampsAtFloor(t *testing.T) {
	w := NewWalker(3, -10, -10, 1)
	price := int64(100)
	for i := 0; i < 50; i++ {
		price = w.Step(price)
		if price < 1 {
			t.Fatalf("price %d below floor after %d steps", price, i+1)
		}
	}
	if price != 1 {
		t.Fatalf("expected worst-case walk to settle on the floor, got %d", price)
	}
}

func TestNewWalkerNormalizesArguments(t *testing.T) {
	w := NewWalker(5, 4, -4, 0)
	if w.Floor() != DefaultFloor {
		t.Fatalf("expected floor fallback to %d, got %d", DefaultFloor, w.Floor())
	}
	for i := 0; i < 200; i++ {
		if d := w.Delta(); d < -4 || d > 4 {
			t.Fatalf("delta %d outside swapped range", d)
		}
	}
}

func TestWalkerSeededDeterminism(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seed := rapid.Int64Range(1, 1<<40).Draw(t, "seed")
		steps := rapid.IntRange(1, 200).Draw(t, "steps")

		a, b := DefaultWalker(seed), DefaultWalker(seed)
		pa, pb := int64(100), int64(100)
		for i := 0; i < steps; i++ {
			pa, pb = a.Step(pa), b.Step(pb)
			if pa != pb {
				t.Fatalf("step %d diverged: %d != %d", i, pa, pb)
			}
		}
	})
}
