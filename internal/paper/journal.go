package paper

import (
	"sync"

	"github.com/vladslugin987/stock-simulator/internal/execution"
)

// Journal stores paper fills in memory for quick inspection.
type Journal struct {
	mu    sync.Mutex
	fills []execution.Fill
}

// NewJournal creates an empty journal optionally pre-sizing storage.
func NewJournal(capacity int) *Journal {
	if capacity < 0 {
		capacity = 0
	}
	return &Journal{fills: make([]execution.Fill, 0, capacity)}
}

// Record appends a fill to the journal.
func (j *Journal) Record(fill execution.Fill) {
	j.mu.Lock()
	j.fills = append(j.fills, fill)
	j.mu.Unlock()
}

// Snapshot returns a copy of the recorded fills, oldest first.
func (j *Journal) Snapshot() []execution.Fill {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]execution.Fill, len(j.fills))
	copy(out, j.fills)
	return out
}

// Last returns up to n of the most recent fills, oldest first.
func (j *Journal) Last(n int) []execution.Fill {
	j.mu.Lock()
	defer j.mu.Unlock()
	if n <= 0 {
		return nil
	}
	if n > len(j.fills) {
		n = len(j.fills)
	}
	out := make([]execution.Fill, n)
	copy(out, j.fills[len(j.fills)-n:])
	return out
}

// Reset clears all stored fills.
func (j *Journal) Reset() {
	j.mu.Lock()
	j.fills = j.fills[:0]
	j.mu.Unlock()
}
