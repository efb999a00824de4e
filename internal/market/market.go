// Package market holds the simulated instruments and advances their prices.
package market

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vladslugin987/stock-simulator/internal/signal"
)

var (
	ErrUnknownSymbol   = errors.New("unknown symbol")
	ErrDuplicateSymbol = errors.New("symbol already exists")
	ErrEmptySymbol     = errors.New("symbol must not be empty")
	ErrInvalidPrice    = errors.New("price below floor")
)

type instrument struct {
	symbol  string
	price   int64
	history []int64
	seq     uint64
}

// Snapshot is an immutable copy of one instrument taken between steps.
type Snapshot struct {
	Symbol  string
	Price   int64
	History []int64 // oldest first, History[len-1] == Price
	Seq     uint64
}

// Market is the authoritative set of instruments. Every step is applied under a
// single write lock, so readers observe either the state before or after a whole step.
type Market struct {
	mu          sync.RWMutex
	walker      *Walker
	order       []string
	instruments map[string]*instrument
	historyCap  int
	now         func() time.Time
}

// Option configures Market construction parameters.
type Option func(*Market)

// WithHistoryCap keeps only the most recent n prices per instrument. Zero keeps everything.
func WithHistoryCap(n int) Option {
	return func(m *Market) {
		if n >= 0 {
			m.historyCap = n
		}
	}
}

// New constructs an empty market driven by walker. A nil walker uses DefaultWalker with a time seed.
func New(walker *Walker, opts ...Option) *Market {
	if walker == nil {
		walker = DefaultWalker(0)
	}
	m := &Market{
		walker:      walker,
		instruments: make(map[string]*instrument),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create adds an instrument whose history starts with initialPrice.
func (m *Market) Create(symbol string, initialPrice int64) error {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return ErrEmptySymbol
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if initialPrice < m.walker.Floor() {
		return fmt.Errorf("%w: %s at %d (floor %d)", ErrInvalidPrice, symbol, initialPrice, m.walker.Floor())
	}
	if _, ok := m.instruments[symbol]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateSymbol, symbol)
	}
	m.instruments[symbol] = &instrument{symbol: symbol, price: initialPrice, history: []int64{initialPrice}}
	m.order = append(m.order, symbol)
	return nil
}

// Tick advances every instrument by one step, in creation order, and reports the new prices.
func (m *Market) Tick() []signal.Tick {
	m.mu.Lock()
	defer m.mu.Unlock()

	ts := m.now()
	out := make([]signal.Tick, 0, len(m.order))
	for _, sym := range m.order {
		inst := m.instruments[sym]
		prev := inst.price
		inst.price = m.walker.Step(prev)
		inst.history = m.appendHistory(inst.history, inst.price)
		inst.seq++
		out = append(out, signal.Tick{Symbol: sym, Price: inst.price, Prev: prev, Seq: inst.seq, Ts: ts})
	}
	return out
}

func (m *Market) appendHistory(history []int64, price int64) []int64 {
	if m.historyCap > 0 && len(history) >= m.historyCap {
		drop := len(history) - m.historyCap + 1
		copy(history, history[drop:])
		history = history[:len(history)-drop]
	}
	return append(history, price)
}

// CurrentPrice returns the live price of symbol.
func (m *Market) CurrentPrice(symbol string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inst, ok := m.instruments[symbol]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	return inst.price, nil
}

// History returns a copy of the price history of symbol, oldest first.
func (m *Market) History(symbol string) ([]int64, error) {
	snap, err := m.Snapshot(symbol)
	if err != nil {
		return nil, err
	}
	return snap.History, nil
}

// Snapshot copies one instrument.
func (m *Market) Snapshot(symbol string) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	inst, ok := m.instruments[symbol]
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	return inst.snapshot(), nil
}

// Snapshots copies every instrument in creation order.
func (m *Market) Snapshots() []Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Snapshot, 0, len(m.order))
	for _, sym := range m.order {
		out = append(out, m.instruments[sym].snapshot())
	}
	return out
}

// Symbols lists instruments in creation order.
func (m *Market) Symbols() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Has reports whether symbol is tracked.
func (m *Market) Has(symbol string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.instruments[symbol]
	return ok
}

// Prices returns the live price of every instrument.
func (m *Market) Prices() map[string]int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]int64, len(m.instruments))
	for sym, inst := range m.instruments {
		out[sym] = inst.price
	}
	return out
}

func (i *instrument) snapshot() Snapshot {
	history := make([]int64, len(i.history))
	copy(history, i.history)
	return Snapshot{Symbol: i.symbol, Price: i.price, History: history, Seq: i.seq}
}
