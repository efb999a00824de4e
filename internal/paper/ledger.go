// Package paper keeps the virtual cash balance and share holdings of the simulator.
package paper

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladslugin987/stock-simulator/internal/execution"
)

// FillRecorder captures paper fills for later inspection.
type FillRecorder interface {
	Record(execution.Fill)
}

// PriceSource yields the live price trades settle at.
type PriceSource interface {
	CurrentPrice(symbol string) (int64, error)
}

// Ledger tracks cash and per-symbol share counts. Buys and sells settle at the
// price the PriceSource reports at the moment they execute.
type Ledger struct {
	mu              sync.Mutex
	prices          PriceSource
	startingBalance int64
	balance         int64
	realized        int64
	holdings        map[string]int64
	costBasis       map[string]int64
	recorder        FillRecorder
	now             func() time.Time
}

// PositionSnapshot exposes a read-only view of a single symbol position.
type PositionSnapshot struct {
	Qty         int64
	CostBasis   int64
	MarketValue int64
	Unrealized  int64
}

// Snapshot represents a thread-safe view of the ledger, marked to market using provided prices.
type Snapshot struct {
	Balance   int64
	Realized  int64
	Equity    int64
	Holdings  map[string]int64
	Positions map[string]PositionSnapshot
}

// Option configures Ledger construction parameters.
type Option func(*Ledger)

// WithRecorder sends every fill to r after it settles.
func WithRecorder(r FillRecorder) Option {
	return func(l *Ledger) { l.recorder = r }
}

// NewLedger constructs a ledger with startingBalance and zero holdings for each symbol.
func NewLedger(startingBalance int64, prices PriceSource, symbols []string, opts ...Option) *Ledger {
	l := &Ledger{
		prices:          prices,
		startingBalance: startingBalance,
		balance:         startingBalance,
		holdings:        make(map[string]int64, len(symbols)),
		costBasis:       make(map[string]int64, len(symbols)),
		now:             time.Now,
	}
	for _, sym := range symbols {
		l.Register(sym)
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Register makes symbol tradable with zero holdings. Registering twice is a no-op.
func (l *Ledger) Register(symbol string) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.holdings[symbol]; !ok {
		l.holdings[symbol] = 0
	}
}

// StartingBalance returns the initial bankroll.
func (l *Ledger) StartingBalance() int64 { return l.startingBalance }

// Buy debits the live price of symbol and adds one share.
func (l *Ledger) Buy(symbol string) (execution.Fill, error) {
	return l.settle(symbol, execution.Buy)
}

// Sell credits the live price of symbol and removes one share.
func (l *Ledger) Sell(symbol string) (execution.Fill, error) {
	return l.settle(symbol, execution.Sell)
}

func (l *Ledger) settle(symbol string, side execution.Side) (execution.Fill, error) {
	fill, err := l.apply(symbol, side)
	if err != nil {
		return execution.Fill{}, err
	}
	if l.recorder != nil {
		l.recorder.Record(fill)
	}
	return fill, nil
}

func (l *Ledger) apply(symbol string, side execution.Side) (execution.Fill, error) {
	if symbol == "" {
		return execution.Fill{}, &TradeError{Err: ErrNoSelection, Side: side}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	held, ok := l.holdings[symbol]
	if !ok {
		return execution.Fill{}, &TradeError{Err: ErrUnknownSymbol, Symbol: symbol, Side: side}
	}
	price, err := l.prices.CurrentPrice(symbol)
	if err != nil {
		return execution.Fill{}, &TradeError{Err: errors.Join(ErrUnknownSymbol, err), Symbol: symbol, Side: side, Balance: l.balance, Held: held}
	}

	switch side {
	case execution.Buy:
		if l.balance < price {
			return execution.Fill{}, &TradeError{Err: ErrInsufficientBalance, Symbol: symbol, Side: side, Price: price, Balance: l.balance, Held: held}
		}
		l.balance -= price
		l.holdings[symbol] = held + 1
		l.costBasis[symbol] += price

	case execution.Sell:
		if held <= 0 {
			return execution.Fill{}, &TradeError{Err: ErrNoHoldings, Symbol: symbol, Side: side, Price: price, Balance: l.balance, Held: held}
		}
		// Average cost of one share; the last share takes whatever basis remains.
		basis := l.costBasis[symbol] / held
		if held == 1 {
			basis = l.costBasis[symbol]
		}
		l.costBasis[symbol] -= basis
		l.realized += price - basis
		l.balance += price
		l.holdings[symbol] = held - 1

	default:
		return execution.Fill{}, execution.ErrUnknownSide
	}

	return execution.Fill{
		ID:           uuid.NewString(),
		Symbol:       symbol,
		Side:         side,
		Qty:          1,
		Price:        price,
		BalanceAfter: l.balance,
		Ts:           l.now(),
	}, nil
}

// Balance returns the cash balance.
func (l *Ledger) Balance() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

// Holding returns the share count of symbol.
func (l *Ledger) Holding(symbol string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.holdings[symbol]
}

// Holdings returns a copy of every registered symbol's share count, zeros included.
func (l *Ledger) Holdings() map[string]int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]int64, len(l.holdings))
	for sym, qty := range l.holdings {
		out[sym] = qty
	}
	return out
}

// RealizedPnL returns total closed-share profit and loss.
func (l *Ledger) RealizedPnL() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.realized
}

// Snapshot returns a copy of balances, marked using the supplied prices map.
// Symbols missing from prices are valued at zero.
func (l *Ledger) Snapshot(prices map[string]int64) Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	holdings := make(map[string]int64, len(l.holdings))
	positions := make(map[string]PositionSnapshot)
	equity := l.balance
	for sym, qty := range l.holdings {
		holdings[sym] = qty
		if qty == 0 {
			continue
		}
		value := qty * prices[sym]
		positions[sym] = PositionSnapshot{
			Qty:         qty,
			CostBasis:   l.costBasis[sym],
			MarketValue: value,
			Unrealized:  value - l.costBasis[sym],
		}
		equity += value
	}

	return Snapshot{
		Balance:   l.balance,
		Realized:  l.realized,
		Equity:    equity,
		Holdings:  holdings,
		Positions: positions,
	}
}
