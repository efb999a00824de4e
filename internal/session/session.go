// Package session is the boundary between the simulator core and whatever presents it.
// A Session is built once at startup and shared by the tick consumer and the front end.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/johnsiilver/boutique"
	"github.com/rs/zerolog"

	"github.com/vladslugin987/stock-simulator/internal/execution"
	"github.com/vladslugin987/stock-simulator/internal/market"
	"github.com/vladslugin987/stock-simulator/internal/paper"
	"github.com/vladslugin987/stock-simulator/internal/signal"
	"github.com/vladslugin987/stock-simulator/internal/view"
)

// ErrUnknownSymbol is returned by Select for symbols the market does not track.
var ErrUnknownSymbol = market.ErrUnknownSymbol

// Session ties the market, the ledger and the presentation view together.
type Session struct {
	market *market.Market
	ledger *paper.Ledger
	exec   *execution.Executor
	view   *view.View
	log    zerolog.Logger

	// pub serializes read-then-publish so an older copy never overwrites a newer one.
	pub sync.Mutex
}

// New wires a session around existing core objects.
func New(m *market.Market, l *paper.Ledger, v *view.View, log zerolog.Logger) *Session {
	s := &Session{
		market: m,
		ledger: l,
		exec:   execution.NewExecutor(log, l, paper.Reason),
		view:   v,
		log:    log,
	}
	s.Refresh()
	return s
}

// Market returns the authoritative market.
func (s *Session) Market() *market.Market { return s.market }

// Ledger returns the authoritative ledger.
func (s *Session) Ledger() *paper.Ledger { return s.ledger }

// View returns the presentation store.
func (s *Session) View() *view.View { return s.view }

// AddInstrument creates a new instrument and makes it tradable.
func (s *Session) AddInstrument(symbol string, price int64) error {
	if err := s.market.Create(symbol, price); err != nil {
		return err
	}
	s.ledger.Register(symbol)
	s.Refresh()
	return nil
}

// Select highlights symbol. An empty symbol clears the selection.
func (s *Session) Select(symbol string) error {
	if symbol != "" && !s.market.Has(symbol) {
		return fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	return s.view.Perform(view.Select(symbol))
}

// Selected returns the highlighted symbol or "".
func (s *Session) Selected() string {
	return s.view.State().Selected
}

// Buy buys one share of the selected instrument at its live price.
func (s *Session) Buy() (execution.Fill, error) {
	return s.submit(s.Selected(), execution.Buy)
}

// Sell sells one share of the selected instrument at its live price.
func (s *Session) Sell() (execution.Fill, error) {
	return s.submit(s.Selected(), execution.Sell)
}

// BuySymbol buys one share of symbol regardless of the selection.
func (s *Session) BuySymbol(symbol string) (execution.Fill, error) {
	return s.submit(symbol, execution.Buy)
}

// SellSymbol sells one share of symbol regardless of the selection.
func (s *Session) SellSymbol(symbol string) (execution.Fill, error) {
	return s.submit(symbol, execution.Sell)
}

func (s *Session) submit(symbol string, side execution.Side) (execution.Fill, error) {
	fill, err := s.exec.Submit(execution.Order{Symbol: symbol, Side: side})
	if err != nil {
		if paper.IsWarning(err) {
			s.perform(view.Notify(paper.Notice(err)))
		}
		return execution.Fill{}, err
	}
	s.perform(view.Notify(""))
	s.publishAccount()
	return fill, nil
}

// CurrentPrice returns the live price of symbol.
func (s *Session) CurrentPrice(symbol string) (int64, error) {
	return s.market.CurrentPrice(symbol)
}

// History returns the price history of symbol, oldest first.
func (s *Session) History(symbol string) ([]int64, error) {
	return s.market.History(symbol)
}

// Balance returns the ledger cash balance.
func (s *Session) Balance() int64 { return s.ledger.Balance() }

// Holdings returns the ledger share counts.
func (s *Session) Holdings() map[string]int64 { return s.ledger.Holdings() }

// Portfolio returns the ledger marked at live prices.
func (s *Session) Portfolio() paper.Snapshot {
	return s.ledger.Snapshot(s.market.Prices())
}

// Refresh copies the current market and ledger state into the view.
func (s *Session) Refresh() {
	s.pub.Lock()
	defer s.pub.Unlock()

	snaps := s.market.Snapshots()
	quotes := make([]view.Quote, 0, len(snaps))
	for _, snap := range snaps {
		prev := snap.Price
		if n := len(snap.History); n >= 2 {
			prev = snap.History[n-2]
		}
		quotes = append(quotes, view.Quote{
			Symbol:  snap.Symbol,
			Price:   snap.Price,
			Prev:    prev,
			History: snap.History,
			Seq:     snap.Seq,
		})
	}
	s.perform(view.Quotes(quotes))
	s.performAccount()
}

func (s *Session) publishAccount() {
	s.pub.Lock()
	defer s.pub.Unlock()
	s.performAccount()
}

func (s *Session) performAccount() {
	snap := s.ledger.Snapshot(nil)
	s.perform(view.SetAccount(snap.Balance, snap.Holdings))
}

// Consume refreshes the view whenever ticks arrive, coalescing bursts into one refresh.
// It returns nil when ticks is closed and the context error when ctx ends.
func (s *Session) Consume(ctx context.Context, ticks <-chan signal.Tick) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-ticks:
			if !ok {
				return nil
			}
			if !drain(ticks) {
				s.Refresh()
				return nil
			}
			s.Refresh()
		}
	}
}

// drain empties whatever is already buffered; false means the channel closed.
func drain(ticks <-chan signal.Tick) bool {
	for {
		select {
		case _, ok := <-ticks:
			if !ok {
				return false
			}
		default:
			return true
		}
	}
}

// Subscribe notifies on every view change.
func (s *Session) Subscribe() (chan boutique.Signal, boutique.CancelFunc, error) {
	return s.view.Subscribe()
}

func (s *Session) perform(a boutique.Action) {
	if err := s.view.Perform(a); err != nil {
		s.log.Error().Err(err).Msg("view update failed")
	}
}
