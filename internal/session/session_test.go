package session

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kylelemons/godebug/pretty"
	"github.com/rs/zerolog"

	"github.com/vladslugin987/stock-simulator/internal/config"
	"github.com/vladslugin987/stock-simulator/internal/market"
	"github.com/vladslugin987/stock-simulator/internal/paper"
	"github.com/vladslugin987/stock-simulator/internal/signal"
	"github.com/vladslugin987/stock-simulator/internal/view"
)

func newTestSession(t *testing.T, walker *market.Walker, balance int64) *Session {
	t.Helper()
	m := market.New(walker)
	if err := m.Create("TechCorp", 100); err != nil {
		t.Fatal(err)
	}
	if err := m.Create("HealthPlus", 50); err != nil {
		t.Fatal(err)
	}
	v, err := view.New()
	if err != nil {
		t.Fatal(err)
	}
	return New(m, paper.NewLedger(balance, m, m.Symbols()), v, zerolog.Nop())
}

func TestBuyWithoutSelection(t *testing.T) {
	s := newTestSession(t, market.DefaultWalker(1), 1000)

	if _, err := s.Buy(); !errors.Is(err, paper.ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
	if _, err := s.Sell(); !errors.Is(err, paper.ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
	if s.View().State().Notice != "You do not own this stock!" {
		t.Fatalf("unexpected notice %q", s.View().State().Notice)
	}
}

func TestSelectBuySell(t *testing.T) {
	s := newTestSession(t, market.DefaultWalker(1), 1000)

	if err := s.Select("Ghost"); !errors.Is(err, ErrUnknownSymbol) {
		t.Fatalf("expected ErrUnknownSymbol, got %v", err)
	}
	if err := s.Select("TechCorp"); err != nil {
		t.Fatalf("Select returned error: %v", err)
	}
	if s.Selected() != "TechCorp" {
		t.Fatalf("unexpected selection %q", s.Selected())
	}

	fill, err := s.Buy()
	if err != nil {
		t.Fatalf("Buy returned error: %v", err)
	}
	if fill.Price != 100 || s.Balance() != 900 {
		t.Fatalf("unexpected fill %+v balance %d", fill, s.Balance())
	}
	state := s.View().State()
	if state.Balance != 900 || state.Holdings["TechCorp"] != 1 {
		t.Fatalf("view not updated after buy: %+v", state)
	}

	if _, err := s.Sell(); err != nil {
		t.Fatalf("Sell returned error: %v", err)
	}
	want := map[string]int64{"TechCorp": 0, "HealthPlus": 0}
	if diff := pretty.Compare(want, s.Holdings()); diff != "" {
		t.Fatalf("holdings -want/+got:\n%s", diff)
	}
	if s.Balance() != 1000 {
		t.Fatalf("round trip at fixed price should restore the balance, got %d", s.Balance())
	}

	if err := s.Select(""); err != nil || s.Selected() != "" {
		t.Fatalf("expected selection cleared")
	}
}

func TestWarningsReachView(t *testing.T) {
	s := newTestSession(t, market.DefaultWalker(1), 5)
	if err := s.Select("HealthPlus"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Buy(); !errors.Is(err, paper.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if s.View().State().Notice != "Not enough balance to buy!" {
		t.Fatalf("unexpected notice %q", s.View().State().Notice)
	}
	if _, err := s.SellSymbol("HealthPlus"); !errors.Is(err, paper.ErrNoHoldings) {
		t.Fatalf("expected ErrNoHoldings, got %v", err)
	}
	if s.View().State().Notice != "You do not own this stock!" {
		t.Fatalf("unexpected notice %q", s.View().State().Notice)
	}
}

func TestSettleAtLivePriceAfterTick(t *testing.T) {
	s := newTestSession(t, market.NewWalker(1, -3, -3, 1), 1000)
	if err := s.Select("TechCorp"); err != nil {
		t.Fatal(err)
	}
	shown, _ := s.View().State().SelectedQuote()
	s.Market().Tick()

	fill, err := s.Buy()
	if err != nil {
		t.Fatal(err)
	}
	if shown.Price != 100 || fill.Price != 97 {
		t.Fatalf("expected displayed 100 and settled 97, got %d and %d", shown.Price, fill.Price)
	}
}

func TestConsumeRefreshesView(t *testing.T) {
	s := newTestSession(t, market.DefaultWalker(3), 1000)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticks := make(chan signal.Tick, 4)
	done := make(chan error, 1)
	go func() { done <- s.Consume(ctx, ticks) }()

	for _, tk := range s.Market().Tick() {
		ticks <- tk
	}
	want, _ := s.CurrentPrice("TechCorp")

	deadline := time.After(2 * time.Second)
	for {
		q := s.View().State().Quotes["TechCorp"]
		if q.Seq == 1 {
			if q.Price != want || len(q.History) != 2 || q.Prev != 100 {
				t.Fatalf("unexpected quote %+v", q)
			}
			break
		}
		select {
		case <-deadline:
			t.Fatalf("view never saw the tick")
		case <-time.After(5 * time.Millisecond):
		}
	}

	close(ticks)
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil on closed channel, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Consume did not return after close")
	}
}

func TestConsumeStopsOnCancel(t *testing.T) {
	s := newTestSession(t, market.DefaultWalker(3), 1000)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Consume(ctx, make(chan signal.Tick)) }()
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Consume ignored cancel")
	}
}

func TestAddInstrument(t *testing.T) {
	s := newTestSession(t, market.DefaultWalker(3), 1000)
	if err := s.AddInstrument("GreenGrid", 10); err != nil {
		t.Fatalf("AddInstrument returned error: %v", err)
	}
	if _, err := s.BuySymbol("GreenGrid"); err != nil {
		t.Fatalf("expected new instrument to be tradable: %v", err)
	}
	state := s.View().State()
	if diff := pretty.Compare([]string{"TechCorp", "HealthPlus", "GreenGrid"}, state.Order); diff != "" {
		t.Fatalf("order -want/+got:\n%s", diff)
	}
	if err := s.AddInstrument("GreenGrid", 10); !errors.Is(err, market.ErrDuplicateSymbol) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if p := s.Portfolio(); p.Positions["GreenGrid"].Qty != 1 {
		t.Fatalf("unexpected portfolio %+v", p)
	}
}

func TestExecutorLogsThroughSession(t *testing.T) {
	var buf bytes.Buffer
	m := market.New(market.DefaultWalker(1))
	_ = m.Create("TechCorp", 100)
	v, _ := view.New()
	s := New(m, paper.NewLedger(1000, m, m.Symbols()), v, zerolog.New(&buf))
	if _, err := s.BuySymbol("TechCorp"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "order filled") {
		t.Fatalf("expected fill log, got %s", buf.String())
	}
}

func TestBootstrap(t *testing.T) {
	cfg := config.Default()
	cfg.Market.Seed = 1
	cfg.Ledger.FillsPath = t.TempDir() + "/fills.jsonl"

	rt, err := Bootstrap(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	defer rt.Close()

	if rt.Feed.Period() != 5*time.Second {
		t.Fatalf("unexpected feed period %s", rt.Feed.Period())
	}
	if diff := pretty.Compare([]string{"TechCorp", "HealthPlus"}, rt.Session.Market().Symbols()); diff != "" {
		t.Fatalf("symbols -want/+got:\n%s", diff)
	}
	if rt.Session.Balance() != 1000 {
		t.Fatalf("unexpected starting balance %d", rt.Session.Balance())
	}
	if _, err := rt.Session.BuySymbol("TechCorp"); err != nil {
		t.Fatal(err)
	}
	if len(rt.Journal.Snapshot()) != 1 {
		t.Fatalf("expected the fill in the journal")
	}

	if _, err := Bootstrap(nil, zerolog.Nop()); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestUnknownSymbolIsOneSentinel(t *testing.T) {
	s := newTestSession(t, market.DefaultWalker(1), 1000)

	err := s.Select("Ghost")
	if !errors.Is(err, market.ErrUnknownSymbol) || !errors.Is(err, paper.ErrUnknownSymbol) {
		t.Fatalf("expected the market sentinel, got %v", err)
	}
	if !paper.IsWarning(err) {
		t.Fatalf("unknown selection should be a warning: %v", err)
	}

	_, err = s.BuySymbol("Ghost")
	if !errors.Is(err, ErrUnknownSymbol) {
		t.Fatalf("expected ErrUnknownSymbol from BuySymbol, got %v", err)
	}
}
