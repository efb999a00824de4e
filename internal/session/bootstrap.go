package session

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/vladslugin987/stock-simulator/internal/config"
	"github.com/vladslugin987/stock-simulator/internal/market"
	"github.com/vladslugin987/stock-simulator/internal/paper"
	"github.com/vladslugin987/stock-simulator/internal/view"
)

// Runtime is everything a front end needs, built from configuration.
type Runtime struct {
	Session *Session
	Feed    *market.Feed
	Journal *paper.Journal

	recorder *paper.JSONLRecorder
}

// Bootstrap constructs the market, ledger, view and feed described by cfg.
func Bootstrap(cfg *config.Config, log zerolog.Logger) (*Runtime, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	walker := market.NewWalker(cfg.Market.Seed, cfg.Market.MinDelta, cfg.Market.MaxDelta, cfg.Market.PriceFloor)
	m := market.New(walker, market.WithHistoryCap(cfg.Market.HistoryCap))
	for _, inst := range cfg.Market.Instruments {
		if err := m.Create(inst.Symbol, inst.Price); err != nil {
			return nil, fmt.Errorf("create instrument: %w", err)
		}
	}

	rt := &Runtime{Journal: paper.NewJournal(64)}
	recorders := paper.MultiRecorder{rt.Journal}
	if cfg.Ledger.FillsPath != "" {
		rec, err := paper.NewJSONLRecorder(cfg.Ledger.FillsPath, log)
		if err != nil {
			return nil, fmt.Errorf("open fills journal: %w", err)
		}
		rt.recorder = rec
		recorders = append(recorders, rec)
	}
	ledger := paper.NewLedger(cfg.Ledger.StartingBalance, m, m.Symbols(), paper.WithRecorder(recorders))

	v, err := view.New()
	if err != nil {
		_ = rt.Close()
		return nil, err
	}

	rt.Session = New(m, ledger, v, log)
	rt.Feed = market.NewFeed(m, log, market.WithPeriod(cfg.Market.TickPeriod()))
	return rt, nil
}

// Close releases the fills journal file, if any.
func (r *Runtime) Close() error {
	if r.recorder == nil {
		return nil
	}
	return r.recorder.Close()
}
