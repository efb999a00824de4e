package market

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vladslugin987/stock-simulator/internal/metrics"
	"github.com/vladslugin987/stock-simulator/internal/signal"
)

// DefaultPeriod is the cadence of the free-running market clock.
const DefaultPeriod = 5 * time.Second

// Feed drives a Market on a fixed period and publishes the resulting ticks.
type Feed struct {
	market *Market
	period time.Duration
	log    zerolog.Logger
}

// FeedOption configures Feed construction parameters.
type FeedOption func(*Feed)

// WithPeriod overrides the default tick cadence.
func WithPeriod(d time.Duration) FeedOption {
	return func(f *Feed) {
		if d > 0 {
			f.period = d
		}
	}
}

// NewFeed constructs a feed for m.
func NewFeed(m *Market, log zerolog.Logger, opts ...FeedOption) *Feed {
	f := &Feed{market: m, period: DefaultPeriod, log: log}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Period reports the configured tick cadence.
func (f *Feed) Period() time.Duration { return f.period }

// Step applies one market tick synchronously and records metrics for it.
func (f *Feed) Step() []signal.Tick {
	ticks := f.market.Tick()
	for _, tk := range ticks {
		metrics.TicksTotal.WithLabelValues(tk.Symbol).Inc()
		metrics.Price.WithLabelValues(tk.Symbol).Set(float64(tk.Price))
	}
	f.log.Debug().Int("instruments", len(ticks)).Msg("market tick")
	return ticks
}

// Run ticks immediately and then once per period until the context is canceled.
// Delivery to out never blocks: a tick the consumer has no room for is dropped,
// since the market already holds the newer state. out may be nil.
func (f *Feed) Run(ctx context.Context, out chan<- signal.Tick) error {
	f.log.Info().Dur("period", f.period).Strs("symbols", f.market.Symbols()).Msg("market clock started")

	f.publish(f.Step(), out)

	ticker := time.NewTicker(f.period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			f.publish(f.Step(), out)
		}
	}
}

func (f *Feed) publish(ticks []signal.Tick, out chan<- signal.Tick) {
	if out == nil {
		return
	}
	for _, tk := range ticks {
		select {
		case out <- tk:
		default:
			metrics.TicksDropped.Inc()
			f.log.Debug().Str("sym", tk.Symbol).Uint64("seq", tk.Seq).Msg("consumer behind, tick dropped")
		}
	}
}
