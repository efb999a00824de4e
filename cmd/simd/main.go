package main

import (
	"context"
	"errors"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/vladslugin987/stock-simulator/internal/config"
	"github.com/vladslugin987/stock-simulator/internal/metrics"
	"github.com/vladslugin987/stock-simulator/internal/session"
	sig "github.com/vladslugin987/stock-simulator/internal/signal"
	"github.com/vladslugin987/stock-simulator/internal/stream"
	"github.com/vladslugin987/stock-simulator/internal/util"
)

func main() {
	path := os.Getenv("STOCKSIM_CONFIG")
	if path == "" {
		path = "stocksim.yaml"
	}
	boot := util.NewLogger("info", nil)
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		boot.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.ApplyEnv(); err != nil {
		boot.Fatal().Err(err).Msg("environment overrides")
	}
	log := util.NewLogger(cfg.App.LogLevel, nil)

	rt, err := session.Bootstrap(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("bootstrap")
	}
	defer rt.Close()

	var routes []metrics.Route
	if cfg.Stream.Enabled {
		routes = append(routes, metrics.Route{Pattern: cfg.Stream.Path, Handler: stream.NewHub(rt.Session.View(), log)})
	}
	srv := metrics.Serve(cfg.App.MetricsAddr, routes...)
	log.Info().Str("addr", cfg.App.MetricsAddr).Bool("stream", cfg.Stream.Enabled).Msg("metrics up")

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ticks := make(chan sig.Tick, 1024)
	go func() {
		if err := rt.Feed.Run(ctx, ticks); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("feed stopped")
			cancel()
		}
	}()

	log.Info().
		Strs("symbols", rt.Session.Market().Symbols()).
		Dur("period", rt.Feed.Period()).
		Msg("simulator started")

	sigs, unsubscribe, err := rt.Session.Subscribe()
	if err != nil {
		log.Fatal().Err(err).Msg("subscribe")
	}
	defer unsubscribe()
	go func() {
		for range sigs {
			st := rt.Session.View().State()
			for _, sym := range st.Order {
				q := st.Quotes[sym]
				log.Debug().Str("symbol", sym).Int64("price", q.Price).Int64("change", q.Change()).Msg("quote")
			}
		}
	}()

	if err := rt.Session.Consume(ctx, ticks); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("consume stopped")
	}

	log.Info().Msg("shutting down")
	shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
	defer done()
	_ = srv.Shutdown(shutdownCtx)
}
