package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "stocksim_ticks_total", Help: "Market steps applied per instrument"},
		[]string{"symbol"},
	)
	TicksDropped = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "stocksim_ticks_dropped_total", Help: "Ticks not delivered because the consumer was behind"},
	)
	Price = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "stocksim_price", Help: "Latest simulated price"},
		[]string{"symbol"},
	)
	TradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "stocksim_trades_total", Help: "Settled buy and sell orders"},
		[]string{"symbol", "side"},
	)
	RejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "stocksim_trade_rejections_total", Help: "Orders rejected by the ledger"},
		[]string{"symbol", "side", "reason"},
	)
)

func init() {
	prometheus.MustRegister(TicksTotal, TicksDropped, Price, TradesTotal, RejectionsTotal)
}

// Route mounts an extra handler next to /metrics.
type Route struct {
	Pattern string
	Handler http.Handler
}

// Serve exposes /metrics plus any extra routes on addr in a background goroutine.
func Serve(addr string, routes ...Route) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	for _, r := range routes {
		if r.Pattern == "" || r.Handler == nil {
			continue
		}
		mux.Handle(r.Pattern, r.Handler)
	}
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
