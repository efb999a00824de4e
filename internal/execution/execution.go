// Package execution routes orders to the paper ledger and reports their outcome.
package execution

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/vladslugin987/stock-simulator/internal/metrics"
)

// Side enumerates order directions used by the executor.
type Side string

const (
	// Buy debits the live price and adds one share.
	Buy Side = "BUY"
	// Sell credits the live price and removes one share.
	Sell Side = "SELL"
)

// ErrUnknownSide is returned for orders that are neither Buy nor Sell.
var ErrUnknownSide = errors.New("unknown order side")

// Order is a request to trade one share of Symbol.
type Order struct {
	Symbol string
	Side   Side
}

// Fill records a settled trade.
type Fill struct {
	ID           string
	Symbol       string
	Side         Side
	Qty          int64
	Price        int64
	BalanceAfter int64
	Ts           time.Time
}

// Settler applies orders against an account at the live price.
type Settler interface {
	Buy(symbol string) (Fill, error)
	Sell(symbol string) (Fill, error)
}

// Classifier maps a rejection to a short metrics label; ok is false for errors that are not warnings.
type Classifier func(err error) (reason string, ok bool)

// Executor submits orders to a Settler and logs and counts the result.
type Executor struct {
	log      zerolog.Logger
	settler  Settler
	classify Classifier
}

// NewExecutor wraps settler. classify may be nil, in which case every rejection is logged as an error.
func NewExecutor(log zerolog.Logger, settler Settler, classify Classifier) *Executor {
	return &Executor{log: log, settler: settler, classify: classify}
}

// Submit settles order and returns the resulting fill.
func (executor *Executor) Submit(order Order) (Fill, error) {
	var (
		fill Fill
		err  error
	)
	switch order.Side {
	case Buy:
		fill, err = executor.settler.Buy(order.Symbol)
	case Sell:
		fill, err = executor.settler.Sell(order.Symbol)
	default:
		err = ErrUnknownSide
	}

	if err != nil {
		reason, warning := "error", false
		if executor.classify != nil {
			if r, ok := executor.classify(err); ok {
				reason, warning = r, true
			}
		}
		metrics.RejectionsTotal.WithLabelValues(order.Symbol, string(order.Side), reason).Inc()
		ev := executor.log.Error()
		if warning {
			ev = executor.log.Warn()
		}
		ev.Err(err).Str("sym", order.Symbol).Str("side", string(order.Side)).Str("reason", reason).Msg("order rejected")
		return Fill{}, err
	}

	metrics.TradesTotal.WithLabelValues(fill.Symbol, string(fill.Side)).Inc()
	executor.log.Info().
		Str("id", fill.ID).
		Str("sym", fill.Symbol).
		Str("side", string(fill.Side)).
		Int64("px", fill.Price).
		Int64("balance", fill.BalanceAfter).
		Msg("order filled")
	return fill, nil
}
