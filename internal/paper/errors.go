package paper

import (
	"errors"
	"fmt"

	"github.com/vladslugin987/stock-simulator/internal/execution"
	"github.com/vladslugin987/stock-simulator/internal/market"
)

// Warning-class rejections. They leave the ledger unchanged and are meant to be shown to the user.
var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNoHoldings          = errors.New("no holdings to sell")
	ErrNoSelection         = errors.New("no instrument selected")
	ErrUnknownSymbol       = market.ErrUnknownSymbol
)

// TradeError carries the context of a rejected buy or sell.
type TradeError struct {
	Err     error
	Symbol  string
	Side    execution.Side
	Price   int64
	Balance int64
	Held    int64
}

func (e *TradeError) Error() string {
	switch {
	case errors.Is(e.Err, ErrInsufficientBalance):
		return fmt.Sprintf("%s %s: %v (price %d, balance %d)", e.Side, e.Symbol, e.Err, e.Price, e.Balance)
	case errors.Is(e.Err, ErrNoHoldings):
		return fmt.Sprintf("%s %s: %v (held %d)", e.Side, e.Symbol, e.Err, e.Held)
	case e.Symbol == "":
		return fmt.Sprintf("%s: %v", e.Side, e.Err)
	default:
		return fmt.Sprintf("%s %s: %v", e.Side, e.Symbol, e.Err)
	}
}

func (e *TradeError) Unwrap() error { return e.Err }

var reasons = []struct {
	err    error
	reason string
}{
	{ErrInsufficientBalance, "insufficient_balance"},
	{ErrNoHoldings, "no_holdings"},
	{ErrNoSelection, "no_selection"},
	{ErrUnknownSymbol, "unknown_symbol"},
}

// Reason maps a warning-class rejection to a short label. It satisfies execution.Classifier.
func Reason(err error) (string, bool) {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason, true
		}
	}
	return "", false
}

// IsWarning reports whether err is a recoverable, user-facing rejection.
func IsWarning(err error) bool {
	_, ok := Reason(err)
	return ok
}

// Notice is the text shown to the user for a rejection.
func Notice(err error) string {
	var te *TradeError
	if !errors.As(err, &te) {
		if err == nil {
			return ""
		}
		return err.Error()
	}
	if errors.Is(te.Err, ErrUnknownSymbol) {
		return fmt.Sprintf("Unknown stock %q!", te.Symbol)
	}
	if te.Side == execution.Sell {
		return "You do not own this stock!"
	}
	return "Not enough balance to buy!"
}
