// Package render draws simulator state as terminal text.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/olekukonko/tablewriter"

	"github.com/vladslugin987/stock-simulator/internal/execution"
	"github.com/vladslugin987/stock-simulator/internal/paper"
	"github.com/vladslugin987/stock-simulator/internal/view"
)

// Money formats whole currency units as USD, e.g. $1,000.00.
func Money(amount int64) string {
	return money.New(amount*100, money.USD).Display()
}

// Summary is the balance line followed by the non-zero holdings, in order.
func Summary(balance int64, holdings map[string]int64, order []string) string {
	parts := make([]string, 0, len(holdings))
	for _, sym := range order {
		if qty := holdings[sym]; qty > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", sym, qty))
		}
	}
	return fmt.Sprintf("Balance: %s\nPortfolio: %s", Money(balance), strings.Join(parts, ", "))
}

// Quotes writes one row per instrument and marks the selected one.
func Quotes(w io.Writer, st view.State) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"", "Symbol", "Price", "Change", "Held"})
	for _, sym := range st.Order {
		q := st.Quotes[sym]
		marker := ""
		if sym == st.Selected {
			marker = "*"
		}
		table.Append([]string{marker, sym, strconv.FormatInt(q.Price, 10), signed(q.Change()), strconv.FormatInt(st.Holdings[sym], 10)})
	}
	table.Render()
}

// Portfolio writes the held positions marked at live prices plus balance and equity.
func Portfolio(w io.Writer, snap paper.Snapshot, prices map[string]int64, order []string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Symbol", "Qty", "Price", "Value", "Unrealized"})
	for _, sym := range order {
		pos, ok := snap.Positions[sym]
		if !ok {
			continue
		}
		table.Append([]string{
			sym,
			strconv.FormatInt(pos.Qty, 10),
			strconv.FormatInt(prices[sym], 10),
			Money(pos.MarketValue),
			signed(pos.Unrealized),
		})
	}
	table.Render()
	fmt.Fprintf(w, "Balance: %s  Equity: %s  Realized: %s\n", Money(snap.Balance), Money(snap.Equity), signed(snap.Realized))
}

// Fills writes one row per trade, oldest first.
func Fills(w io.Writer, fills []execution.Fill) {
	if len(fills) == 0 {
		fmt.Fprintln(w, "no trades yet")
		return
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Time", "Side", "Symbol", "Price", "Balance"})
	for _, f := range fills {
		table.Append([]string{
			f.Ts.Format("15:04:05"),
			string(f.Side),
			f.Symbol,
			strconv.FormatInt(f.Price, 10),
			Money(f.BalanceAfter),
		})
	}
	table.Render()
}

var bars = []rune("▁▂▃▄▅▆▇█")

// History writes a one-line chart of the latest width prices with their range.
func History(w io.Writer, symbol string, history []int64, width int) {
	if len(history) == 0 {
		fmt.Fprintf(w, "%s: no data\n", symbol)
		return
	}
	if width > 0 && len(history) > width {
		history = history[len(history)-width:]
	}
	lo, hi := history[0], history[0]
	for _, p := range history {
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
	}
	var b strings.Builder
	span := hi - lo
	for _, p := range history {
		idx := 0
		if span > 0 {
			idx = int((p - lo) * int64(len(bars)-1) / span)
		}
		b.WriteRune(bars[idx])
	}
	fmt.Fprintf(w, "%s %s  last %d  low %d  high %d\n", symbol, b.String(), history[len(history)-1], lo, hi)
}

func signed(v int64) string {
	if v > 0 {
		return "+" + strconv.FormatInt(v, 10)
	}
	return strconv.FormatInt(v, 10)
}
