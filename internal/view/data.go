// Package view holds the presentation-facing copy of the simulator state in a
// boutique.Store. Readers get immutable snapshots and change notifications that
// never hold up the writer.
package view

// Quote is the displayed state of one instrument.
type Quote struct {
	Symbol  string
	Price   int64
	Prev    int64
	History []int64
	Seq     uint64
}

// Change is the move applied by the last tick.
func (q Quote) Change() int64 { return q.Price - q.Prev }

// State holds the data stored in the boutique.Store.
type State struct {
	// Selected is the highlighted instrument, "" when nothing is selected.
	Selected string
	// Order lists symbols in display order.
	Order []string
	// Quotes is keyed by symbol.
	Quotes map[string]Quote
	// Balance is the ledger cash balance.
	Balance int64
	// Holdings is the ledger share count per symbol.
	Holdings map[string]int64
	// Notice is the last warning shown to the user.
	Notice string
}

// Account is the ledger part of the state.
type Account struct {
	Balance  int64
	Holdings map[string]int64
}

// SelectedQuote returns the quote of the selected instrument.
func (s State) SelectedQuote() (Quote, bool) {
	if s.Selected == "" {
		return Quote{}, false
	}
	q, ok := s.Quotes[s.Selected]
	return q, ok
}
