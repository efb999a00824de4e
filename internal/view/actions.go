package view

import "github.com/johnsiilver/boutique"

const (
	// ActSelect changes the highlighted instrument.
	ActSelect = iota
	// ActQuotes replaces the displayed quotes.
	ActQuotes
	// ActAccount replaces balance and holdings.
	ActAccount
	// ActNotice sets or clears the user warning.
	ActNotice
)

// Select highlights symbol; "" clears the selection.
func Select(symbol string) boutique.Action {
	return boutique.Action{Type: ActSelect, Update: symbol}
}

// Quotes publishes the latest completed tick of every instrument.
func Quotes(quotes []Quote) boutique.Action {
	return boutique.Action{Type: ActQuotes, Update: quotes}
}

// SetAccount publishes the latest ledger state.
func SetAccount(balance int64, holdings map[string]int64) boutique.Action {
	return boutique.Action{Type: ActAccount, Update: Account{Balance: balance, Holdings: holdings}}
}

// Notify sets the warning text shown to the user.
func Notify(text string) boutique.Action {
	return boutique.Action{Type: ActNotice, Update: text}
}
