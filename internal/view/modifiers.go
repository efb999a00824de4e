package view

import "github.com/johnsiilver/boutique"

// Modifiers is a boutique.Modifiers made up of all Modifier(s) in this file.
var Modifiers = boutique.NewModifiers(Selection, Quoting, Accounting, Noticing)

// Selection handles ActSelect.
func Selection(state interface{}, action boutique.Action) interface{} {
	s := state.(State)
	if action.Type == ActSelect {
		s.Selected = action.Update.(string)
	}
	return s
}

// Quoting handles ActQuotes. The quotes map and order slice are rebuilt, never edited in place.
func Quoting(state interface{}, action boutique.Action) interface{} {
	s := state.(State)
	if action.Type != ActQuotes {
		return s
	}
	quotes := action.Update.([]Quote)

	to := make(map[string]Quote, len(s.Quotes)+len(quotes))
	for k, v := range s.Quotes {
		to[k] = v
	}
	order := make([]string, len(s.Order), len(s.Order)+len(quotes))
	copy(order, s.Order)
	for _, q := range quotes {
		if _, ok := to[q.Symbol]; !ok {
			order = append(order, q.Symbol)
		}
		history := make([]int64, len(q.History))
		copy(history, q.History)
		q.History = history
		to[q.Symbol] = q
	}
	s.Quotes = to
	s.Order = order
	return s
}

// Accounting handles ActAccount.
func Accounting(state interface{}, action boutique.Action) interface{} {
	s := state.(State)
	if action.Type != ActAccount {
		return s
	}
	acct := action.Update.(Account)
	holdings := make(map[string]int64, len(acct.Holdings))
	for k, v := range acct.Holdings {
		holdings[k] = v
	}
	s.Balance = acct.Balance
	s.Holdings = holdings
	return s
}

// Noticing handles ActNotice.
func Noticing(state interface{}, action boutique.Action) interface{} {
	s := state.(State)
	if action.Type == ActNotice {
		s.Notice = action.Update.(string)
	}
	return s
}
