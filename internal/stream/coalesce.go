package stream

import "github.com/johnsiilver/boutique"

// latest drains any signals already queued behind sig and returns the newest.
func latest(ch chan boutique.Signal, sig boutique.Signal) boutique.Signal {
	for {
		select {
		case next, ok := <-ch:
			if !ok {
				return sig
			}
			sig = next
		default:
			return sig
		}
	}
}
