// Package signal standardizes payloads shared between the market simulator and its consumers.
package signal

import "time"

// Tick reports the price an instrument reached after one market step.
type Tick struct {
	Symbol string
	Price  int64
	Prev   int64
	Seq    uint64 // steps applied to this instrument so far
	Ts     time.Time
}

// Change is the price move this tick applied.
func (t Tick) Change() int64 { return t.Price - t.Prev }
