package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeAction is the direction of a simulated trade.
type TradeAction string

const (
	// TradeActionBuy converts the full ILS capital into USD at that day's rate.
	TradeActionBuy TradeAction = "buy"
	// TradeActionSell converts the USD position back into ILS at that day's rate.
	TradeActionSell TradeAction = "sell"
)

// Trade is a single executed simulated conversion.
type Trade struct {
	// Time is when the trade was executed.
	Time time.Time `json:"time" yaml:"time"`
	// Action is the trade direction.
	Action TradeAction `json:"action" yaml:"action"`
	// Rate is the USD/ILS rate the trade executed at.
	Rate float64 `json:"rate" yaml:"rate"`
	// AmountUSD is the USD leg of the conversion.
	AmountUSD float64 `json:"amount_usd" yaml:"amount_usd"`
	// AmountILS is the ILS leg of the conversion.
	AmountILS float64 `json:"amount_ils" yaml:"amount_ils"`
	// PnL is the realized profit in ILS. Zero for buy trades; for a sell it is
	// the difference between the ILS proceeds and the ILS spent on the entry.
	PnL float64 `json:"pnl" yaml:"pnl"`
	// Forced marks a position closed at window end rather than by a sell signal.
	Forced bool `json:"forced" yaml:"forced"`
}

// PositionState is the backtester position state machine: Flat or Long.
type PositionState string

const (
	PositionFlat PositionState = "flat"
	PositionLong PositionState = "long"
)

// RoundTrip pairs an entry with its exit.
type RoundTrip struct {
	Entry Trade `json:"entry" yaml:"entry"`
	Exit  Trade `json:"exit" yaml:"exit"`
}

// PnL computes the realized ILS profit of the round trip. The USD bought at
// entry is valued at the exit rate; the decimal arithmetic mirrors how the
// trade legs themselves are computed.
func (r RoundTrip) PnL() float64 {
	entryILS := decimal.NewFromFloat(r.Entry.AmountILS)
	exitILS := decimal.NewFromFloat(r.Entry.AmountUSD).Mul(decimal.NewFromFloat(r.Exit.Rate))

	pnl, _ := exitILS.Sub(entryILS).Float64()

	return pnl
}

// Win reports whether the round trip closed with positive profit.
func (r RoundTrip) Win() bool {
	return r.PnL() > 0
}
