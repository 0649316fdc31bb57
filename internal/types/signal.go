package types

import "time"

type SignalType string

const (
	// SignalTypeBuy is a signal emitted when the short average crosses above the long average
	SignalTypeBuy SignalType = "buy"
	// SignalTypeSell is a signal emitted when the short average crosses below the long average
	SignalTypeSell SignalType = "sell"
	// SignalTypeHold is a signal emitted when no crossover occurred at this point
	SignalTypeHold SignalType = "hold"
)

type Signal struct {
	// Time is the time of the signal
	Time time.Time `json:"time" yaml:"time"`
	// Type is the type of the signal
	Type SignalType `json:"type" yaml:"type"`
	// Name is the name of the strategy that generated the signal
	Name string `json:"name" yaml:"name"`
	// Reason is the reason for the signal
	Reason string `json:"reason" yaml:"reason"`
	// ShortMA is the short moving average at the signal's point
	ShortMA float64 `json:"short_ma" yaml:"short_ma"`
	// LongMA is the long moving average at the signal's point
	LongMA float64 `json:"long_ma" yaml:"long_ma"`
}
