// Package signal computes moving-average crossover signals over a daily
// exchange-rate series.
package signal

import (
	"fmt"
	"iter"

	"github.com/shekel-lab/ratewatch/internal/types"
	"github.com/shekel-lab/ratewatch/pkg/errors"
)

const (
	// DefaultShortPeriod is the short rolling-average window in days.
	DefaultShortPeriod = 7
	// DefaultLongPeriod is the long rolling-average window in days.
	DefaultLongPeriod = 14
)

// Engine derives a crossover signal stream from a rate series. It emits one
// signal per point once longPeriod points of history exist: a buy when the
// short average crosses above the long average, a sell on the downward cross,
// and a hold otherwise. Ties never classify as a cross.
type Engine struct {
	shortPeriod int
	longPeriod  int
}

// NewEngine creates a crossover engine with the given window sizes.
func NewEngine(shortPeriod, longPeriod int) (*Engine, error) {
	if shortPeriod <= 0 || longPeriod <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod,
			"periods must be positive, got short=%d long=%d", shortPeriod, longPeriod)
	}

	if shortPeriod >= longPeriod {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod,
			"short period %d must be smaller than long period %d", shortPeriod, longPeriod)
	}

	return &Engine{
		shortPeriod: shortPeriod,
		longPeriod:  longPeriod,
	}, nil
}

// NewDefaultEngine creates the 7/14 engine the dashboard uses.
func NewDefaultEngine() *Engine {
	engine, err := NewEngine(DefaultShortPeriod, DefaultLongPeriod)
	if err != nil {
		// Unreachable with the package constants.
		panic(err)
	}

	return engine
}

// Name returns the name of the strategy.
func (e *Engine) Name() string {
	return fmt.Sprintf("SMA_Cross_%d_%d", e.shortPeriod, e.longPeriod)
}

// ShortPeriod returns the short rolling-average window.
func (e *Engine) ShortPeriod() int { return e.shortPeriod }

// LongPeriod returns the long rolling-average window.
func (e *Engine) LongPeriod() int { return e.longPeriod }

// Signals returns a lazy sequence of exactly max(0, len(series)-longPeriod+1)
// signals. A series shorter than the long window yields an empty sequence,
// not an error. The previous average pair at the first emittable point comes
// from the partial windows one point earlier (long average over all points so
// far), so a cross landing exactly on the first full window still fires.
func (e *Engine) Signals(series types.RateSeries) iter.Seq[types.Signal] {
	return func(yield func(types.Signal) bool) {
		if len(series) < e.longPeriod {
			return
		}

		var shortSum, longSum float64

		var prevShort, prevLong float64

		for i, point := range series {
			shortSum += point.Rate
			longSum += point.Rate

			if i >= e.shortPeriod {
				shortSum -= series[i-e.shortPeriod].Rate
			}

			if i >= e.longPeriod {
				longSum -= series[i-e.longPeriod].Rate
			}

			if i < e.longPeriod-1 {
				// Seed the previous pair from the partial windows right
				// before the first emission.
				if i == e.longPeriod-2 {
					prevShort = shortSum / float64(min(i+1, e.shortPeriod))
					prevLong = longSum / float64(i+1)
				}

				continue
			}

			shortMA := shortSum / float64(e.shortPeriod)
			longMA := longSum / float64(e.longPeriod)

			sig := types.Signal{
				Time:    point.Time,
				Type:    types.SignalTypeHold,
				Name:    e.Name(),
				Reason:  "no crossover",
				ShortMA: shortMA,
				LongMA:  longMA,
			}

			switch {
			case shortMA > longMA && prevShort <= prevLong:
				sig.Type = types.SignalTypeBuy
				sig.Reason = fmt.Sprintf("short average %.4f crossed above long average %.4f", shortMA, longMA)
			case shortMA < longMA && prevShort >= prevLong:
				sig.Type = types.SignalTypeSell
				sig.Reason = fmt.Sprintf("short average %.4f crossed below long average %.4f", shortMA, longMA)
			}

			prevShort, prevLong = shortMA, longMA

			if !yield(sig) {
				return
			}
		}
	}
}

// SignalsSlice materializes the signal sequence.
func (e *Engine) SignalsSlice(series types.RateSeries) []types.Signal {
	var signals []types.Signal
	for sig := range e.Signals(series) {
		signals = append(signals, sig)
	}

	return signals
}

// Averages returns the short and long rolling averages at the last point of
// the series. ok is false when the series is shorter than the long window.
func (e *Engine) Averages(series types.RateSeries) (shortMA float64, longMA float64, ok bool) {
	if len(series) < e.longPeriod {
		return 0, 0, false
	}

	rates := series.Rates()
	shortMA = mean(rates[len(rates)-e.shortPeriod:])
	longMA = mean(rates[len(rates)-e.longPeriod:])

	return shortMA, longMA, true
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}
