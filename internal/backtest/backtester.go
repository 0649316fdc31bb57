// Package backtest replays a crossover signal stream against a rate series
// over a trailing window, simulating a single-position conversion strategy.
package backtest

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shekel-lab/ratewatch/internal/logger"
	"github.com/shekel-lab/ratewatch/internal/types"
	"github.com/shekel-lab/ratewatch/pkg/errors"
)

const (
	// DefaultWindowDays is the trailing backtest window.
	DefaultWindowDays = 30
	// DefaultInitialCapital is the starting ILS capital.
	DefaultInitialCapital = 1000
)

// Backtester simulates the strategy: on a buy signal while flat it converts
// the full ILS capital into USD at that day's rate; on a sell signal while
// long it converts back and realizes the profit; holds are no-ops. Any open
// position is force-closed at the final rate when the window ends.
type Backtester struct {
	windowDays     int
	initialCapital float64
	log            *logger.Logger
}

// NewBacktester creates a backtester over a trailing window of windowDays
// points with the given starting ILS capital.
func NewBacktester(windowDays int, initialCapital float64, log *logger.Logger) (*Backtester, error) {
	if windowDays <= 0 {
		return nil, errors.Newf(errors.ErrCodeBacktestConfigError,
			"window must be positive, got %d", windowDays)
	}

	if initialCapital <= 0 {
		return nil, errors.Newf(errors.ErrCodeBacktestConfigError,
			"initial capital must be positive, got %v", initialCapital)
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Backtester{
		windowDays:     windowDays,
		initialCapital: initialCapital,
		log:            log,
	}, nil
}

// NewDefaultBacktester creates the 30-day, 1000 ILS backtester the dashboard uses.
func NewDefaultBacktester(log *logger.Logger) *Backtester {
	backtester, err := NewBacktester(DefaultWindowDays, DefaultInitialCapital, log)
	if err != nil {
		// Unreachable with the package constants.
		panic(err)
	}

	return backtester
}

// Run replays the signals against the trailing window of the series. The
// series must already satisfy the series invariants; Run validates it and
// refuses malformed input before any simulation. A series shorter than the
// window degrades to the available points and flags the result as partial.
func (b *Backtester) Run(series types.RateSeries, signals []types.Signal) (types.BacktestResult, error) {
	if err := series.Validate(); err != nil {
		return types.BacktestResult{}, err
	}

	if len(series) == 0 {
		return types.BacktestResult{}, errors.New(errors.ErrCodeBacktestNoSeries,
			"cannot backtest an empty series")
	}

	window := series.Tail(b.windowDays)
	partial := len(series) < b.windowDays

	signalAt := make(map[int64]types.Signal, len(signals))
	for _, sig := range signals {
		signalAt[sig.Time.UnixNano()] = sig
	}

	result := types.BacktestResult{
		ID:             uuid.NewString(),
		Timestamp:      time.Now().UTC(),
		Pair:           types.Pair,
		InitialCapital: b.initialCapital,
		WindowDays:     len(window),
		PartialWindow:  partial,
		EquityCurve:    make([]float64, 0, len(window)),
	}

	state := positionState{
		capital: decimal.NewFromFloat(b.initialCapital),
	}

	peak := b.initialCapital
	maxDrawdown := 0.0

	for _, point := range window {
		sig, ok := signalAt[point.Time.UnixNano()]
		if ok {
			switch sig.Type {
			case types.SignalTypeBuy:
				if trade, opened := state.open(point); opened {
					result.Trades = append(result.Trades, trade)
				}
			case types.SignalTypeSell:
				if trade, closed := state.close(point, false); closed {
					result.Trades = append(result.Trades, trade)
					b.recordClose(&result, trade)
				}
			case types.SignalTypeHold:
				// no-op
			}
		}

		equity := state.equity(point.Rate)
		result.EquityCurve = append(result.EquityCurve, equity)

		if equity > peak {
			peak = equity
		}

		if peak > 0 {
			if drawdown := (peak - equity) / peak; drawdown > maxDrawdown {
				maxDrawdown = drawdown
			}
		}
	}

	// Mark-to-market: any open position closes at the final rate.
	if trade, closed := state.close(window[len(window)-1], true); closed {
		result.Trades = append(result.Trades, trade)
		b.recordClose(&result, trade)
	}

	finalCapital, _ := state.capital.Float64()
	result.FinalCapital = finalCapital
	result.ROI = finalCapital/b.initialCapital - 1
	result.MaxDrawdown = maxDrawdown

	if result.TradeResult.NumberOfTrades > 0 {
		result.TradeResult.WinRate =
			float64(result.TradeResult.NumberOfWinningTrades) / float64(result.TradeResult.NumberOfTrades)
	}

	return result, nil
}

func (b *Backtester) recordClose(result *types.BacktestResult, trade types.Trade) {
	result.TradeResult.NumberOfTrades++

	switch {
	case trade.PnL > 0:
		result.TradeResult.NumberOfWinningTrades++
	case trade.PnL < 0:
		result.TradeResult.NumberOfLosingTrades++
	}
}

// positionState is the {Flat, Long} state machine. Flat holds ILS capital;
// Long holds a USD amount bought with the full capital.
type positionState struct {
	state     types.PositionState
	capital   decimal.Decimal // ILS while flat
	usd       decimal.Decimal // USD while long
	entryILS  decimal.Decimal
}

func (p *positionState) isLong() bool {
	return p.state == types.PositionLong
}

// open converts the full capital into USD. Buys while already long are ignored.
func (p *positionState) open(point types.RatePoint) (types.Trade, bool) {
	if p.isLong() {
		return types.Trade{}, false
	}

	rate := decimal.NewFromFloat(point.Rate)
	usd := p.capital.Div(rate)

	entryILS := p.capital
	p.usd = usd
	p.entryILS = entryILS
	p.capital = decimal.Zero
	p.state = types.PositionLong

	amountUSD, _ := usd.Float64()
	amountILS, _ := entryILS.Float64()

	return types.Trade{
		Time:      point.Time,
		Action:    types.TradeActionBuy,
		Rate:      point.Rate,
		AmountUSD: amountUSD,
		AmountILS: amountILS,
	}, true
}

// close converts the USD position back into ILS. Sells while flat are ignored.
func (p *positionState) close(point types.RatePoint, forced bool) (types.Trade, bool) {
	if !p.isLong() {
		return types.Trade{}, false
	}

	rate := decimal.NewFromFloat(point.Rate)
	proceeds := p.usd.Mul(rate)
	pnl, _ := proceeds.Sub(p.entryILS).Float64()

	amountUSD, _ := p.usd.Float64()
	amountILS, _ := proceeds.Float64()

	p.capital = proceeds
	p.usd = decimal.Zero
	p.entryILS = decimal.Zero
	p.state = types.PositionFlat

	return types.Trade{
		Time:      point.Time,
		Action:    types.TradeActionSell,
		Rate:      point.Rate,
		AmountUSD: amountUSD,
		AmountILS: amountILS,
		PnL:       pnl,
		Forced:    forced,
	}, true
}

// equity marks the current holdings to the given rate, in ILS.
func (p *positionState) equity(rate float64) float64 {
	if p.isLong() {
		value, _ := p.usd.Mul(decimal.NewFromFloat(rate)).Float64()
		return value
	}

	value, _ := p.capital.Float64()

	return value
}
