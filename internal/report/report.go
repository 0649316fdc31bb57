// Package report assembles the analysis snapshot shown by the CLI and the
// dashboard: current rate, moving averages, recommendation and the trailing
// backtest summary.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/shekel-lab/ratewatch/internal/types"
)

// Snapshot is everything one refresh produced, ready for rendering.
type Snapshot struct {
	GeneratedAt time.Time
	Pair        string

	// SourceName labels where the data came from. Stale marks a snapshot
	// served from the local cache, Demo one built from generated data.
	SourceName string
	Stale      bool
	CacheAge   time.Duration
	Demo       bool

	Current   types.RatePoint
	PrevClose float64

	// HaveAverages is false when the series is too short for the long
	// moving average.
	HaveAverages bool
	ShortMA      float64
	LongMA       float64

	Min float64
	Max float64

	Recommendation types.SignalType
	Reason         string

	// Window is the series the backtest ran over, oldest first.
	Window types.RateSeries

	Signals  []types.Signal
	Backtest *types.BacktestResult
}

// DailyChange returns the fractional change against the previous close, and
// false when no previous close is known.
func (s *Snapshot) DailyChange() (float64, bool) {
	if s.PrevClose == 0 {
		return 0, false
	}

	return s.Current.Rate/s.PrevClose - 1, true
}

// RecentTrades returns the last count trades of the backtest, newest last.
func (s *Snapshot) RecentTrades(count int) []types.Trade {
	if s.Backtest == nil || len(s.Backtest.Trades) == 0 {
		return nil
	}

	trades := s.Backtest.Trades
	if len(trades) > count {
		trades = trades[len(trades)-count:]
	}

	return trades
}

// RecentRates returns the last count points of the backtest window, newest
// last, for the history table.
func (s *Snapshot) RecentRates(count int) types.RateSeries {
	if len(s.Window) == 0 {
		return nil
	}

	points := s.Window
	if len(points) > count {
		points = points[len(points)-count:]
	}

	return points
}

// Render produces the plain-text report written by the analyze command.
func Render(s *Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s exchange rate report\n", s.Pair)
	fmt.Fprintf(&b, "Generated: %s\n\n", s.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"))

	fmt.Fprintf(&b, "Current rate:   %.4f (%s)\n", s.Current.Rate, s.Current.Time.Format("2006-01-02"))
	fmt.Fprintf(&b, "Data source:    %s%s\n", s.SourceName, sourceSuffix(s))

	if change, ok := s.DailyChange(); ok {
		fmt.Fprintf(&b, "Previous close: %.4f\n", s.PrevClose)
		fmt.Fprintf(&b, "Daily change:   %+.2f%%\n", change*100)
	}

	b.WriteString("\n")

	if s.HaveAverages {
		fmt.Fprintf(&b, "7-day average:  %.4f\n", s.ShortMA)
		fmt.Fprintf(&b, "14-day average: %.4f\n", s.LongMA)
	} else {
		b.WriteString("Moving averages: insufficient history\n")
	}

	fmt.Fprintf(&b, "Range:          %.4f - %.4f\n\n", s.Min, s.Max)

	fmt.Fprintf(&b, "Recommendation: %s\n", strings.ToUpper(string(s.Recommendation)))

	if s.Reason != "" {
		fmt.Fprintf(&b, "Reason:         %s\n", s.Reason)
	}

	if s.Backtest != nil {
		renderBacktest(&b, s)
	}

	return b.String()
}

func sourceSuffix(s *Snapshot) string {
	switch {
	case s.Demo:
		return " (demo data)"
	case s.Stale:
		return fmt.Sprintf(" (cached, %s old)", s.CacheAge.Round(time.Minute))
	default:
		return ""
	}
}

func renderBacktest(b *strings.Builder, s *Snapshot) {
	result := s.Backtest

	fmt.Fprintf(b, "\nBacktest (%d-day window", result.WindowDays)

	if result.PartialWindow {
		fmt.Fprintf(b, ", only %d points available", len(result.EquityCurve))
	}

	b.WriteString(")\n")

	fmt.Fprintf(b, "  Return:       %+.2f%%\n", result.ROI*100)
	fmt.Fprintf(b, "  Max drawdown: %.2f%%\n", result.MaxDrawdown*100)
	fmt.Fprintf(b, "  Trades:       %d", result.TradeResult.NumberOfTrades)

	if result.TradeResult.NumberOfTrades > 0 {
		fmt.Fprintf(b, " (win rate %.0f%%)", result.TradeResult.WinRate*100)
	}

	b.WriteString("\n")

	trades := s.RecentTrades(5)
	if len(trades) == 0 {
		return
	}

	b.WriteString("\nRecent trades\n")

	for _, trade := range trades {
		fmt.Fprintf(b, "  %s  %-4s @ %.4f", trade.Time.Format("2006-01-02"),
			strings.ToUpper(string(trade.Action)), trade.Rate)

		if trade.Action == types.TradeActionSell {
			fmt.Fprintf(b, "  pnl %+.2f", trade.PnL)

			if trade.Forced {
				b.WriteString("  (window close)")
			}
		}

		b.WriteString("\n")
	}
}
