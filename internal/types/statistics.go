package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type TradeResult struct {
	// Count of closed trades.
	NumberOfTrades int `yaml:"number_of_trades" json:"number_of_trades"`
	// Count of closed trades with positive pnl.
	NumberOfWinningTrades int `yaml:"number_of_winning_trades" json:"number_of_winning_trades"`
	// Count of closed trades with negative pnl.
	NumberOfLosingTrades int `yaml:"number_of_losing_trades" json:"number_of_losing_trades"`
	// Win rate. Zero when no trades closed.
	WinRate float64 `yaml:"win_rate" json:"win_rate"`
}

// BacktestResult is the outcome of one backtest run over an immutable series.
type BacktestResult struct {
	// ID is the unique identifier for this backtest run.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when this backtest run was executed.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	// Pair is the currency pair backtested.
	Pair string `yaml:"pair" json:"pair"`
	// ROI is (final capital / initial capital) - 1.
	ROI float64 `yaml:"roi" json:"roi"`
	// MaxDrawdown is the largest peak-to-trough decline of the running equity
	// curve, as a fraction of the peak.
	MaxDrawdown float64 `yaml:"max_drawdown" json:"max_drawdown"`
	// TradeResult aggregates closed-trade counts and the win rate.
	TradeResult TradeResult `yaml:"trade_result" json:"trade_result"`
	// InitialCapital is the ILS capital the run started with.
	InitialCapital float64 `yaml:"initial_capital" json:"initial_capital"`
	// FinalCapital is the mark-to-market ILS capital at window end.
	FinalCapital float64 `yaml:"final_capital" json:"final_capital"`
	// WindowDays is the number of points the run actually covered.
	WindowDays int `yaml:"window_days" json:"window_days"`
	// PartialWindow is set when fewer points than the configured window were
	// available and the run degraded to the points on hand.
	PartialWindow bool `yaml:"partial_window" json:"partial_window"`
	// Trades lists every executed trade in order.
	Trades []Trade `yaml:"trades" json:"trades"`
	// EquityCurve is the running ILS equity, one value per processed point.
	EquityCurve []float64 `yaml:"equity_curve" json:"equity_curve"`
}

// WriteResult persists a backtest result to a YAML file.
func WriteResult(path string, result BacktestResult) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal backtest result to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write backtest result to file: %w", err)
	}

	return nil
}
