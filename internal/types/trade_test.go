package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type TradeTestSuite struct {
	suite.Suite
}

func TestTradeSuite(t *testing.T) {
	suite.Run(t, new(TradeTestSuite))
}

func (suite *TradeTestSuite) TestRoundTripPnLPositive() {
	// Buy 1000 ILS worth of USD at 3.50, exit at 3.60
	entry := Trade{
		Time:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Action:    TradeActionBuy,
		Rate:      3.50,
		AmountILS: 1000,
		AmountUSD: 1000 / 3.50,
	}
	exit := Trade{
		Time:      time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		Action:    TradeActionSell,
		Rate:      3.60,
		AmountUSD: entry.AmountUSD,
		AmountILS: entry.AmountUSD * 3.60,
	}

	rt := RoundTrip{Entry: entry, Exit: exit}
	suite.InDelta(1000*(3.60/3.50-1), rt.PnL(), 1e-9)
	suite.True(rt.Win())
}

func (suite *TradeTestSuite) TestRoundTripPnLNegative() {
	entry := Trade{Action: TradeActionBuy, Rate: 3.60, AmountILS: 1000, AmountUSD: 1000 / 3.60}
	exit := Trade{Action: TradeActionSell, Rate: 3.50, AmountUSD: entry.AmountUSD, AmountILS: entry.AmountUSD * 3.50}

	rt := RoundTrip{Entry: entry, Exit: exit}
	suite.Less(rt.PnL(), 0.0)
	suite.False(rt.Win())
}

func (suite *TradeTestSuite) TestRoundTripPnLFlat() {
	entry := Trade{Action: TradeActionBuy, Rate: 3.50, AmountILS: 1000, AmountUSD: 1000 / 3.50}
	exit := Trade{Action: TradeActionSell, Rate: 3.50, AmountUSD: entry.AmountUSD, AmountILS: 1000}

	rt := RoundTrip{Entry: entry, Exit: exit}
	suite.InDelta(0, rt.PnL(), 1e-9)
	suite.False(rt.Win())
}

func (suite *TradeTestSuite) TestPositionStateConstants() {
	suite.Equal(PositionState("flat"), PositionFlat)
	suite.Equal(PositionState("long"), PositionLong)
}

func (suite *TradeTestSuite) TestSignalTypeConstants() {
	suite.Equal(SignalType("buy"), SignalTypeBuy)
	suite.Equal(SignalType("sell"), SignalTypeSell)
	suite.Equal(SignalType("hold"), SignalTypeHold)
}
