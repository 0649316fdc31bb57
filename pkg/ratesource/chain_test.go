package ratesource_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/shekel-lab/ratewatch/internal/logger"
	"github.com/shekel-lab/ratewatch/internal/types"
	"github.com/shekel-lab/ratewatch/mocks"
	"github.com/shekel-lab/ratewatch/pkg/errors"
	"github.com/shekel-lab/ratewatch/pkg/ratesource"
)

type ChainTestSuite struct {
	suite.Suite

	ctrl *gomock.Controller
}

func TestChainSuite(t *testing.T) {
	suite.Run(t, new(ChainTestSuite))
}

func (suite *ChainTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
}

func (suite *ChainTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *ChainTestSuite) point(rate float64) types.RatePoint {
	return types.RatePoint{
		Time: time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
		Rate: rate,
	}
}

func (suite *ChainTestSuite) TestNewChainRequiresSources() {
	_, err := ratesource.NewChain(logger.NewNopLogger())
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *ChainTestSuite) TestFetchLatestFirstSourceWins() {
	primary := mocks.NewMockSource(suite.ctrl)
	primary.EXPECT().FetchLatest(gomock.Any()).Return(suite.point(3.09), nil)
	primary.EXPECT().Name().Return("primary").AnyTimes()

	// The backup must never be consulted when the primary succeeds
	backup := mocks.NewMockSource(suite.ctrl)
	backup.EXPECT().Name().Return("backup").AnyTimes()

	chain, err := ratesource.NewChain(logger.NewNopLogger(), primary, backup)
	suite.Require().NoError(err)

	point, name, err := chain.FetchLatest(context.Background())
	suite.NoError(err)
	suite.Equal("primary", name)
	suite.InDelta(3.09, point.Rate, 1e-9)
}

func (suite *ChainTestSuite) TestFetchLatestFallsBack() {
	primary := mocks.NewMockSource(suite.ctrl)
	primary.EXPECT().FetchLatest(gomock.Any()).
		Return(types.RatePoint{}, errors.New(errors.ErrCodeSourceUnavailable, "down"))
	primary.EXPECT().Name().Return("primary").AnyTimes()

	backup := mocks.NewMockSource(suite.ctrl)
	backup.EXPECT().FetchLatest(gomock.Any()).Return(suite.point(3.10), nil)
	backup.EXPECT().Name().Return("backup").AnyTimes()

	chain, err := ratesource.NewChain(logger.NewNopLogger(), primary, backup)
	suite.Require().NoError(err)

	point, name, err := chain.FetchLatest(context.Background())
	suite.NoError(err)
	suite.Equal("backup", name)
	suite.InDelta(3.10, point.Rate, 1e-9)
}

func (suite *ChainTestSuite) TestFetchLatestAllFail() {
	primary := mocks.NewMockSource(suite.ctrl)
	primary.EXPECT().FetchLatest(gomock.Any()).
		Return(types.RatePoint{}, errors.New(errors.ErrCodeSourceUnavailable, "down"))
	primary.EXPECT().Name().Return("primary").AnyTimes()

	backup := mocks.NewMockSource(suite.ctrl)
	backup.EXPECT().FetchLatest(gomock.Any()).
		Return(types.RatePoint{}, errors.New(errors.ErrCodeSourceUnavailable, "also down"))
	backup.EXPECT().Name().Return("backup").AnyTimes()

	chain, err := ratesource.NewChain(logger.NewNopLogger(), primary, backup)
	suite.Require().NoError(err)

	_, _, err = chain.FetchLatest(context.Background())
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeAllSourcesFailed))
}

func (suite *ChainTestSuite) TestFetchHistorySkipsUnsupportedSources() {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	history := types.RateSeries{
		{Time: start, Rate: 3.08},
		{Time: start.AddDate(0, 0, 1), Rate: 3.09},
	}

	// First source only serves the latest rate
	latestOnly := mocks.NewMockSource(suite.ctrl)
	latestOnly.EXPECT().FetchHistory(gomock.Any(), 30).
		Return(nil, errors.New(errors.ErrCodeHistoryUnsupported, "no history"))
	latestOnly.EXPECT().Name().Return("latest-only").AnyTimes()

	historical := mocks.NewMockSource(suite.ctrl)
	historical.EXPECT().FetchHistory(gomock.Any(), 30).Return(history, nil)
	historical.EXPECT().Name().Return("historical").AnyTimes()

	chain, err := ratesource.NewChain(logger.NewNopLogger(), latestOnly, historical)
	suite.Require().NoError(err)

	series, name, err := chain.FetchHistory(context.Background(), 30)
	suite.NoError(err)
	suite.Equal("historical", name)
	suite.Len(series, 2)
}

func (suite *ChainTestSuite) TestSources() {
	primary := mocks.NewMockSource(suite.ctrl)
	primary.EXPECT().Name().Return("primary").AnyTimes()

	backup := mocks.NewMockSource(suite.ctrl)
	backup.EXPECT().Name().Return("backup").AnyTimes()

	chain, err := ratesource.NewChain(logger.NewNopLogger(), primary, backup)
	suite.Require().NoError(err)
	suite.Equal([]string{"primary", "backup"}, chain.Sources())
}
