package ratesource

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/shekel-lab/ratewatch/pkg/errors"
)

type ExchangeRateHostTestSuite struct {
	suite.Suite

	upstream *mockUpstream
	source   *ExchangeRateHost
}

func TestExchangeRateHostSuite(t *testing.T) {
	suite.Run(t, new(ExchangeRateHostTestSuite))
}

func (suite *ExchangeRateHostTestSuite) SetupTest() {
	suite.upstream = newMockUpstream()
	suite.source = NewExchangeRateHost(suite.upstream.URL())
}

func (suite *ExchangeRateHostTestSuite) TearDownTest() {
	suite.upstream.Close()
}

func (suite *ExchangeRateHostTestSuite) TestFetchLatest() {
	point, err := suite.source.FetchLatest(context.Background())
	suite.NoError(err)
	suite.InDelta(3.09, point.Rate, 1e-9)
}

func (suite *ExchangeRateHostTestSuite) TestFetchLatestServerError() {
	suite.upstream.erhDown = true

	_, err := suite.source.FetchLatest(context.Background())
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeSourceUnavailable))
}

func (suite *ExchangeRateHostTestSuite) TestFetchHistory() {
	series, err := suite.source.FetchHistory(context.Background(), 30)
	suite.NoError(err)
	suite.Len(series, 30)

	// Ordered oldest first and valid per the series invariants
	suite.NoError(series.Validate())
}

func (suite *ExchangeRateHostTestSuite) TestFetchHistoryInvalidDays() {
	_, err := suite.source.FetchHistory(context.Background(), 0)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *ExchangeRateHostTestSuite) TestFetchHistoryServerError() {
	suite.upstream.erhDown = true

	_, err := suite.source.FetchHistory(context.Background(), 30)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeSourceUnavailable))
}

func (suite *ExchangeRateHostTestSuite) TestName() {
	suite.Equal("ExchangeRate.host", suite.source.Name())
}
