package ratesource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/shekel-lab/ratewatch/pkg/errors"
)

type OpenERAPITestSuite struct {
	suite.Suite

	upstream *mockUpstream
	source   *OpenERAPI
}

func TestOpenERAPISuite(t *testing.T) {
	suite.Run(t, new(OpenERAPITestSuite))
}

func (suite *OpenERAPITestSuite) SetupTest() {
	suite.upstream = newMockUpstream()
	suite.source = NewOpenERAPI(suite.upstream.URL())
}

func (suite *OpenERAPITestSuite) TearDownTest() {
	suite.upstream.Close()
}

func (suite *OpenERAPITestSuite) TestFetchLatest() {
	point, err := suite.source.FetchLatest(context.Background())
	suite.NoError(err)
	suite.InDelta(3.09, point.Rate, 1e-9)
	suite.Equal(time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC), point.Time)
}

func (suite *OpenERAPITestSuite) TestFetchLatestServerError() {
	suite.upstream.erapiDown = true

	_, err := suite.source.FetchLatest(context.Background())
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeSourceUnavailable))
}

func (suite *OpenERAPITestSuite) TestFetchHistoryUnsupported() {
	_, err := suite.source.FetchHistory(context.Background(), 30)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeHistoryUnsupported))
}

func (suite *OpenERAPITestSuite) TestName() {
	suite.Equal("ExchangeRate-API", suite.source.Name())
}
