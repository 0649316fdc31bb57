package ratesource

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/shekel-lab/ratewatch/pkg/errors"
)

type PolygonTestSuite struct {
	suite.Suite
}

func TestPolygonSuite(t *testing.T) {
	suite.Run(t, new(PolygonTestSuite))
}

func (suite *PolygonTestSuite) TestNewPolygonRequiresAPIKey() {
	_, err := NewPolygon("")
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMissingParameter))
}

func (suite *PolygonTestSuite) TestName() {
	source, err := NewPolygon("test-key")
	suite.Require().NoError(err)
	suite.Equal("Polygon.io", source.Name())
}
