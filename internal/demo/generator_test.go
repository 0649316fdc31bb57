package demo

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type GeneratorTestSuite struct {
	suite.Suite
}

func TestGeneratorSuite(t *testing.T) {
	suite.Run(t, new(GeneratorTestSuite))
}

func (suite *GeneratorTestSuite) TestGenerateValidSeries() {
	gen := NewGenerator(42)
	series := gen.Generate(DefaultConfig())

	suite.Len(series, 30)
	suite.NoError(series.Validate())
}

func (suite *GeneratorTestSuite) TestGenerateReproducible() {
	first := NewGenerator(7).Generate(DefaultConfig())
	second := NewGenerator(7).Generate(DefaultConfig())

	suite.Equal(first, second)
}

func (suite *GeneratorTestSuite) TestGenerateDifferentSeeds() {
	first := NewGenerator(1).Generate(DefaultConfig())
	second := NewGenerator(2).Generate(DefaultConfig())

	suite.NotEqual(first, second)
}

func (suite *GeneratorTestSuite) TestGenerateWithTrend() {
	config := DefaultConfig()
	config.Count = 250
	config.Volatility = 0.0001
	config.Trend = 0.05

	series := NewGenerator(42).Generate(config)
	suite.NoError(series.Validate())
	suite.Greater(series[len(series)-1].Rate, series[0].Rate)
}

func (suite *GeneratorTestSuite) TestDemoSeries() {
	series := Series(30)

	suite.Len(series, 30)
	suite.NoError(series.Validate())

	// Realistic USD/ILS neighborhood
	suite.Greater(series.Min(), 3.0)
	suite.Less(series.Max(), 3.2)

	// Deterministic
	suite.Equal(series.Rates(), Series(30).Rates())
}
