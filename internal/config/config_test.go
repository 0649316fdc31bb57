package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/shekel-lab/ratewatch/pkg/errors"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) TestDefaultConfigIsValid() {
	config := DefaultConfig()
	suite.NoError(config.Validate())

	suite.Equal(7, config.Signal.ShortPeriod)
	suite.Equal(14, config.Signal.LongPeriod)
	suite.Equal(30, config.Backtest.WindowDays)
	suite.InDelta(1000.0, config.Backtest.InitialCapital, 1e-9)
	suite.Equal([]string{"boi", "exchangerate_host", "open_er_api"}, config.Sources.Order)
	suite.Equal(900, config.Dashboard.RefreshSeconds)
}

func (suite *ConfigTestSuite) TestValidateRejectsNegativeRefresh() {
	_, err := ParseConfig(`
dashboard:
  refresh_seconds: -1
`)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestParseConfigOverridesDefaults() {
	config, err := ParseConfig(`
signal:
  short_period: 5
  long_period: 20
backtest:
  window_days: 60
`)
	suite.Require().NoError(err)

	suite.Equal(5, config.Signal.ShortPeriod)
	suite.Equal(20, config.Signal.LongPeriod)
	suite.Equal(60, config.Backtest.WindowDays)
	// Untouched sections keep their defaults
	suite.InDelta(1000.0, config.Backtest.InitialCapital, 1e-9)
}

func (suite *ConfigTestSuite) TestParseConfigRejectsInvalidYAML() {
	_, err := ParseConfig("signal: [broken")
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestValidateRejectsShortNotBelowLong() {
	_, err := ParseConfig(`
signal:
  short_period: 14
  long_period: 14
`)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestValidateRejectsUnknownSource() {
	_, err := ParseConfig(`
sources:
  order: ["boi", "telepathy"]
`)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestValidateRejectsNegativeCapital() {
	_, err := ParseConfig(`
backtest:
  initial_capital: -500
`)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestLoadConfigEmptyPathUsesDefaults() {
	config, err := LoadConfig("")
	suite.Require().NoError(err)
	suite.Equal(DefaultConfig(), *config)
}

func (suite *ConfigTestSuite) TestLoadConfigFromFile() {
	path := filepath.Join(suite.T().TempDir(), "config.yaml")
	suite.Require().NoError(os.WriteFile(path, []byte("sources:\n  order: [\"polygon\"]\n  polygon_api_key: test\n"), 0644))

	config, err := LoadConfig(path)
	suite.Require().NoError(err)
	suite.Equal([]string{"polygon"}, config.Sources.Order)
	suite.Equal("test", config.Sources.PolygonAPIKey)
}

func (suite *ConfigTestSuite) TestLoadConfigMissingFile() {
	_, err := LoadConfig(filepath.Join(suite.T().TempDir(), "absent.yaml"))
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestSchema() {
	schema, err := Schema()
	suite.Require().NoError(err)
	suite.Contains(schema, "short_period")
	suite.Contains(schema, "window_days")
	suite.Contains(schema, "polygon_api_key")
}
