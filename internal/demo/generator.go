// Package demo produces synthetic USD/ILS rate series for the dashboard's
// last-resort demo mode and for tests that need realistic data.
package demo

import (
	"math"
	"math/rand"
	"time"

	"github.com/shekel-lab/ratewatch/internal/types"
)

// Generator generates realistic daily rate series.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator creates a new Generator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GeneratorConfig configures how rate series are generated.
type GeneratorConfig struct {
	// StartTime is the date of the first observation
	StartTime time.Time
	// Count is the number of daily points to generate
	Count int
	// InitialRate is the starting USD/ILS rate
	InitialRate float64
	// Volatility controls daily movement (0.005 = 0.5% typical daily move)
	Volatility float64
	// Trend is the drift factor across the whole series (-0.05 to 0.05)
	Trend float64
}

// DefaultConfig returns a configuration resembling recent USD/ILS behavior.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		StartTime:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Count:       30,
		InitialRate: 3.09,
		Volatility:  0.004,
		Trend:       0.0,
	}
}

// Generate creates a rate series based on the configuration. Rates follow a
// geometric Brownian motion model for realistic movements.
func (g *Generator) Generate(config GeneratorConfig) types.RateSeries {
	series := make(types.RateSeries, config.Count)
	currentRate := config.InitialRate
	currentTime := config.StartTime

	for i := 0; i < config.Count; i++ {
		// Box-Muller transform for a normally distributed daily move
		u1 := g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)

		drift := config.Trend / float64(config.Count)

		next := currentRate * (1 + config.Volatility*z + drift)
		if next <= 0 {
			next = currentRate * 0.99
		}

		series[i] = types.RatePoint{
			Time: currentTime,
			Rate: next,
		}

		currentRate = next
		currentTime = currentTime.AddDate(0, 0, 1)
	}

	return series
}

// Series returns the deterministic demo-mode series shown when every source
// and the cache have failed: a slight trend plus small waves around a
// realistic base rate.
func Series(days int) types.RateSeries {
	const baseRate = 3.09

	start := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -days)
	series := make(types.RateSeries, days)

	for i := 0; i < days; i++ {
		trend := 0.0005 * float64(i-days/2)
		wave := 0.01 * float64(i%5-2) / 2

		series[i] = types.RatePoint{
			Time: start.AddDate(0, 0, i),
			Rate: math.Round((baseRate+trend+wave)*10000) / 10000,
		}
	}

	return series
}
