package types

import (
	"time"

	"github.com/shekel-lab/ratewatch/pkg/errors"
)

// Pair is the currency pair this system tracks.
const Pair = "USDILS"

// RatePoint is a single daily exchange-rate observation.
type RatePoint struct {
	// Time is the calendar date of the observation.
	Time time.Time `json:"time" yaml:"time"`
	// Rate is the ILS price of one USD. Always positive.
	Rate float64 `json:"rate" yaml:"rate"`
}

// RateSeries is a chronologically ordered sequence of daily observations,
// one point per day, strictly increasing in time.
type RateSeries []RatePoint

// Validate checks the series invariants: strictly increasing timestamps and
// positive rates. It returns a coded validation error on the first violation
// so callers can reject malformed input before any computation runs.
func (s RateSeries) Validate() error {
	for i, p := range s {
		if p.Rate <= 0 {
			return errors.Newf(errors.ErrCodeNonPositiveRate,
				"rate at index %d (%s) is %v, must be positive",
				i, p.Time.Format("2006-01-02"), p.Rate)
		}

		if i > 0 && !s[i-1].Time.Before(p.Time) {
			return errors.Newf(errors.ErrCodeNonMonotonicSeries,
				"timestamp at index %d (%s) does not increase over previous point (%s)",
				i, p.Time.Format("2006-01-02"), s[i-1].Time.Format("2006-01-02"))
		}
	}

	return nil
}

// Rates extracts the raw rate values in series order.
func (s RateSeries) Rates() []float64 {
	rates := make([]float64, len(s))
	for i, p := range s {
		rates[i] = p.Rate
	}

	return rates
}

// Tail returns the trailing n points of the series, or the whole series when
// fewer than n points are available.
func (s RateSeries) Tail(n int) RateSeries {
	if n <= 0 || len(s) <= n {
		return s
	}

	return s[len(s)-n:]
}

// Last returns the most recent observation, if any.
func (s RateSeries) Last() (RatePoint, bool) {
	if len(s) == 0 {
		return RatePoint{}, false
	}

	return s[len(s)-1], true
}

// Min returns the lowest rate in the series, 0 for an empty series.
func (s RateSeries) Min() float64 {
	if len(s) == 0 {
		return 0
	}

	minRate := s[0].Rate
	for _, p := range s[1:] {
		if p.Rate < minRate {
			minRate = p.Rate
		}
	}

	return minRate
}

// Max returns the highest rate in the series, 0 for an empty series.
func (s RateSeries) Max() float64 {
	if len(s) == 0 {
		return 0
	}

	maxRate := s[0].Rate
	for _, p := range s[1:] {
		if p.Rate > maxRate {
			maxRate = p.Rate
		}
	}

	return maxRate
}
