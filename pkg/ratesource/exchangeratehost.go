package ratesource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/shekel-lab/ratewatch/internal/types"
	"github.com/shekel-lab/ratewatch/pkg/errors"
)

const defaultExchangeRateHostURL = "https://api.exchangerate.host"

// ExchangeRateHost fetches rates from the free exchangerate.host API. It is
// the only free source in the chain that serves a daily timeseries, which
// makes it the workhorse for history fetches.
type ExchangeRateHost struct {
	baseURL    string
	httpClient *http.Client
}

// NewExchangeRateHost creates the source. An empty baseURL uses the public
// endpoint; tests inject their own.
func NewExchangeRateHost(baseURL string) *ExchangeRateHost {
	if baseURL == "" {
		baseURL = defaultExchangeRateHostURL
	}

	return &ExchangeRateHost{
		baseURL:    baseURL,
		httpClient: newHTTPClient(),
	}
}

// Name implements Source.
func (e *ExchangeRateHost) Name() string {
	return "ExchangeRate.host"
}

type erhLatestResponse struct {
	Success bool               `json:"success"`
	Date    string             `json:"date"`
	Rates   map[string]float64 `json:"rates"`
}

type erhTimeseriesResponse struct {
	Success bool                          `json:"success"`
	Rates   map[string]map[string]float64 `json:"rates"`
}

// FetchLatest implements Source.
func (e *ExchangeRateHost) FetchLatest(ctx context.Context) (types.RatePoint, error) {
	url := fmt.Sprintf("%s/latest?base=USD&symbols=ILS", e.baseURL)

	var parsed erhLatestResponse
	if err := e.getJSON(ctx, url, &parsed); err != nil {
		return types.RatePoint{}, err
	}

	rate, ok := parsed.Rates["ILS"]
	if !parsed.Success || !ok {
		return types.RatePoint{}, errors.New(errors.ErrCodeSourceRateMissing,
			"ILS not present in ExchangeRate.host response")
	}

	if rate <= 0 {
		return types.RatePoint{}, errors.Newf(errors.ErrCodeSourceParseFailed,
			"ExchangeRate.host returned non-positive rate %v", rate)
	}

	return types.RatePoint{
		Time: parseDate(parsed.Date),
		Rate: rate,
	}, nil
}

// FetchHistory implements Source. Returns one observation per day the
// upstream has data for, oldest first.
func (e *ExchangeRateHost) FetchHistory(ctx context.Context, days int) (types.RateSeries, error) {
	if days <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "days must be positive, got %d", days)
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	url := fmt.Sprintf("%s/timeseries?start_date=%s&end_date=%s&base=USD&symbols=ILS",
		e.baseURL, start.Format("2006-01-02"), end.Format("2006-01-02"))

	var parsed erhTimeseriesResponse
	if err := e.getJSON(ctx, url, &parsed); err != nil {
		return nil, err
	}

	if !parsed.Success || len(parsed.Rates) == 0 {
		return nil, errors.New(errors.ErrCodeSourceRateMissing,
			"ExchangeRate.host timeseries had no data")
	}

	dates := make([]string, 0, len(parsed.Rates))
	for date := range parsed.Rates {
		dates = append(dates, date)
	}

	sort.Strings(dates)

	series := make(types.RateSeries, 0, len(dates))

	for _, date := range dates {
		rate, ok := parsed.Rates[date]["ILS"]
		if !ok || rate <= 0 {
			continue
		}

		series = append(series, types.RatePoint{
			Time: parseDate(date),
			Rate: rate,
		})
	}

	if len(series) == 0 {
		return nil, errors.New(errors.ErrCodeSourceRateMissing,
			"ExchangeRate.host timeseries had no ILS rates")
	}

	return series, nil
}

func (e *ExchangeRateHost) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeSourceUnavailable, "failed to build request", err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(errors.ErrCodeSourceUnavailable, "request to ExchangeRate.host failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Newf(errors.ErrCodeSourceUnavailable,
			"ExchangeRate.host returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(errors.ErrCodeSourceParseFailed, "failed to parse ExchangeRate.host JSON", err)
	}

	return nil
}
