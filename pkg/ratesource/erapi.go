package ratesource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shekel-lab/ratewatch/internal/types"
	"github.com/shekel-lab/ratewatch/pkg/errors"
)

const defaultOpenERAPIURL = "https://open.er-api.com"

// OpenERAPI fetches the latest rate from the keyless open.er-api.com tier.
// Second backup in the chain; no history endpoint.
type OpenERAPI struct {
	baseURL    string
	httpClient *http.Client
}

// NewOpenERAPI creates the source. An empty baseURL uses the public
// endpoint; tests inject their own.
func NewOpenERAPI(baseURL string) *OpenERAPI {
	if baseURL == "" {
		baseURL = defaultOpenERAPIURL
	}

	return &OpenERAPI{
		baseURL:    baseURL,
		httpClient: newHTTPClient(),
	}
}

// Name implements Source.
func (o *OpenERAPI) Name() string {
	return "ExchangeRate-API"
}

type erapiResponse struct {
	Rates          map[string]float64 `json:"rates"`
	TimeLastUpdate string             `json:"time_last_update_utc"`
}

// FetchLatest implements Source.
func (o *OpenERAPI) FetchLatest(ctx context.Context) (types.RatePoint, error) {
	url := o.baseURL + "/v6/latest/USD"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return types.RatePoint{}, errors.Wrap(errors.ErrCodeSourceUnavailable, "failed to build request", err)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return types.RatePoint{}, errors.Wrap(errors.ErrCodeSourceUnavailable, "request to ExchangeRate-API failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.RatePoint{}, errors.Newf(errors.ErrCodeSourceUnavailable,
			"ExchangeRate-API returned status %d", resp.StatusCode)
	}

	var parsed erapiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return types.RatePoint{}, errors.Wrap(errors.ErrCodeSourceParseFailed, "failed to parse ExchangeRate-API JSON", err)
	}

	rate, ok := parsed.Rates["ILS"]
	if !ok {
		return types.RatePoint{}, errors.New(errors.ErrCodeSourceRateMissing,
			"ILS not present in ExchangeRate-API response")
	}

	if rate <= 0 {
		return types.RatePoint{}, errors.Newf(errors.ErrCodeSourceParseFailed,
			"ExchangeRate-API returned non-positive rate %v", rate)
	}

	// The upstream reports e.g. "Sat, 15 Feb 2026 00:00:01 +0000".
	point := types.RatePoint{Rate: rate}
	if t, err := parseRFC1123(parsed.TimeLastUpdate); err == nil {
		point.Time = t
	} else {
		point.Time = parseDate("")
	}

	return point, nil
}

// FetchHistory implements Source. The free tier has no history endpoint.
func (o *OpenERAPI) FetchHistory(_ context.Context, _ int) (types.RateSeries, error) {
	return nil, errors.New(errors.ErrCodeHistoryUnsupported,
		fmt.Sprintf("%s does not expose a history endpoint", o.Name()))
}
