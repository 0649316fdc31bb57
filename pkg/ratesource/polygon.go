package ratesource

import (
	"context"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/schollz/progressbar/v3"

	"github.com/shekel-lab/ratewatch/internal/types"
	"github.com/shekel-lab/ratewatch/pkg/errors"
)

// polygonTicker is the Polygon forex ticker for USD/ILS.
const polygonTicker = "C:USDILS"

// Polygon fetches USD/ILS forex aggregates from Polygon.io. It is the only
// chain source that needs an API key, so it sits last in the default order
// and is skipped entirely when no key is configured.
type Polygon struct {
	client       *polygon.Client
	showProgress bool
}

// NewPolygon creates the source from an API key.
func NewPolygon(apiKey string) (*Polygon, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "polygon requires an API key")
	}

	return &Polygon{
		client:       polygon.New(apiKey),
		showProgress: false,
	}, nil
}

// ShowProgress enables a terminal progress bar during history downloads.
func (p *Polygon) ShowProgress(enabled bool) {
	p.showProgress = enabled
}

// Name implements Source.
func (p *Polygon) Name() string {
	return "Polygon.io"
}

// FetchLatest implements Source using the previous-close aggregate.
func (p *Polygon) FetchLatest(ctx context.Context) (types.RatePoint, error) {
	params := models.GetPreviousCloseAggParams{
		Ticker: polygonTicker,
	}

	resp, err := p.client.GetPreviousCloseAgg(ctx, &params)
	if err != nil {
		return types.RatePoint{}, errors.Wrap(errors.ErrCodeSourceUnavailable, "polygon previous close failed", err)
	}

	if len(resp.Results) == 0 {
		return types.RatePoint{}, errors.New(errors.ErrCodeSourceRateMissing,
			"polygon returned no aggregates for "+polygonTicker)
	}

	agg := resp.Results[0]
	if agg.Close <= 0 {
		return types.RatePoint{}, errors.Newf(errors.ErrCodeSourceParseFailed,
			"polygon returned non-positive close %v", agg.Close)
	}

	return types.RatePoint{
		Time: time.Time(agg.Timestamp).UTC().Truncate(24 * time.Hour),
		Rate: agg.Close,
	}, nil
}

// FetchHistory implements Source using daily aggregates over the trailing
// number of days.
func (p *Polygon) FetchHistory(ctx context.Context, days int) (types.RateSeries, error) {
	if days <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "days must be positive, got %d", days)
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     polygonTicker,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(start),
		To:         models.Millis(end),
	}.WithLimit(50000)

	var bar *progressbar.ProgressBar
	if p.showProgress {
		bar = progressbar.NewOptions(days,
			progressbar.OptionSetDescription("Downloading "+polygonTicker),
			progressbar.OptionShowCount(),
		)
	}

	iter := p.client.ListAggs(ctx, params)

	series := make(types.RateSeries, 0, days)

	for iter.Next() {
		agg := iter.Item()
		if agg.Close <= 0 {
			continue
		}

		series = append(series, types.RatePoint{
			Time: time.Time(agg.Timestamp).UTC().Truncate(24 * time.Hour),
			Rate: agg.Close,
		})

		if bar != nil {
			daysElapsed := int(time.Time(agg.Timestamp).Sub(start).Hours() / 24)
			bar.Set(daysElapsed)
		}
	}

	if iter.Err() != nil {
		return nil, errors.Wrap(errors.ErrCodeSourceUnavailable, "error iterating polygon aggregates", iter.Err())
	}

	if bar != nil {
		bar.Finish()
	}

	if len(series) == 0 {
		return nil, errors.New(errors.ErrCodeSourceRateMissing,
			"polygon returned no daily aggregates for "+polygonTicker)
	}

	return series, nil
}
