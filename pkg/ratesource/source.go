// Package ratesource fetches USD/ILS exchange rates from remote providers.
//
// Sources are tried in a fixed priority order by Chain; at most one fetch is
// in flight at a time. Each source makes a single attempt per call, retry
// policy belongs to the caller.
package ratesource

import (
	"context"
	"net/http"
	"time"

	"github.com/shekel-lab/ratewatch/internal/types"
)

// SourceType identifies a rate source implementation.
type SourceType string

const (
	SourceBankOfIsrael     SourceType = "boi"
	SourceExchangeRateHost SourceType = "exchangerate_host"
	SourceOpenERAPI        SourceType = "open_er_api"
	SourcePolygon          SourceType = "polygon"
)

// fetchTimeout bounds a single upstream request.
const fetchTimeout = 10 * time.Second

// Source provides USD/ILS rates from one upstream.
type Source interface {
	// Name returns a human-readable source label for reports.
	Name() string
	// FetchLatest returns the most recent rate observation.
	FetchLatest(ctx context.Context) (types.RatePoint, error)
	// FetchHistory returns daily observations for the trailing number of
	// days, oldest first. Sources without a history endpoint return a
	// coded ErrCodeHistoryUnsupported error.
	FetchHistory(ctx context.Context, days int) (types.RateSeries, error)
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: fetchTimeout}
}

// parseDate accepts the date layouts the upstreams use, falling back to the
// current UTC date when none match.
func parseDate(value string) time.Time {
	layouts := []string{
		"2006-01-02",
		time.RFC3339,
		"2006-01-02T15:04:05",
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC().Truncate(24 * time.Hour)
		}
	}

	return time.Now().UTC().Truncate(24 * time.Hour)
}

// parseRFC1123 parses timestamps like "Sat, 15 Feb 2026 00:00:01 +0000",
// truncated to the calendar date.
func parseRFC1123(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC1123Z, value)
	if err != nil {
		return time.Time{}, err
	}

	return t.UTC().Truncate(24 * time.Hour), nil
}
