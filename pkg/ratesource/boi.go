package ratesource

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"

	"github.com/shekel-lab/ratewatch/internal/types"
	"github.com/shekel-lab/ratewatch/pkg/errors"
)

const defaultBankOfIsraelURL = "https://www.boi.org.il"

// BankOfIsrael fetches the official representative USD rate from the Bank of
// Israel public API. The endpoint returns an XML list of currencies; only the
// latest observation is published, so history is unsupported.
type BankOfIsrael struct {
	baseURL    string
	httpClient *http.Client
}

// NewBankOfIsrael creates the source. An empty baseURL uses the official
// endpoint; tests inject their own.
func NewBankOfIsrael(baseURL string) *BankOfIsrael {
	if baseURL == "" {
		baseURL = defaultBankOfIsraelURL
	}

	return &BankOfIsrael{
		baseURL:    baseURL,
		httpClient: newHTTPClient(),
	}
}

// Name implements Source.
func (b *BankOfIsrael) Name() string {
	return "Bank of Israel"
}

type boiCurrency struct {
	Code       string  `xml:"CURRENCYCODE"`
	Rate       float64 `xml:"RATE"`
	LastUpdate string  `xml:"LAST_UPDATE"`
}

type boiResponse struct {
	XMLName    xml.Name      `xml:"CURRENCIES"`
	LastUpdate string        `xml:"LAST_UPDATE"`
	Currencies []boiCurrency `xml:"CURRENCY"`
}

// FetchLatest implements Source.
func (b *BankOfIsrael) FetchLatest(ctx context.Context) (types.RatePoint, error) {
	url := b.baseURL + "/PublicApi/GetExchangeRates"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return types.RatePoint{}, errors.Wrap(errors.ErrCodeSourceUnavailable, "failed to build request", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return types.RatePoint{}, errors.Wrap(errors.ErrCodeSourceUnavailable, "request to Bank of Israel failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.RatePoint{}, errors.Newf(errors.ErrCodeSourceUnavailable,
			"Bank of Israel returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.RatePoint{}, errors.Wrap(errors.ErrCodeSourceUnavailable, "failed to read response", err)
	}

	var parsed boiResponse
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return types.RatePoint{}, errors.Wrap(errors.ErrCodeSourceParseFailed, "failed to parse Bank of Israel XML", err)
	}

	for _, currency := range parsed.Currencies {
		if currency.Code != "USD" {
			continue
		}

		if currency.Rate <= 0 {
			return types.RatePoint{}, errors.Newf(errors.ErrCodeSourceParseFailed,
				"Bank of Israel returned non-positive USD rate %v", currency.Rate)
		}

		date := currency.LastUpdate
		if date == "" {
			date = parsed.LastUpdate
		}

		return types.RatePoint{
			Time: parseDate(date),
			Rate: currency.Rate,
		}, nil
	}

	return types.RatePoint{}, errors.New(errors.ErrCodeSourceRateMissing,
		"USD not present in Bank of Israel response")
}

// FetchHistory implements Source. The public endpoint only carries the
// latest representative rates.
func (b *BankOfIsrael) FetchHistory(_ context.Context, _ int) (types.RateSeries, error) {
	return nil, errors.New(errors.ErrCodeHistoryUnsupported,
		fmt.Sprintf("%s does not expose a history endpoint", b.Name()))
}
