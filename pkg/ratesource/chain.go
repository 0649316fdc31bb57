package ratesource

import (
	"context"

	"go.uber.org/zap"

	"github.com/shekel-lab/ratewatch/internal/logger"
	"github.com/shekel-lab/ratewatch/internal/types"
	"github.com/shekel-lab/ratewatch/pkg/errors"
)

// Chain tries an ordered list of sources until one succeeds. Fallback is
// strictly sequential so ordering and upstream cost stay predictable.
type Chain struct {
	sources []Source
	log     *logger.Logger
}

// NewChain creates a fallback chain over the given sources, tried in order.
func NewChain(log *logger.Logger, sources ...Source) (*Chain, error) {
	if len(sources) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "chain requires at least one source")
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Chain{
		sources: sources,
		log:     log,
	}, nil
}

// Sources returns the source labels in priority order.
func (c *Chain) Sources() []string {
	names := make([]string, len(c.sources))
	for i, s := range c.sources {
		names[i] = s.Name()
	}

	return names
}

// FetchLatest returns the first successful latest observation together with
// the name of the source that produced it.
func (c *Chain) FetchLatest(ctx context.Context) (types.RatePoint, string, error) {
	var lastErr error

	for _, source := range c.sources {
		point, err := source.FetchLatest(ctx)
		if err == nil {
			return point, source.Name(), nil
		}

		lastErr = err

		c.log.Warn("rate source failed, falling back",
			zap.String("source", source.Name()),
			zap.Error(err),
		)
	}

	return types.RatePoint{}, "", errors.Wrap(errors.ErrCodeAllSourcesFailed,
		"no source could provide the latest rate", lastErr)
}

// FetchHistory returns the first successful historical series together with
// the name of the source that produced it. Sources without history support
// are skipped.
func (c *Chain) FetchHistory(ctx context.Context, days int) (types.RateSeries, string, error) {
	var lastErr error

	for _, source := range c.sources {
		series, err := source.FetchHistory(ctx, days)
		if err == nil {
			return series, source.Name(), nil
		}

		lastErr = err

		if errors.HasCode(err, errors.ErrCodeHistoryUnsupported) {
			c.log.Debug("source has no history endpoint, skipping",
				zap.String("source", source.Name()),
			)

			continue
		}

		c.log.Warn("historical fetch failed, falling back",
			zap.String("source", source.Name()),
			zap.Error(err),
		)
	}

	return nil, "", errors.Wrap(errors.ErrCodeAllSourcesFailed,
		"no source could provide historical rates", lastErr)
}
