// Package service orchestrates one refresh cycle: fetch from the source
// chain, persist, fall back to cache or demo data, then run the signal
// engine and backtester over the result.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/shekel-lab/ratewatch/internal/backtest"
	"github.com/shekel-lab/ratewatch/internal/cache"
	"github.com/shekel-lab/ratewatch/internal/config"
	"github.com/shekel-lab/ratewatch/internal/demo"
	"github.com/shekel-lab/ratewatch/internal/history"
	"github.com/shekel-lab/ratewatch/internal/logger"
	"github.com/shekel-lab/ratewatch/internal/report"
	"github.com/shekel-lab/ratewatch/internal/signal"
	"github.com/shekel-lab/ratewatch/internal/types"
	"github.com/shekel-lab/ratewatch/pkg/errors"
	"github.com/shekel-lab/ratewatch/pkg/ratesource"
)

// Service runs refresh cycles against a fixed set of collaborators.
type Service struct {
	chain      *ratesource.Chain
	cache      *cache.Store
	history    *history.Store
	engine     *signal.Engine
	backtester *backtest.Backtester
	windowDays int
	log        *logger.Logger
}

// NewService wires a service from explicit collaborators. The history store
// may be nil, persistence of observations is then skipped.
func NewService(
	chain *ratesource.Chain,
	cacheStore *cache.Store,
	historyStore *history.Store,
	engine *signal.Engine,
	backtester *backtest.Backtester,
	windowDays int,
	log *logger.Logger,
) (*Service, error) {
	if chain == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "service requires a source chain")
	}

	if cacheStore == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "service requires a cache store")
	}

	if engine == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "service requires a signal engine")
	}

	if backtester == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "service requires a backtester")
	}

	if windowDays <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "window days must be positive")
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Service{
		chain:      chain,
		cache:      cacheStore,
		history:    historyStore,
		engine:     engine,
		backtester: backtester,
		windowDays: windowDays,
		log:        log,
	}, nil
}

// FromConfig builds the full collaborator set described by cfg.
func FromConfig(cfg *config.Config, log *logger.Logger) (*Service, error) {
	if cfg == nil {
		return nil, errors.New(errors.ErrCodeMissingParameter, "configuration cannot be nil")
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	sources, err := buildSources(cfg, log)
	if err != nil {
		return nil, err
	}

	chain, err := ratesource.NewChain(log, sources...)
	if err != nil {
		return nil, err
	}

	cachePath := cfg.Cache.Path
	if cachePath == "" {
		cachePath = cache.DefaultPath()
	}

	cacheStore, err := cache.NewStore(cachePath, log)
	if err != nil {
		return nil, err
	}

	historyStore, err := history.NewStore(cfg.History.Path, log)
	if err != nil {
		return nil, err
	}

	engine, err := signal.NewEngine(cfg.Signal.ShortPeriod, cfg.Signal.LongPeriod)
	if err != nil {
		return nil, err
	}

	backtester, err := backtest.NewBacktester(cfg.Backtest.WindowDays, cfg.Backtest.InitialCapital, log)
	if err != nil {
		return nil, err
	}

	return NewService(chain, cacheStore, historyStore, engine, backtester, cfg.Backtest.WindowDays, log)
}

func buildSources(cfg *config.Config, log *logger.Logger) ([]ratesource.Source, error) {
	sources := make([]ratesource.Source, 0, len(cfg.Sources.Order))

	for _, name := range cfg.Sources.Order {
		switch ratesource.SourceType(name) {
		case ratesource.SourceBankOfIsrael:
			sources = append(sources, ratesource.NewBankOfIsrael(""))
		case ratesource.SourceExchangeRateHost:
			sources = append(sources, ratesource.NewExchangeRateHost(""))
		case ratesource.SourceOpenERAPI:
			sources = append(sources, ratesource.NewOpenERAPI(""))
		case ratesource.SourcePolygon:
			if cfg.Sources.PolygonAPIKey == "" {
				log.Warn("polygon source configured without an API key, skipping")

				continue
			}

			polygon, err := ratesource.NewPolygon(cfg.Sources.PolygonAPIKey)
			if err != nil {
				return nil, err
			}

			sources = append(sources, polygon)
		default:
			return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unknown rate source '%s'", name)
		}
	}

	if len(sources) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "no usable rate sources configured")
	}

	return sources, nil
}

// Close releases the history store.
func (s *Service) Close() error {
	if s.history != nil {
		return s.history.Close()
	}

	return nil
}

// History exposes the observation store for maintenance commands.
func (s *Service) History() *history.Store {
	return s.history
}

// FetchHistorySeries pulls the trailing days of observations from the chain
// and validates them.
func (s *Service) FetchHistorySeries(ctx context.Context, days int) (types.RateSeries, string, error) {
	series, sourceName, err := s.chain.FetchHistory(ctx, days)
	if err != nil {
		return nil, "", err
	}

	if err := series.Validate(); err != nil {
		return nil, "", err
	}

	return series, sourceName, nil
}

// Latest fetches just the current rate from the source chain.
func (s *Service) Latest(ctx context.Context) (types.RatePoint, string, error) {
	return s.chain.FetchLatest(ctx)
}

// Refresh performs one full cycle and returns the resulting snapshot. Data
// comes from the source chain when possible, the cache snapshot when every
// source fails, and generated demo data as the last resort.
func (s *Service) Refresh(ctx context.Context) (*report.Snapshot, error) {
	snapshot := &report.Snapshot{
		GeneratedAt: time.Now().UTC(),
		Pair:        types.Pair,
	}

	series, latest := s.acquire(ctx, snapshot)

	if err := series.Validate(); err != nil {
		return nil, err
	}

	snapshot.Current = latest

	if len(series) >= 2 {
		snapshot.PrevClose = series[len(series)-2].Rate
	}

	window := series.Tail(s.windowDays)
	snapshot.Window = window
	snapshot.Min = window.Min()
	snapshot.Max = window.Max()

	snapshot.Signals = s.engine.SignalsSlice(series)
	s.recommend(snapshot, series)

	result, err := s.backtester.Run(series, snapshot.Signals)
	if err != nil {
		return nil, err
	}

	snapshot.Backtest = &result

	return snapshot, nil
}

// acquire fills the snapshot provenance fields and returns the best series
// available, newest point last.
func (s *Service) acquire(ctx context.Context, snapshot *report.Snapshot) (types.RateSeries, types.RatePoint) {
	series, sourceName, err := s.fetchLive(ctx)
	if err == nil {
		snapshot.SourceName = sourceName

		latest := series[len(series)-1]

		if saveErr := s.cache.Save(latest, series); saveErr != nil {
			s.log.Warn("failed to write cache snapshot", zap.Error(saveErr))
		}

		s.persist(series)

		return series, latest
	}

	s.log.Warn("live fetch failed, trying cache", zap.Error(err))

	if cached, loadErr := s.cache.Load(); loadErr == nil {
		cachedSeries := cached.Series()
		if len(cachedSeries) > 0 {
			snapshot.SourceName = "local cache"
			snapshot.Stale = true
			snapshot.CacheAge = cached.Age(time.Now().UTC())

			return cachedSeries, cached.Point()
		}
	} else {
		s.log.Warn("cache unavailable", zap.Error(loadErr))
	}

	s.log.Warn("falling back to generated demo data")

	generated := demo.Series(s.windowDays)
	snapshot.SourceName = "demo data"
	snapshot.Demo = true

	return generated, generated[len(generated)-1]
}

// fetchLive pulls history and the latest observation from the chain and
// merges them into one ascending series.
func (s *Service) fetchLive(ctx context.Context) (types.RateSeries, string, error) {
	latest, latestSource, err := s.chain.FetchLatest(ctx)
	if err != nil {
		return nil, "", err
	}

	series, _, err := s.chain.FetchHistory(ctx, s.windowDays+s.engine.LongPeriod())
	if err != nil {
		s.log.Warn("historical fetch failed, continuing with stored history", zap.Error(err))

		series = s.storedHistory()
	}

	series = mergeLatest(series, latest)

	return series, latestSource, nil
}

func (s *Service) storedHistory() types.RateSeries {
	if s.history == nil {
		return nil
	}

	stored, err := s.history.Tail(types.Pair, s.windowDays+s.engine.LongPeriod())
	if err != nil {
		s.log.Warn("failed to read stored history", zap.Error(err))

		return nil
	}

	return stored
}

func (s *Service) persist(series types.RateSeries) {
	if s.history == nil {
		return
	}

	if err := s.history.Upsert(types.Pair, series); err != nil {
		s.log.Warn("failed to persist observations", zap.Error(err))
	}
}

// mergeLatest appends the latest observation unless the series already ends
// on the same day, in which case the fresher value replaces it.
func mergeLatest(series types.RateSeries, latest types.RatePoint) types.RateSeries {
	if len(series) == 0 {
		return types.RateSeries{latest}
	}

	last := series[len(series)-1]

	switch {
	case last.Time.Before(latest.Time):
		return append(series, latest)
	case last.Time.Equal(latest.Time):
		series[len(series)-1] = latest

		return series
	default:
		return series
	}
}

// recommend derives the dashboard recommendation from the newest signal.
func (s *Service) recommend(snapshot *report.Snapshot, series types.RateSeries) {
	shortMA, longMA, ok := s.engine.Averages(series)
	if !ok {
		snapshot.Recommendation = types.SignalTypeHold
		snapshot.Reason = "not enough history for the moving averages"

		return
	}

	snapshot.HaveAverages = true
	snapshot.ShortMA = shortMA
	snapshot.LongMA = longMA

	if len(snapshot.Signals) == 0 {
		snapshot.Recommendation = types.SignalTypeHold
		snapshot.Reason = "no crossover signals in the available history"

		return
	}

	last := snapshot.Signals[len(snapshot.Signals)-1]
	snapshot.Recommendation = last.Type
	snapshot.Reason = last.Reason
}
