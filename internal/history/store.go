// Package history keeps every observed rate in an embedded DuckDB database
// so moving averages and backtests can reach further back than any single
// upstream response.
package history

import (
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/shekel-lab/ratewatch/internal/logger"
	"github.com/shekel-lab/ratewatch/internal/types"
	"github.com/shekel-lab/ratewatch/pkg/errors"
)

// Store persists daily rate observations keyed by pair and day.
type Store struct {
	db  *sql.DB
	sq  squirrel.StatementBuilderType
	log *logger.Logger
}

// NewStore opens (or creates) the database at path. An empty path opens a
// throwaway in-memory database.
func NewStore(path string, log *logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeHistoryOpenFailed, "failed to open history database", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS rates (
			pair VARCHAR NOT NULL,
			time TIMESTAMP NOT NULL,
			rate DOUBLE NOT NULL,
			PRIMARY KEY (pair, time)
		);
	`)
	if err != nil {
		db.Close()

		return nil, errors.Wrap(errors.ErrCodeHistoryOpenFailed, "failed to create rates table", err)
	}

	return &Store{
		db:  db,
		sq:  squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		log: log,
	}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}

	return nil
}

// Upsert writes the series for the given pair, replacing any observation
// already stored for the same day. The whole batch is one transaction.
func (s *Store) Upsert(pair string, series types.RateSeries) error {
	if len(series) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeHistoryWriteFailed, "failed to begin transaction", err)
	}

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO rates (pair, time, rate) VALUES ($1, $2, $3)`)
	if err != nil {
		tx.Rollback()

		return errors.Wrap(errors.ErrCodeHistoryWriteFailed, "failed to prepare upsert", err)
	}
	defer stmt.Close()

	for _, point := range series {
		if _, err := stmt.Exec(pair, point.Time.UTC(), point.Rate); err != nil {
			tx.Rollback()

			return errors.Wrap(errors.ErrCodeHistoryWriteFailed, "failed to upsert rate point", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeHistoryWriteFailed, "failed to commit upsert", err)
	}

	s.log.Debug("history upserted",
		zap.String("pair", pair),
		zap.Int("points", len(series)),
	)

	return nil
}

// Range returns the observations for pair ordered by time ascending, bounded
// by the optional start and end (inclusive).
func (s *Store) Range(pair string, start optional.Option[time.Time], end optional.Option[time.Time]) (types.RateSeries, error) {
	builder := s.sq.
		Select("time", "rate").
		From("rates").
		Where(squirrel.Eq{"pair": pair}).
		OrderBy("time ASC")

	if start.IsSome() {
		builder = builder.Where(squirrel.GtOrEq{"time": start.Unwrap().UTC()})
	}

	if end.IsSome() {
		builder = builder.Where(squirrel.LtOrEq{"time": end.Unwrap().UTC()})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeHistoryQueryFailed, "failed to build range query", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeHistoryQueryFailed, "failed to query rates", err)
	}
	defer rows.Close()

	series := make(types.RateSeries, 0, 64)

	for rows.Next() {
		var (
			timestamp time.Time
			rate      float64
		)

		if err := rows.Scan(&timestamp, &rate); err != nil {
			return nil, errors.Wrap(errors.ErrCodeHistoryQueryFailed, "failed to scan rate row", err)
		}

		series = append(series, types.RatePoint{Time: timestamp.UTC(), Rate: rate})
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeHistoryQueryFailed, "failed to iterate rate rows", err)
	}

	return series, nil
}

// Tail returns the most recent count observations for pair in ascending
// order, or all of them when fewer are stored.
func (s *Store) Tail(pair string, count int) (types.RateSeries, error) {
	query, args, err := s.sq.
		Select("time", "rate").
		From("rates").
		Where(squirrel.Eq{"pair": pair}).
		OrderBy("time DESC").
		Limit(uint64(count)).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeHistoryQueryFailed, "failed to build tail query", err)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeHistoryQueryFailed, "failed to query rates", err)
	}
	defer rows.Close()

	reversed := make(types.RateSeries, 0, count)

	for rows.Next() {
		var (
			timestamp time.Time
			rate      float64
		)

		if err := rows.Scan(&timestamp, &rate); err != nil {
			return nil, errors.Wrap(errors.ErrCodeHistoryQueryFailed, "failed to scan rate row", err)
		}

		reversed = append(reversed, types.RatePoint{Time: timestamp.UTC(), Rate: rate})
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeHistoryQueryFailed, "failed to iterate rate rows", err)
	}

	series := make(types.RateSeries, len(reversed))
	for i, point := range reversed {
		series[len(reversed)-1-i] = point
	}

	return series, nil
}

// Latest returns the most recent observation for pair.
func (s *Store) Latest(pair string) (types.RatePoint, error) {
	query, args, err := s.sq.
		Select("time", "rate").
		From("rates").
		Where(squirrel.Eq{"pair": pair}).
		OrderBy("time DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return types.RatePoint{}, errors.Wrap(errors.ErrCodeHistoryQueryFailed, "failed to build latest query", err)
	}

	var (
		timestamp time.Time
		rate      float64
	)

	err = s.db.QueryRow(query, args...).Scan(&timestamp, &rate)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.RatePoint{}, errors.New(errors.ErrCodeHistoryNoData, "no observations stored for "+pair)
		}

		return types.RatePoint{}, errors.Wrap(errors.ErrCodeHistoryQueryFailed, "failed to query latest rate", err)
	}

	return types.RatePoint{Time: timestamp.UTC(), Rate: rate}, nil
}

// Count reports how many observations are stored for pair within the
// optional bounds.
func (s *Store) Count(pair string, start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	builder := s.sq.
		Select("COUNT(*)").
		From("rates").
		Where(squirrel.Eq{"pair": pair})

	if start.IsSome() {
		builder = builder.Where(squirrel.GtOrEq{"time": start.Unwrap().UTC()})
	}

	if end.IsSome() {
		builder = builder.Where(squirrel.LtOrEq{"time": end.Unwrap().UTC()})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeHistoryQueryFailed, "failed to build count query", err)
	}

	var count int
	if err := s.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeHistoryQueryFailed, "failed to count rates", err)
	}

	return count, nil
}
