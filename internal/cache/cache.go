// Package cache persists the last successfully fetched rate snapshot as JSON
// so the dashboard can keep working while every upstream source is down.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"github.com/shekel-lab/ratewatch/internal/logger"
	"github.com/shekel-lab/ratewatch/internal/types"
	"github.com/shekel-lab/ratewatch/pkg/errors"
)

const (
	// SchemaVersion is stamped into every snapshot. Readers accept any
	// snapshot whose major version matches their own.
	SchemaVersion = "1.0.0"

	// DefaultFileName is the snapshot file name under the cache directory.
	DefaultFileName = "rate_cache.json"

	dateLayout = "2006-01-02"
)

// Entry is one historical observation inside a snapshot.
type Entry struct {
	Date string  `json:"date"`
	Rate float64 `json:"rate"`
}

// Snapshot is the on-disk cache document.
type Snapshot struct {
	Version     string    `json:"version"`
	Timestamp   time.Time `json:"timestamp"`
	CurrentRate float64   `json:"current_rate"`
	CurrentDate string    `json:"current_date"`
	Data        []Entry   `json:"data"`
}

// Point returns the cached latest observation.
func (s *Snapshot) Point() types.RatePoint {
	t, err := time.Parse(dateLayout, s.CurrentDate)
	if err != nil {
		t = s.Timestamp.UTC().Truncate(24 * time.Hour)
	}

	return types.RatePoint{Time: t, Rate: s.CurrentRate}
}

// Series rebuilds the historical series from the snapshot entries. Entries
// with unparseable dates are dropped rather than poisoning the series.
func (s *Snapshot) Series() types.RateSeries {
	series := make(types.RateSeries, 0, len(s.Data))

	for _, entry := range s.Data {
		t, err := time.Parse(dateLayout, entry.Date)
		if err != nil {
			continue
		}

		series = append(series, types.RatePoint{Time: t, Rate: entry.Rate})
	}

	return series
}

// Age reports how long ago the snapshot was written.
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.Timestamp)
}

// Store reads and writes snapshots at a fixed path.
type Store struct {
	path string
	log  *logger.Logger
}

// NewStore creates a store backed by the given file path.
func NewStore(path string, log *logger.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "cache path cannot be empty")
	}

	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Store{path: path, log: log}, nil
}

// DefaultPath places the snapshot under the user cache directory, falling
// back to the working directory when the platform has none.
func DefaultPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return DefaultFileName
	}

	return filepath.Join(dir, "ratewatch", DefaultFileName)
}

// Path returns the file path this store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Save writes a snapshot for the given latest observation and series. The
// write replaces any previous snapshot.
func (s *Store) Save(point types.RatePoint, series types.RateSeries) error {
	snapshot := Snapshot{
		Version:     SchemaVersion,
		Timestamp:   time.Now().UTC(),
		CurrentRate: point.Rate,
		CurrentDate: point.Time.Format(dateLayout),
		Data:        make([]Entry, 0, len(series)),
	}

	for _, p := range series {
		snapshot.Data = append(snapshot.Data, Entry{
			Date: p.Time.Format(dateLayout),
			Rate: p.Rate,
		})
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeCacheWriteFailed, "failed to encode cache snapshot", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return errors.Wrap(errors.ErrCodeCacheWriteFailed, "failed to create cache directory", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeCacheWriteFailed, "failed to write cache snapshot", err)
	}

	s.log.Debug("cache snapshot written",
		zap.String("path", s.path),
		zap.Int("points", len(snapshot.Data)),
	)

	return nil
}

// Load reads and validates the snapshot. A missing file returns a cache miss,
// unreadable JSON returns a corruption error, and a snapshot written by an
// incompatible schema major version is rejected.
func (s *Store) Load() (*Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeCacheMiss, "no cache snapshot at "+s.path)
		}

		return nil, errors.Wrap(errors.ErrCodeCacheCorrupted, "failed to read cache snapshot", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, errors.Wrap(errors.ErrCodeCacheCorrupted, "failed to decode cache snapshot", err)
	}

	if err := checkSchemaCompatibility(snapshot.Version); err != nil {
		return nil, err
	}

	return &snapshot, nil
}

// checkSchemaCompatibility accepts any snapshot whose schema major version
// matches ours. Minor and patch revisions only add optional fields.
func checkSchemaCompatibility(version string) error {
	if version == "" {
		return errors.New(errors.ErrCodeCacheVersionMismatch, "cache snapshot has no schema version")
	}

	snapshotVersion, err := semver.NewVersion(version)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidVersion, "invalid cache schema version '"+version+"'", err)
	}

	currentVersion := semver.MustParse(SchemaVersion)

	if snapshotVersion.Major() != currentVersion.Major() {
		return errors.Newf(errors.ErrCodeCacheVersionMismatch,
			"cache schema major version mismatch: file is %d.x.x but reader expects %d.x.x",
			snapshotVersion.Major(), currentVersion.Major())
	}

	return nil
}
