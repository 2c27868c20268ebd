package oracle

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/bibbank/credit-risk-service/internal/domain/model"
	"github.com/bibbank/credit-risk-service/internal/domain/port"
)

// ScoreCache stores default probabilities by key.
type ScoreCache interface {
	Get(ctx context.Context, key string) (float64, bool, error)
	Set(ctx context.Context, key string, probability float64) error
}

// CachedOracle decorates a ScoringOracle with a probability cache keyed by the
// feature vector and the model version. Cache failures are logged and the
// request falls through to the wrapped oracle.
type CachedOracle struct {
	next   port.ScoringOracle
	cache  ScoreCache
	logger *slog.Logger
}

// NewCachedOracle wraps next with cache.
func NewCachedOracle(next port.ScoringOracle, cache ScoreCache, logger *slog.Logger) *CachedOracle {
	return &CachedOracle{next: next, cache: cache, logger: logger}
}

// snapshotOracle is implemented by oracles whose active model can be pinned
// for the duration of a single prediction.
type snapshotOracle interface {
	Snapshot() *LogisticModel
}

// PredictProba returns a cached probability when present, otherwise scores
// with the wrapped oracle and stores the result. The cache key always carries
// the version of the model that produced the score.
func (o *CachedOracle) PredictProba(ctx context.Context, f model.NormalizedFeatures) ([2]float64, error) {
	if s, ok := o.next.(snapshotOracle); ok {
		m := s.Snapshot()
		if m == nil {
			return predictWith(nil, f)
		}
		return o.lookup(ctx, m.Version, f, func() ([2]float64, string, error) {
			probs, err := predictWith(m, f)
			return probs, m.Version, err
		})
	}

	return o.lookup(ctx, o.ModelVersion(), f, func() ([2]float64, string, error) {
		probs, err := o.next.PredictProba(ctx, f)
		return probs, o.ModelVersion(), err
	})
}

func (o *CachedOracle) lookup(
	ctx context.Context,
	version string,
	f model.NormalizedFeatures,
	score func() ([2]float64, string, error),
) ([2]float64, error) {
	p, ok, err := o.cache.Get(ctx, CacheKey(version, f))
	if err != nil {
		o.logger.Warn("score cache read failed", slog.String("error", err.Error()))
	} else if ok {
		return [2]float64{1 - p, p}, nil
	}

	probs, served, err := score()
	if err != nil {
		return probs, err
	}

	if err := o.cache.Set(ctx, CacheKey(served, f), probs[1]); err != nil {
		o.logger.Warn("score cache write failed", slog.String("error", err.Error()))
	}
	return probs, nil
}

// ModelVersion forwards the wrapped oracle's version when it has one.
func (o *CachedOracle) ModelVersion() string {
	if v, ok := o.next.(port.VersionedOracle); ok {
		return v.ModelVersion()
	}
	return ""
}

// CacheKey derives a stable key from the model version and the feature vector.
func CacheKey(version string, f model.NormalizedFeatures) string {
	var b strings.Builder
	b.WriteString(version)
	for _, v := range f.Numeric() {
		b.WriteByte('|')
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	b.WriteByte('|')
	b.WriteString(f.HomeOwnership().String())

	sum := sha256.Sum256([]byte(b.String()))
	return fmt.Sprintf("credit-risk:score:%s", hex.EncodeToString(sum[:]))
}
