// Package rating keeps a game's ratingValue and reviewsCount equal to the
// aggregate of the reviews that currently reference it.
package rating

import (
	"context"
	"errors"
	"sync"

	"guild/backend/internal/models"

	pkgerrors "github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Summary is the derived state of a game.
type Summary struct {
	Value float64
	Count int64
}

// Summarize returns the review count and the mean rating rounded half-up to one
// decimal place. Ratings are integers, so the rounding is done on integers.
func Summarize(count, total int64) Summary {
	if count <= 0 {
		return Summary{}
	}
	tenths := (20*total + count) / (2 * count)
	return Summary{Value: float64(tenths) / 10, Count: count}
}

// Aggregator recomputes derived rating fields. Calls for the same game are
// serialized in-process and under a row lock on the game.
type Aggregator struct {
	db       *gorm.DB
	logger   *zap.Logger
	failures metric.Int64Counter

	mu    sync.Mutex
	locks map[string]*gameLock
}

type gameLock struct {
	mu   sync.Mutex
	refs int
}

// NewAggregator creates an Aggregator writing through db.
func NewAggregator(db *gorm.DB, logger *zap.Logger) *Aggregator {
	failures, err := otel.Meter("guild/backend/internal/rating").Int64Counter(
		"guild_rating_recompute_failures_total",
		metric.WithDescription("Rating recomputations that failed after a review mutation"),
	)
	if err != nil {
		logger.Warn("Failed to create rating failure counter", zap.Error(err))
		failures = noop.Int64Counter{}
	}

	return &Aggregator{
		db:       db,
		logger:   logger,
		failures: failures,
		locks:    make(map[string]*gameLock),
	}
}

func (a *Aggregator) lock(gameID string) func() {
	a.mu.Lock()
	l, ok := a.locks[gameID]
	if !ok {
		l = &gameLock{}
		a.locks[gameID] = l
	}
	l.refs++
	a.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		a.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(a.locks, gameID)
		}
		a.mu.Unlock()
	}
}

// Recompute sets the game's ratingValue and reviewsCount from its reviews.
// A game that no longer exists is not an error.
func (a *Aggregator) Recompute(ctx context.Context, gameID string) error {
	unlock := a.lock(gameID)
	defer unlock()

	return a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var game models.Game
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&game, "id = ?", gameID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return pkgerrors.Wrapf(err, "lock game %s", gameID)
		}

		var agg struct {
			ReviewCount int64
			RatingTotal int64
		}
		err = tx.Model(&models.Review{}).
			Select("COUNT(*) AS review_count, COALESCE(SUM(rating), 0) AS rating_total").
			Where("game_id = ?", gameID).
			Scan(&agg).Error
		if err != nil {
			return pkgerrors.Wrapf(err, "aggregate reviews of game %s", gameID)
		}

		summary := Summarize(agg.ReviewCount, agg.RatingTotal)
		err = tx.Model(&models.Game{}).
			Where("id = ?", gameID).
			Updates(map[string]interface{}{
				"rating_value":  summary.Value,
				"reviews_count": summary.Count,
			}).Error
		return pkgerrors.Wrapf(err, "update rating of game %s", gameID)
	})
}

// Refresh runs Recompute after a review mutation. The mutation has already been
// committed, so a failure here is logged and counted but never returned.
func (a *Aggregator) Refresh(ctx context.Context, gameID string) {
	if err := a.Recompute(ctx, gameID); err != nil {
		a.logger.Error("Failed to recompute game rating",
			zap.String("game_id", gameID),
			zap.Error(err),
		)
		a.failures.Add(context.WithoutCancel(ctx), 1, metric.WithAttributes(attribute.String("game_id", gameID)))
	}
}

// RecomputeAll reconciles every game. It returns how many games were brought up
// to date; failures are collected and do not stop the pass.
func (a *Aggregator) RecomputeAll(ctx context.Context) (int, error) {
	var gameIDs []string
	if err := a.db.WithContext(ctx).Model(&models.Game{}).Pluck("id", &gameIDs).Error; err != nil {
		return 0, pkgerrors.Wrap(err, "list games")
	}

	var errs []error
	processed := 0
	for _, id := range gameIDs {
		if err := a.Recompute(ctx, id); err != nil {
			a.logger.Error("Failed to reconcile game rating", zap.String("game_id", id), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		processed++
	}

	a.logger.Info("Reconciled game ratings", zap.Int("games", processed), zap.Int("failed", len(errs)))
	return processed, errors.Join(errs...)
}
