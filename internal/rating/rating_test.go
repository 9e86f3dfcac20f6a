package rating

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"guild/backend/internal/models"
	"guild/backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

func reload(t *testing.T, db *gorm.DB, id string) models.Game {
	t.Helper()
	var game models.Game
	require.NoError(t, db.First(&game, "id = ?", id).Error)
	return game
}

func TestSummarize(t *testing.T) {
	cases := []struct {
		count, total int64
		want         float64
	}{
		{0, 0, 0},
		{1, 5, 5.0},
		{2, 8, 4.0},
		{2, 5, 2.5},
		{3, 10, 3.3},  // 3.333…
		{3, 11, 3.7},  // 3.666…
		{4, 9, 2.3},   // 2.25 rounds half up
		{20, 47, 2.4}, // 2.35 rounds half up
		{8, 21, 2.6},  // 2.625
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%d/%d", tc.total, tc.count), func(t *testing.T) {
			s := Summarize(tc.count, tc.total)
			assert.Equal(t, tc.want, s.Value)
			if tc.count == 0 {
				assert.Zero(t, s.Count)
			} else {
				assert.Equal(t, tc.count, s.Count)
			}
		})
	}
}

func TestRecompute(t *testing.T) {
	db := testutil.SetupDB(t)
	agg := NewAggregator(db, zap.NewNop())
	ctx := context.Background()

	game := testutil.CreateGame(t, db, "hollow")
	u1 := testutil.CreateUser(t, db, "u1")
	u2 := testutil.CreateUser(t, db, "u2")

	require.NoError(t, agg.Recompute(ctx, game.ID))
	g := reload(t, db, game.ID)
	assert.Equal(t, 0.0, g.RatingValue)
	assert.Zero(t, g.ReviewsCount)

	r1 := testutil.CreateReview(t, db, game.ID, u1.ID, 5)
	require.NoError(t, agg.Recompute(ctx, game.ID))
	g = reload(t, db, game.ID)
	assert.Equal(t, 5.0, g.RatingValue)
	assert.EqualValues(t, 1, g.ReviewsCount)

	testutil.CreateReview(t, db, game.ID, u2.ID, 3)
	require.NoError(t, agg.Recompute(ctx, game.ID))
	g = reload(t, db, game.ID)
	assert.Equal(t, 4.0, g.RatingValue)
	assert.EqualValues(t, 2, g.ReviewsCount)

	// Idempotent.
	require.NoError(t, agg.Recompute(ctx, game.ID))
	assert.Equal(t, g.RatingValue, reload(t, db, game.ID).RatingValue)

	require.NoError(t, db.Delete(&models.Review{}, "id = ?", r1.ID).Error)
	require.NoError(t, agg.Recompute(ctx, game.ID))
	g = reload(t, db, game.ID)
	assert.Equal(t, 3.0, g.RatingValue)
	assert.EqualValues(t, 1, g.ReviewsCount)
}

func TestRecomputeIgnoresOtherGames(t *testing.T) {
	db := testutil.SetupDB(t)
	agg := NewAggregator(db, zap.NewNop())

	a := testutil.CreateGame(t, db, "a")
	b := testutil.CreateGame(t, db, "b")
	u := testutil.CreateUser(t, db, "u")
	testutil.CreateReview(t, db, a.ID, u.ID, 2)
	testutil.CreateReview(t, db, b.ID, u.ID, 5)

	require.NoError(t, agg.Recompute(context.Background(), a.ID))
	assert.Equal(t, 2.0, reload(t, db, a.ID).RatingValue)
	assert.Equal(t, 0.0, reload(t, db, b.ID).RatingValue)
}

func TestRecomputeMissingGameIsNoop(t *testing.T) {
	db := testutil.SetupDB(t)
	agg := NewAggregator(db, zap.NewNop())

	assert.NoError(t, agg.Recompute(context.Background(), "deleted-game"))
}

func TestRecomputeConcurrentCallsConverge(t *testing.T) {
	db := testutil.SetupDB(t)
	agg := NewAggregator(db, zap.NewNop())

	game := testutil.CreateGame(t, db, "busy")
	total := 0
	for i := 0; i < 6; i++ {
		u := testutil.CreateUser(t, db, fmt.Sprintf("user%d", i))
		rating := i%5 + 1
		total += rating
		testutil.CreateReview(t, db, game.ID, u.ID, rating)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			agg.Refresh(context.Background(), game.ID)
		}()
	}
	wg.Wait()

	g := reload(t, db, game.ID)
	assert.EqualValues(t, 6, g.ReviewsCount)
	assert.Equal(t, Summarize(6, int64(total)).Value, g.RatingValue)
	assert.Empty(t, agg.locks, "lock entries are released")
}

func TestRefreshLogsAndSwallowsFailure(t *testing.T) {
	db := testutil.SetupDB(t)
	core, logs := observer.New(zap.ErrorLevel)
	agg := NewAggregator(db, zap.New(core))

	game := testutil.CreateGame(t, db, "g")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NotPanics(t, func() { agg.Refresh(ctx, game.ID) })

	entries := logs.FilterMessage("Failed to recompute game rating").All()
	require.Len(t, entries, 1)
	assert.Equal(t, game.ID, entries[0].ContextMap()["game_id"])
}

func TestRecomputeAll(t *testing.T) {
	db := testutil.SetupDB(t)
	agg := NewAggregator(db, zap.NewNop())

	a := testutil.CreateGame(t, db, "a")
	b := testutil.CreateGame(t, db, "b")
	u1 := testutil.CreateUser(t, db, "u1")
	u2 := testutil.CreateUser(t, db, "u2")
	testutil.CreateReview(t, db, a.ID, u1.ID, 4)
	testutil.CreateReview(t, db, a.ID, u2.ID, 1)

	// Drift b's stored aggregate so the pass has something to repair.
	require.NoError(t, db.Model(&models.Game{}).Where("id = ?", b.ID).
		Updates(map[string]interface{}{"rating_value": 4.5, "reviews_count": 7}).Error)

	processed, err := agg.RecomputeAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, processed)

	assert.Equal(t, 2.5, reload(t, db, a.ID).RatingValue)
	gb := reload(t, db, b.ID)
	assert.Equal(t, 0.0, gb.RatingValue)
	assert.Zero(t, gb.ReviewsCount)
}
