package router

import (
	"net/http"
	"testing"

	"guild/backend/internal/handler"
	"guild/backend/internal/models"
	"guild/backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) game(t *testing.T, id string) handler.GameResponse {
	t.Helper()
	w := e.do(t, http.MethodGet, "/api/v1/games/"+id, "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[handler.GameResponse](t, w)
}

func TestReviewLifecycleUpdatesGameRating(t *testing.T) {
	env := newTestEnv(t)
	_, token1 := env.user(t, "u1")
	_, token2 := env.user(t, "u2")
	game := testutil.CreateGame(t, env.db, "G")

	w := env.do(t, http.MethodPost, "/api/v1/reviews", token1, map[string]interface{}{
		"gameId": game.ID, "text": "great", "rating": 5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := decode[handler.ReviewResponse](t, w)
	assert.Equal(t, 5, first.Rating)
	assert.Equal(t, "u1", first.Handle)
	assert.Equal(t, "u1", first.UserName)

	g := env.game(t, game.ID)
	assert.Equal(t, 5.0, g.RatingValue)
	assert.EqualValues(t, 1, g.ReviewsCount)

	w = env.do(t, http.MethodPost, "/api/v1/reviews", token2, map[string]interface{}{
		"gameId": game.ID, "text": "ok", "rating": 3,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	g = env.game(t, game.ID)
	assert.Equal(t, 4.0, g.RatingValue)
	assert.EqualValues(t, 2, g.ReviewsCount)

	w = env.do(t, http.MethodDelete, "/api/v1/reviews/"+first.ID, token1, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	g = env.game(t, game.ID)
	assert.Equal(t, 3.0, g.RatingValue)
	assert.EqualValues(t, 1, g.ReviewsCount)
}

func TestCreateReviewValidation(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.user(t, "reviewer")
	game := testutil.CreateGame(t, env.db, "Checked")

	for _, rating := range []interface{}{0, 6, 4.5, -1} {
		w := env.do(t, http.MethodPost, "/api/v1/reviews", token, map[string]interface{}{
			"gameId": game.ID, "text": "hm", "rating": rating,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, "rating %v", rating)
	}

	w := env.do(t, http.MethodPost, "/api/v1/reviews", token, map[string]interface{}{
		"gameId": game.ID, "text": "hm",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/reviews", token, map[string]interface{}{
		"gameId": "missing", "text": "hm", "rating": 4,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	g := env.game(t, game.ID)
	assert.Equal(t, 0.0, g.RatingValue)
	assert.EqualValues(t, 0, g.ReviewsCount)
}

func TestDuplicateReviewConflicts(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.user(t, "repeat")
	game := testutil.CreateGame(t, env.db, "Twice")

	body := map[string]interface{}{"gameId": game.ID, "text": "first", "rating": 4}
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/v1/reviews", token, body).Code)

	body["text"] = "second"
	w := env.do(t, http.MethodPost, "/api/v1/reviews", token, body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "You have already reviewed this game", errorMessage(t, w))

	var count int64
	require.NoError(t, env.db.Model(&models.Review{}).Where("game_id = ?", game.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
	assert.EqualValues(t, 1, env.game(t, game.ID).ReviewsCount)
}

func TestReviewOwnership(t *testing.T) {
	env := newTestEnv(t)
	_, ownerToken := env.user(t, "owner")
	_, otherToken := env.user(t, "intruder")
	game := testutil.CreateGame(t, env.db, "Owned")

	w := env.do(t, http.MethodPost, "/api/v1/reviews", ownerToken, map[string]interface{}{
		"gameId": game.ID, "text": "mine", "rating": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	review := decode[handler.ReviewResponse](t, w)

	w = env.do(t, http.MethodPut, "/api/v1/reviews/"+review.ID, otherToken, map[string]interface{}{"rating": 5})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodDelete, "/api/v1/reviews/"+review.ID, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Ownership is decided before the body is validated.
	w = env.do(t, http.MethodPut, "/api/v1/reviews/"+review.ID, otherToken, map[string]interface{}{"rating": 9})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = env.do(t, http.MethodPut, "/api/v1/reviews/"+review.ID, otherToken, map[string]interface{}{"text": "  "})
	assert.Equal(t, http.StatusForbidden, w.Code)

	g := env.game(t, game.ID)
	assert.Equal(t, 2.0, g.RatingValue)
	assert.EqualValues(t, 1, g.ReviewsCount)

	w = env.do(t, http.MethodPut, "/api/v1/reviews/missing", ownerToken, map[string]interface{}{"rating": 5})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(t, http.MethodDelete, "/api/v1/reviews/missing", ownerToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateReviewRecomputesRating(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.user(t, "editor")
	other, _ := env.user(t, "bystander")
	game := testutil.CreateGame(t, env.db, "Edited")
	testutil.CreateReview(t, env.db, game.ID, other.ID, 4)

	w := env.do(t, http.MethodPost, "/api/v1/reviews", token, map[string]interface{}{
		"gameId": game.ID, "text": "meh", "rating": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	review := decode[handler.ReviewResponse](t, w)
	assert.Equal(t, 2.5, env.game(t, game.ID).RatingValue)

	w = env.do(t, http.MethodPut, "/api/v1/reviews/"+review.ID, token, map[string]interface{}{"rating": 4.5})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, "/api/v1/reviews/"+review.ID, token, map[string]interface{}{
		"text": "grew on me", "rating": 5,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[handler.ReviewResponse](t, w)
	assert.Equal(t, "grew on me", updated.Text)
	assert.Equal(t, 5, updated.Rating)

	g := env.game(t, game.ID)
	assert.Equal(t, 4.5, g.RatingValue)
	assert.EqualValues(t, 2, g.ReviewsCount)
}

func TestGetReviewsByGame(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.user(t, "writer")
	game := testutil.CreateGame(t, env.db, "Listed")

	displayName := "The Writer"
	require.NoError(t, env.db.Model(&models.User{}).Where("username = ?", "writer").Update("display_name", displayName).Error)

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/v1/reviews", token, map[string]interface{}{
		"gameId": game.ID, "text": "nice", "rating": 4,
	}).Code)

	w := env.do(t, http.MethodGet, "/api/v1/reviews/games/"+game.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	reviews := decode[[]handler.ReviewResponse](t, w)
	require.Len(t, reviews, 1)
	assert.Equal(t, displayName, reviews[0].UserName)
	assert.Equal(t, "writer", reviews[0].Handle)

	w = env.do(t, http.MethodGet, "/api/v1/reviews/games/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
