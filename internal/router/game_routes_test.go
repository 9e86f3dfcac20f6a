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

func TestListAndSearchGames(t *testing.T) {
	env := newTestEnv(t)
	for _, title := range []string{"Hollow Knight", "Hades", "Celeste"} {
		testutil.CreateGame(t, env.db, title)
	}

	w := env.do(t, http.MethodGet, "/api/v1/games?page=1&limit=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[handler.PaginatedResponse[handler.GameResponse]](t, w)
	assert.Len(t, page.Data, 2)
	assert.EqualValues(t, 3, page.Meta.TotalItems)
	assert.Equal(t, 2, page.Meta.TotalPages)
	assert.Equal(t, "Celeste", page.Data[0].Title, "newest first")
	assert.Equal(t, "Hades", page.Data[1].Title)

	w = env.do(t, http.MethodGet, "/api/v1/games/search?q=HOL", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	found := decode[[]handler.GameResponse](t, w)
	require.Len(t, found, 1)
	assert.Equal(t, "Hollow Knight", found[0].Title)

	w = env.do(t, http.MethodGet, "/api/v1/games/search?q=", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestNewGames(t *testing.T) {
	env := newTestEnv(t)
	for title, date := range map[string]string{"Old": "2001-01-01", "Newer": "2020-05-01", "Newest": "2024-09-12"} {
		game := testutil.CreateGame(t, env.db, title)
		require.NoError(t, env.db.Model(&game).Update("release_date", date).Error)
	}
	testutil.CreateGame(t, env.db, "Undated")

	w := env.do(t, http.MethodGet, "/api/v1/games/new?limit=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	games := decode[[]handler.GameResponse](t, w)
	require.Len(t, games, 2)
	assert.Equal(t, "Newest", games[0].Title)
	assert.Equal(t, "Newer", games[1].Title)
}

func TestCreateGame(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.user(t, "curator")

	w := env.do(t, http.MethodPost, "/api/v1/games", token, map[string]interface{}{
		"title":  "Outer Wilds",
		"images": []string{"https://img.example.com/ow.png"},
		"genres": "Adventure",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	game := decode[handler.GameResponse](t, w)
	assert.Equal(t, "Outer Wilds", game.Title)
	assert.Equal(t, []string{"https://img.example.com/ow.png"}, game.Images)
	assert.Equal(t, 0.0, game.RatingValue)

	w = env.do(t, http.MethodPost, "/api/v1/games", token, map[string]interface{}{"title": "No images", "images": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/games", token, map[string]interface{}{"images": []string{"x.png"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetGameByIDFavoriteFlag(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.user(t, "fan")
	game := testutil.CreateGame(t, env.db, "Loved")

	w := env.do(t, http.MethodGet, "/api/v1/games/"+game.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[handler.GameResponse](t, w).IsFavorite)

	w = env.do(t, http.MethodGet, "/api/v1/games/"+game.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	flag := decode[handler.GameResponse](t, w).IsFavorite
	require.NotNil(t, flag)
	assert.False(t, *flag)

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/v1/favorites", token, map[string]string{"gameId": game.ID}).Code)

	w = env.do(t, http.MethodGet, "/api/v1/games/"+game.ID, token, nil)
	flag = decode[handler.GameResponse](t, w).IsFavorite
	require.NotNil(t, flag)
	assert.True(t, *flag)

	w = env.do(t, http.MethodGet, "/api/v1/games/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecalculateGameRatings(t *testing.T) {
	env := newTestEnv(t)
	user, token := env.user(t, "plain")
	admin, adminToken := env.user(t, "root")
	require.NoError(t, env.db.Model(&admin).Update("role", models.RoleAdmin).Error)

	game := testutil.CreateGame(t, env.db, "Drifted")
	testutil.CreateReview(t, env.db, game.ID, user.ID, 4)
	testutil.CreateReview(t, env.db, game.ID, admin.ID, 5)

	w := env.do(t, http.MethodPost, "/api/v1/games/recalculate-ratings", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/games/recalculate-ratings", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, decode[handler.RecalculateResponse](t, w).GamesProcessed)

	g := env.game(t, game.ID)
	assert.Equal(t, 4.5, g.RatingValue)
	assert.EqualValues(t, 2, g.ReviewsCount)
}

func TestFavorites(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.user(t, "collector")
	game := testutil.CreateGame(t, env.db, "Kept")

	status := func() bool {
		w := env.do(t, http.MethodGet, "/api/v1/favorites/"+game.ID+"/status", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		return decode[handler.FavoriteStatusResponse](t, w).IsFavorite
	}
	assert.False(t, status())

	w := env.do(t, http.MethodPost, "/api/v1/favorites", token, map[string]string{"gameId": game.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Kept", decode[handler.FavoriteResponse](t, w).Game.Title)
	assert.True(t, status())

	w = env.do(t, http.MethodPost, "/api/v1/favorites", token, map[string]string{"gameId": game.ID})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/favorites", token, map[string]string{"gameId": "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/favorites", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	favorites := decode[[]handler.FavoriteResponse](t, w)
	require.Len(t, favorites, 1)
	assert.Equal(t, game.ID, favorites[0].GameID)

	w = env.do(t, http.MethodDelete, "/api/v1/favorites/"+game.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, status())

	w = env.do(t, http.MethodDelete, "/api/v1/favorites/"+game.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
