package router

import (
	"net/http"
	"testing"

	"guild/backend/internal/handler"
	"guild/backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	t.Run("Success", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
			"username":    "  Alice ",
			"email":       "Alice@Example.com",
			"password":    "secret1",
			"displayName": "Alice A.",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		resp := decode[handler.AuthResponse](t, w)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "alice", resp.User.Username)
		assert.Equal(t, "alice@example.com", resp.User.Email)
		assert.Equal(t, "user", resp.User.Role)
		assert.NotContains(t, w.Body.String(), "password")

		me := env.do(t, http.MethodGet, "/api/v1/users/me", resp.Token, nil)
		require.Equal(t, http.StatusOK, me.Code)
		assert.Equal(t, resp.User.ID, decode[handler.PrivateUserResponse](t, me).ID)
	})

	t.Run("Duplicate email", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
			"username": "alice2",
			"email":    "alice@example.com",
			"password": "secret1",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Duplicate username", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
			"username": "ALICE",
			"email":    "other@example.com",
			"password": "secret1",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Short password", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
			"username": "bob",
			"email":    "bob@example.com",
			"password": "12345",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Missing fields", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{"username": "bob"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	user, _ := env.user(t, "carol")

	t.Run("Success", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email":    "CAROL@example.com",
			"password": testutil.TestPassword,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		resp := decode[handler.AuthResponse](t, w)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, user.ID, resp.User.ID)
	})

	t.Run("Wrong password and unknown email look the same", func(t *testing.T) {
		wrong := env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email":    "carol@example.com",
			"password": "not-the-password",
		})
		unknown := env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email":    "nobody@example.com",
			"password": "not-the-password",
		})

		assert.Equal(t, http.StatusUnauthorized, wrong.Code)
		assert.Equal(t, http.StatusUnauthorized, unknown.Code)
		assert.JSONEq(t, `{"error":"Invalid credentials"}`, wrong.Body.String())
		assert.JSONEq(t, wrong.Body.String(), unknown.Body.String())
	})

	t.Run("Missing fields", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "carol@example.com"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.user(t, "dave")

	change := func(current, next, confirm string) int {
		return env.do(t, http.MethodPost, "/api/v1/auth/change-password", token, map[string]string{
			"currentPassword": current,
			"newPassword":     next,
			"confirmPassword": confirm,
		}).Code
	}

	assert.Equal(t, http.StatusBadRequest, change(testutil.TestPassword, "newsecret", "different"))
	assert.Equal(t, http.StatusBadRequest, change(testutil.TestPassword, "short", "short"))
	assert.Equal(t, http.StatusUnauthorized, change("wrong-password", "newsecret", "newsecret"))
	assert.Equal(t, http.StatusOK, change(testutil.TestPassword, "newsecret", "newsecret"))

	login := func(password string) int {
		return env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email":    "dave@example.com",
			"password": password,
		}).Code
	}
	assert.Equal(t, http.StatusUnauthorized, login(testutil.TestPassword))
	assert.Equal(t, http.StatusOK, login("newsecret"))
}
