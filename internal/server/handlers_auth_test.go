package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func register(t *testing.T, srv *Server, email string) string {
	t.Helper()
	rec, env := do(t, srv, http.MethodPost, "/api/auth/register", map[string]string{
		"email":    email,
		"password": "correct-horse",
		"name":     "Test User",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var data struct {
		Token string `json:"token"`
	}
	decodeData(t, env, &data)
	require.NotEmpty(t, data.Token)
	return data.Token
}

func TestAuthRegisterAndLogin(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "Alice@Example.com")

	rec, env := do(t, srv, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "correct-horse",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		Token string                 `json:"token"`
		User  map[string]interface{} `json:"user"`
	}
	decodeData(t, env, &data)
	assert.NotEmpty(t, data.Token)
	assert.Equal(t, "alice@example.com", data.User["email"])
	assert.NotContains(t, rec.Body.String(), "password_hash")

	_, claims, err := validateJWT(data.Token, []byte("test-secret"))
	require.NoError(t, err)
	assert.Equal(t, data.User["user_id"], claims["sub"])
	assert.Equal(t, tokenIssuer, claims["iss"])
}

func TestAuthRegister_Validation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body map[string]string
		code string
	}{
		{"bad email", map[string]string{"email": "nope", "password": "correct-horse"}, "email"},
		{"short password", map[string]string{"email": "a@b.com", "password": "short"}, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, srv, http.MethodPost, "/api/auth/register", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, env.Code)
		})
	}
}

func TestAuthRegister_DuplicateEmail(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "bob@example.com")

	rec, _ := do(t, srv, http.MethodPost, "/api/auth/register", map[string]string{
		"email":    "BOB@example.com",
		"password": "another-password",
	}, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAuthLogin_WrongPassword(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "carol@example.com")

	rec, _ := do(t, srv, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "carol@example.com",
		"password": "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = do(t, srv, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "correct-horse",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBearer_InvalidToken(t *testing.T) {
	srv := newTestServer(t)

	rec, _ := do(t, srv, http.MethodGet, "/api/wallets", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
}

func TestUserMeAndSettings(t *testing.T) {
	srv := newTestServer(t)

	rec, _ := do(t, srv, http.MethodGet, "/api/users/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := register(t, srv, "dave@example.com")

	rec, env := do(t, srv, http.MethodPut, "/api/users/me/settings", map[string]string{"display_currency": "usd"}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var settings map[string]string
	decodeData(t, env, &settings)
	assert.Equal(t, "USD", settings["display_currency"])

	rec, _ = do(t, srv, http.MethodPut, "/api/users/me/settings", map[string]string{"display_currency": "XXZ"}, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = do(t, srv, http.MethodGet, "/api/users/me", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	var me struct {
		Email    string            `json:"email"`
		Settings map[string]string `json:"settings"`
	}
	decodeData(t, env, &me)
	assert.Equal(t, "dave@example.com", me.Email)
	assert.Equal(t, "USD", me.Settings["display_currency"])
}
