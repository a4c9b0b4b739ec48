package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"profile-service/config"
	"profile-service/utils"

	"github.com/stretchr/testify/assert"
)

func authTestConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			AccessTokenSecret: []byte("test-secret"),
			Issuer:            "test-issuer",
			AccessTokenTTL:    time.Minute,
		},
	}
}

func protectedHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		assert.True(t, ok)
		assert.Equal(t, "octocat", claims.Username)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	cfg := authTestConfig()
	token, err := utils.GenerateToken(utils.Claims{Username: "octocat"}, time.Minute, cfg.Auth.Issuer, cfg.Auth.AccessTokenSecret)
	assert.NoError(t, err)

	req := httptest.NewRequest("GET", "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	AuthMiddleware(cfg)(protectedHandler(t)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	req := httptest.NewRequest("GET", "/auth/me", nil)
	rec := httptest.NewRecorder()

	AuthMiddleware(authTestConfig())(protectedHandler(t)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	req := httptest.NewRequest("GET", "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()

	AuthMiddleware(authTestConfig())(protectedHandler(t)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestClaimsRoundTripThroughContext(t *testing.T) {
	claims := &utils.Claims{Username: "octocat"}
	ctx := ContextWithClaims(httptest.NewRequest("GET", "/", nil).Context(), claims)

	got, ok := ClaimsFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, claims, got)
}
