package routes_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"profile-service/config"
	"profile-service/github"
	"profile-service/handlers"
	"profile-service/models"
	"profile-service/repository"
	"profile-service/routes"
	"profile-service/service"

	"github.com/stretchr/testify/assert"
)

type emptyRepository struct{}

func (emptyRepository) FindByHandle(context.Context, string) (models.Profile, error) {
	return models.Profile{}, repository.ErrNotFound
}

func (emptyRepository) FindOrCreate(_ context.Context, profile models.Profile) (models.Profile, error) {
	return profile, nil
}

func (emptyRepository) Update(context.Context, string, repository.ProfilePatch) (models.Profile, error) {
	return models.Profile{}, repository.ErrNotFound
}

func (emptyRepository) SoftDelete(context.Context, string) error {
	return repository.ErrNotFound
}

func (emptyRepository) Search(context.Context, repository.Filter, string) ([]models.Profile, error) {
	return []models.Profile{}, nil
}

func (emptyRepository) ListAll(context.Context, string) ([]models.Profile, error) {
	return []models.Profile{}, nil
}

type emptySource struct{}

func (emptySource) GetUser(context.Context, string) (github.User, error) {
	return github.User{}, github.ErrUserNotFound
}

func (emptySource) GetFollowers(context.Context, string) ([]github.Account, error) {
	return nil, nil
}

func (emptySource) GetFollowing(context.Context, string) ([]github.Account, error) {
	return nil, nil
}

func (emptySource) GetRepos(context.Context, string) ([]models.Repo, error) {
	return nil, nil
}

func setupTestRouter() http.Handler {
	cfg := config.Config{
		Auth: config.AuthConfig{
			AccessTokenSecret: []byte("test-secret"),
			Issuer:            "test-issuer",
			AccessTokenTTL:    time.Minute,
		},
	}
	svc := service.NewProfileService(emptyRepository{}, emptySource{}, time.Minute)
	return routes.SetupRoutes(cfg, handlers.NewProfileHandler(svc), handlers.NewAuthHandler(cfg))
}

func TestHealthRoute(t *testing.T) {
	router := setupTestRouter()
	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListRoute(t *testing.T) {
	router := setupTestRouter()
	req := httptest.NewRequest("GET", "/users", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestGetByHandleRouteNotFound(t *testing.T) {
	router := setupTestRouter()
	req := httptest.NewRequest("GET", "/users/name/nobody", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMutualFriendsRoute(t *testing.T) {
	router := setupTestRouter()
	req := httptest.NewRequest("GET", "/users/mutual-friends/octocat", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"mutual":[]}`, rec.Body.String())
}

func TestUpdateRouteMethodMatters(t *testing.T) {
	router := setupTestRouter()
	req := httptest.NewRequest("PATCH", "/users/octocat", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMeRouteRequiresToken(t *testing.T) {
	router := setupTestRouter()
	req := httptest.NewRequest("GET", "/auth/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
