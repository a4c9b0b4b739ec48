package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"profile-service/config"
	"profile-service/db"
	"profile-service/handlers"
	"profile-service/middleware"
	"profile-service/models"
	"profile-service/utils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func setupMockDB() (sqlmock.Sqlmock, func()) {
	mockDB, mock, _ := sqlmock.New()
	db.DB = mockDB
	return mock, func() { mockDB.Close() }
}

func authConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			AccessTokenSecret: []byte("access-secret"),
			Issuer:            "test-issuer",
			AccessTokenTTL:    time.Minute,
		},
	}
}

func TestRegisterHandler(t *testing.T) {
	mock, cleanup := setupMockDB()
	defer cleanup()

	mock.ExpectExec("INSERT INTO accounts").
		WithArgs(sqlmock.AnyArg(), "testuser", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	handler := handlers.NewAuthHandler(authConfig())
	body, err := json.Marshal(models.Account{Username: "testuser", Password: "password"})
	assert.NoError(t, err)

	req := httptest.NewRequest("POST", "/auth/register", bytes.NewBuffer(body))
	rec := executeRequest(handler.RegisterHandler, req, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterHandlerInvalidJSON(t *testing.T) {
	handler := handlers.NewAuthHandler(authConfig())
	req := httptest.NewRequest("POST", "/auth/register", bytes.NewBufferString("{invalid-json"))
	rec := executeRequest(handler.RegisterHandler, req, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterHandlerMissingFields(t *testing.T) {
	handler := handlers.NewAuthHandler(authConfig())
	body, _ := json.Marshal(models.Account{Username: "testuser"})
	req := httptest.NewRequest("POST", "/auth/register", bytes.NewBuffer(body))
	rec := executeRequest(handler.RegisterHandler, req, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginHandler(t *testing.T) {
	mock, cleanup := setupMockDB()
	defer cleanup()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	assert.NoError(t, err)

	mock.ExpectQuery(`SELECT password_hash FROM accounts WHERE username = \$1`).
		WithArgs("testuser").
		WillReturnRows(sqlmock.NewRows([]string{"password_hash"}).AddRow(string(hashedPassword)))

	handler := handlers.NewAuthHandler(authConfig())
	body, _ := json.Marshal(models.Account{Username: "testuser", Password: "password"})
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewBuffer(body))
	rec := executeRequest(handler.LoginHandler, req, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.NotEmpty(t, response["access_token"])
	assert.Equal(t, "Bearer", response["token_type"])
}

func TestLoginHandlerWrongPassword(t *testing.T) {
	mock, cleanup := setupMockDB()
	defer cleanup()

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("different_password"), bcrypt.DefaultCost)
	mock.ExpectQuery(`SELECT password_hash FROM accounts WHERE username = \$1`).
		WithArgs("testuser").
		WillReturnRows(sqlmock.NewRows([]string{"password_hash"}).AddRow(string(hashedPassword)))

	handler := handlers.NewAuthHandler(authConfig())
	body, _ := json.Marshal(models.Account{Username: "testuser", Password: "password"})
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewBuffer(body))
	rec := executeRequest(handler.LoginHandler, req, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginHandlerUnknownUser(t *testing.T) {
	mock, cleanup := setupMockDB()
	defer cleanup()

	mock.ExpectQuery(`SELECT password_hash FROM accounts WHERE username = \$1`).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"password_hash"}))

	handler := handlers.NewAuthHandler(authConfig())
	body, _ := json.Marshal(models.Account{Username: "nobody", Password: "password"})
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewBuffer(body))
	rec := executeRequest(handler.LoginHandler, req, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeHandler(t *testing.T) {
	handler := handlers.NewAuthHandler(authConfig())

	req := httptest.NewRequest("GET", "/auth/me", nil)
	rec := executeRequest(handler.MeHandler, req, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	claims := &utils.Claims{Username: "testuser"}
	req = req.WithContext(middleware.ContextWithClaims(req.Context(), claims))
	rec = executeRequest(handler.MeHandler, req, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthHandler(t *testing.T) {
	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	handlers.HealthHandler(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
