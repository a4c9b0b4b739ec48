package handlers

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"profile-service/config"
	"profile-service/db"
	"profile-service/middleware"
	"profile-service/models"
	"profile-service/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	generateFromPassword   = bcrypt.GenerateFromPassword
	compareHashAndPassword = bcrypt.CompareHashAndPassword
	generateToken          = utils.GenerateToken
)

// AuthHandler issues stub access tokens. Nothing in the profile flow requires
// one; the endpoints exist for clients that want to authenticate.
type AuthHandler struct {
	cfg config.Config
}

func NewAuthHandler(cfg config.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

func (h *AuthHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json")
	var account models.Account
	if err := json.NewDecoder(r.Body).Decode(&account); err != nil {
		return middleware.NewAppError(http.StatusBadRequest, "Invalid request payload", err)
	}

	if account.Username == "" || account.Password == "" {
		return middleware.NewAppError(http.StatusBadRequest, "Username and password are required", nil)
	}

	hashedPassword, err := generateFromPassword([]byte(account.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return middleware.NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}

	_, err = db.DB.Exec("INSERT INTO accounts (id, username, password_hash, created_at) VALUES ($1, $2, $3, $4)",
		uuid.NewString(), account.Username, string(hashedPassword), time.Now().UTC())
	if err != nil {
		log.Printf("Error inserting account into database: %v", err)
		return middleware.NewAppError(http.StatusConflict, "Account already exists or database error", err)
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(JSONResponse{"message": "Account registered successfully"})
	return nil
}

func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json")
	var account models.Account
	if err := json.NewDecoder(r.Body).Decode(&account); err != nil {
		return middleware.NewAppError(http.StatusBadRequest, "Invalid request payload", err)
	}

	if account.Username == "" || account.Password == "" {
		return middleware.NewAppError(http.StatusBadRequest, "Username and password are required", nil)
	}

	var storedPassword string
	err := db.DB.QueryRow("SELECT password_hash FROM accounts WHERE username = $1", account.Username).Scan(&storedPassword)
	if err != nil {
		if err == sql.ErrNoRows {
			return middleware.NewAppError(http.StatusUnauthorized, "Invalid username or password", err)
		}
		log.Printf("Database error: %v", err)
		return middleware.NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}

	if err := compareHashAndPassword([]byte(storedPassword), []byte(account.Password)); err != nil {
		return middleware.NewAppError(http.StatusUnauthorized, "Invalid username or password", err)
	}

	accessToken, err := generateToken(utils.Claims{Username: account.Username},
		h.cfg.Auth.AccessTokenTTL, h.cfg.Auth.Issuer, h.cfg.Auth.AccessTokenSecret)
	if err != nil {
		log.Printf("Error issuing token: %v", err)
		return middleware.NewAppError(http.StatusInternalServerError, "Could not generate token", err)
	}

	json.NewEncoder(w).Encode(JSONResponse{
		"message":      "Login successful",
		"access_token": accessToken,
		"token_type":   "Bearer",
		"expires_in":   int(h.cfg.Auth.AccessTokenTTL.Seconds()),
	})
	return nil
}

func (h *AuthHandler) MeHandler(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json")

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return middleware.NewAppError(http.StatusUnauthorized, "Not authenticated", nil)
	}

	json.NewEncoder(w).Encode(JSONResponse{"username": claims.Username})
	return nil
}
