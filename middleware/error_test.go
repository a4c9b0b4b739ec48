package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorHandlerAppError(t *testing.T) {
	handler := ErrorHandler(func(w http.ResponseWriter, r *http.Request) error {
		return NewAppError(http.StatusNotFound, "User not found", errors.New("no row"))
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/users/name/nobody", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]string
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "User not found", body["error"])
}

func TestErrorHandlerUnknownError(t *testing.T) {
	handler := ErrorHandler(func(w http.ResponseWriter, r *http.Request) error {
		return errors.New("boom")
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/users", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestErrorHandlerSuccess(t *testing.T) {
	handler := ErrorHandler(func(w http.ResponseWriter, r *http.Request) error {
		w.WriteHeader(http.StatusNoContent)
		return nil
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("DELETE", "/users/octocat", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestErrorHandlerPanicRecovery(t *testing.T) {
	handler := ErrorHandler(func(w http.ResponseWriter, r *http.Request) error {
		panic("unexpected")
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/users", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestErrorHandlerDoesNotOverwriteWrittenHeader(t *testing.T) {
	handler := ErrorHandler(func(w http.ResponseWriter, r *http.Request) error {
		w.WriteHeader(http.StatusAccepted)
		return NewAppError(http.StatusBadRequest, "too late", nil)
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/users", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestAppErrorUnwrap(t *testing.T) {
	inner := errors.New("inner")
	appErr := NewAppError(http.StatusBadRequest, "bad request", inner)
	assert.ErrorIs(t, appErr, inner)
	assert.Equal(t, "inner", appErr.Error())

	noInner := NewAppError(http.StatusBadRequest, "bad request", nil)
	assert.Equal(t, "bad request", noInner.Error())
}
