package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"meal-admin/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRespondErrorStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid", fmt.Errorf("line 1: %w", services.ErrInvalidInput), http.StatusBadRequest},
		{"login", services.ErrInvalidLogin, http.StatusUnauthorized},
		{"forbidden", services.ErrForbidden, http.StatusForbidden},
		{"disabled", services.ErrAccountDisabled, http.StatusForbidden},
		{"not found", fmt.Errorf("menu: %w", services.ErrNotFound), http.StatusNotFound},
		{"conflict", services.ErrConflict, http.StatusConflict},
		{"finalized", fmt.Errorf("line 2: %w", services.ErrMenuFinalized), http.StatusConflict},
		{"throttled", &services.ThrottledError{WaitSeconds: 8}, http.StatusTooManyRequests},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			respondError(c, tt.err)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRespondErrorHidesInternalDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	respondError(c, errors.New("pq: password authentication failed"))
	assert.NotContains(t, w.Body.String(), "password")

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	respondError(c, &services.ThrottledError{WaitSeconds: 8})
	assert.Equal(t, "8", w.Header().Get("Retry-After"))
}
