package handlers

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/Shadow-TermDev/whats-links-backend/internal/services"
)

func TestAuthRequired(t *testing.T) {
	h, _ := setupTestHandler(t)
	r := setupTestRouter(h)

	t.Run("missing header", func(t *testing.T) {
		w := doRequest(r, "GET", "/api/links", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "authorization token required")
	})

	t.Run("malformed header", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/links", nil)
		req.Header.Set("Authorization", "just-a-token")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		w := doRequest(r, "GET", "/api/links", "garbage.token.here", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid or expired token")
	})

	t.Run("valid token", func(t *testing.T) {
		tok := loginAs(t, r, "mwuser", "password123")
		w := doRequest(r, "GET", "/api/links", tok, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequestID(t *testing.T) {
	h, _ := setupTestHandler(t)
	r := setupTestRouter(h)

	t.Run("generated when absent", func(t *testing.T) {
		w := doRequest(r, "GET", "/health", "", nil)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("echoed when provided", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/health", nil)
		req.Header.Set("X-Request-ID", "fixed-id")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "fixed-id", w.Header().Get("X-Request-ID"))
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	h, _ := setupTestHandler(t)
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	limiter := services.NewIPRateLimiter(1, 2, logger)
	r := h.SetupRouter(limiter)

	codes := []int{}
	for i := 0; i < 3; i++ {
		w := doRequest(r, "GET", "/health", "", nil)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	assert.Equal(t, http.StatusTooManyRequests, codes[2])
}
