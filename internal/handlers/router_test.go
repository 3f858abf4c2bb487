package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouter(t *testing.T) {
	h, _ := setupTestHandler(t)
	r := setupTestRouter(h)

	t.Run("health", func(t *testing.T) {
		w := doRequest(r, "GET", "/health", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "healthy")
	})

	t.Run("root", func(t *testing.T) {
		w := doRequest(r, "GET", "/", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown route", func(t *testing.T) {
		w := doRequest(r, "GET", "/nope", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
