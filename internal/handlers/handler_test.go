package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Shadow-TermDev/whats-links-backend/internal/config"
	"github.com/Shadow-TermDev/whats-links-backend/internal/repository"
	"github.com/Shadow-TermDev/whats-links-backend/internal/services"
	"github.com/Shadow-TermDev/whats-links-backend/internal/token"
)

func setupTestHandler(t *testing.T) (*Handler, repository.Engine) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	eng, err := repository.NewMemoryEngine(filepath.Join(t.TempDir(), "snapshot.sqlite"), logger)
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	if err := eng.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	t.Cleanup(func() { eng.Close() })

	tokens := token.NewManager("test-secret-12345678901234567890123456789012")
	directory := services.NewDirectoryService(eng, tokens, logger)
	cfg := config.Config{CORSOrigin: "*"}

	return NewHandler(cfg, logger, directory, tokens), eng
}

func setupTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return h.SetupRouter(nil)
}

func doRequest(r *gin.Engine, method, path, bearer string, body any) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		buf = bytes.NewBuffer(jsonBody)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// loginAs registers (best effort) and logs the user in, returning the token.
func loginAs(t *testing.T, r *gin.Engine, username, password string) string {
	t.Helper()
	doRequest(r, "POST", "/api/auth/register", "", map[string]string{
		"username": username,
		"password": password,
	})

	w := doRequest(r, "POST", "/api/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %s", username, w.Code, w.Body.String())
	}

	var res map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("login response: %v", err)
	}
	return res["token"]
}

func seedAdminToken(t *testing.T, r *gin.Engine, eng repository.Engine) string {
	t.Helper()
	if err := eng.SeedAdmin("root", "admingod123"); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	return loginAs(t, r, "root", "admingod123")
}
