package repository

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Shadow-TermDev/whats-links-backend/internal/config"
	"github.com/Shadow-TermDev/whats-links-backend/internal/models"
	"github.com/Shadow-TermDev/whats-links-backend/pkg/utils"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

func newTestEngines(t *testing.T) map[string]Engine {
	t.Helper()
	dir := t.TempDir()

	disk, err := NewDiskEngine(filepath.Join(dir, "disk.sqlite"), testLogger())
	if err != nil {
		t.Fatalf("disk engine: %v", err)
	}
	mem, err := NewMemoryEngine(filepath.Join(dir, "snapshot.sqlite"), testLogger())
	if err != nil {
		t.Fatalf("memory engine: %v", err)
	}

	engines := map[string]Engine{"disk": disk, "memory": mem}
	for name, e := range engines {
		if err := e.Initialize(); err != nil {
			t.Fatalf("initialize %s: %v", name, err)
		}
	}
	t.Cleanup(func() {
		for _, e := range engines {
			e.Close()
		}
	})
	return engines
}

// Both engines must behave identically behind the contract, so every case
// here runs against both.
func TestEngineContract(t *testing.T) {
	for name, e := range newTestEngines(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("initialize is idempotent", func(t *testing.T) {
				assert.NoError(t, e.Initialize())
			})

			t.Run("insert returns identity", func(t *testing.T) {
				res, err := e.Write(
					"INSERT INTO users (username, password, role, created_at) VALUES (?, ?, ?, ?)",
					"alice", "hash", models.RoleUser, "2026-01-01T00:00:00Z",
				)
				assert.NoError(t, err)
				assert.Equal(t, int64(1), res.RowsAffected)
				assert.Greater(t, res.LastInsertID, int64(0))
			})

			t.Run("read decodes typed rows", func(t *testing.T) {
				var users []models.User
				err := e.Read(&users, "SELECT id, username, password, role FROM users WHERE username = ?", "alice")
				assert.NoError(t, err)
				assert.Len(t, users, 1)
				assert.Equal(t, "alice", users[0].Username)
				assert.Equal(t, "hash", users[0].PasswordHash)
			})

			t.Run("read with no rows leaves dest zero", func(t *testing.T) {
				var user models.User
				err := e.Read(&user, "SELECT id FROM users WHERE username = ?", "nobody")
				assert.NoError(t, err)
				assert.Zero(t, user.ID)
			})

			t.Run("unique violation maps to ErrConstraint", func(t *testing.T) {
				_, err := e.Write(
					"INSERT INTO users (username, password, role, created_at) VALUES (?, ?, ?, ?)",
					"alice", "hash2", models.RoleUser, "2026-01-01T00:00:00Z",
				)
				assert.ErrorIs(t, err, ErrConstraint)
			})

			t.Run("composite link uniqueness", func(t *testing.T) {
				_, err := e.Write(
					"INSERT INTO links (user_id, name, url, type, created_at) VALUES (?, ?, ?, ?, ?)",
					1, "t1", "http://x", models.LinkTypeCanal, "2026-01-01T00:00:00Z",
				)
				assert.NoError(t, err)

				_, err = e.Write(
					"INSERT INTO links (user_id, name, url, type, created_at) VALUES (?, ?, ?, ?, ?)",
					1, "again", "http://x", models.LinkTypeCanal, "2026-01-01T00:00:00Z",
				)
				assert.ErrorIs(t, err, ErrConstraint)

				// A different user may submit the same URL.
				_, err = e.Write(
					"INSERT INTO links (user_id, name, url, type, created_at) VALUES (?, ?, ?, ?, ?)",
					2, "other", "http://x", models.LinkTypeCanal, "2026-01-01T00:00:00Z",
				)
				assert.NoError(t, err)
			})

			t.Run("malformed sql maps to ErrStorage", func(t *testing.T) {
				_, err := e.Write("INSERT INTO nowhere VALUES (1)")
				assert.ErrorIs(t, err, ErrStorage)
				assert.NotErrorIs(t, err, ErrConstraint)
			})

			t.Run("delete reports zero rows affected", func(t *testing.T) {
				res, err := e.Write("DELETE FROM links WHERE id = ? AND user_id = ?", 9999, 1)
				assert.NoError(t, err)
				assert.Zero(t, res.RowsAffected)
			})
		})
	}
}

func TestSeedAdmin(t *testing.T) {
	for name, e := range newTestEngines(t) {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, e.SeedAdmin("root", "admingod123"))

			var admin models.User
			assert.NoError(t, e.Read(&admin, "SELECT id, username, password, role FROM users WHERE username = ?", "root"))
			assert.NotZero(t, admin.ID)
			assert.Equal(t, models.RoleAdmin, admin.Role)
			assert.True(t, utils.CheckPasswordHash("admingod123", admin.PasswordHash))

			// Re-seeding an existing username is a non-error no-op.
			assert.NoError(t, e.SeedAdmin("root", "different-password"))
			var count int64
			assert.NoError(t, e.Read(&count, "SELECT count(*) FROM users WHERE username = ?", "root"))
			assert.Equal(t, int64(1), count)

			// Missing credentials skip seeding without failing.
			assert.NoError(t, e.SeedAdmin("", ""))
			assert.NoError(t, e.SeedAdmin("root2", ""))
			assert.NoError(t, e.Read(&count, "SELECT count(*) FROM users"))
			assert.Equal(t, int64(1), count)
		})
	}
}

func TestNewEngine(t *testing.T) {
	dir := t.TempDir()

	t.Run("sqlite url", func(t *testing.T) {
		e, err := NewEngine(config.Config{DatabaseURL: "sqlite://" + filepath.Join(dir, "d.sqlite")}, testLogger())
		assert.NoError(t, err)
		assert.IsType(t, &DiskEngine{}, e)
		e.Close()
	})

	t.Run("memory url", func(t *testing.T) {
		e, err := NewEngine(config.Config{DatabaseURL: "memory://" + filepath.Join(dir, "s.sqlite")}, testLogger())
		assert.NoError(t, err)
		assert.IsType(t, &MemoryEngine{}, e)
		e.Close()
	})

	t.Run("unsupported url", func(t *testing.T) {
		_, err := NewEngine(config.Config{DatabaseURL: "postgres://nope"}, testLogger())
		assert.Error(t, err)
	})
}
