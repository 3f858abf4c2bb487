// Package repository implements the storage contract behind the directory
// service. Two interchangeable engines share it: a file-backed sqlite engine
// whose writes are durable as they commit, and an in-memory engine that must
// be explicitly persisted to a snapshot file after every mutation. The
// engines execute SQL and report failures; authorization decisions never
// happen here.
package repository

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/Shadow-TermDev/whats-links-backend/internal/config"
	"github.com/Shadow-TermDev/whats-links-backend/internal/models"
	"github.com/Shadow-TermDev/whats-links-backend/pkg/utils"
)

var (
	// ErrConstraint marks unique-key and foreign-key violations. Callers treat
	// a constraint rejection on a racing write exactly like a pre-check
	// failure.
	ErrConstraint = errors.New("constraint violation")

	// ErrStorage marks every other engine failure. Not user-correctable.
	ErrStorage = errors.New("storage failure")
)

// Result reports the outcome of a Write. LastInsertID is only meaningful
// after an INSERT.
type Result struct {
	LastInsertID int64
	RowsAffected int64
}

// Engine is the storage contract shared by both backends.
//
// Persist is a no-op on the disk engine; the in-memory engine loses every
// mutation not followed by Persist, and invoking it is deliberately the
// caller's job so the durability point is visible at the call site. Lock and
// Unlock bracket mutate+persist sequences; the disk engine implements them as
// no-ops because its storage layer already serializes writers.
type Engine interface {
	Initialize() error
	SeedAdmin(username, rawPassword string) error
	Read(dest any, query string, args ...any) error
	Write(query string, args ...any) (Result, error)
	Persist() error
	Lock()
	Unlock()
	Close() error
}

// NewEngine selects the storage engine from the configured URL.
func NewEngine(cfg config.Config, logger *slog.Logger) (Engine, error) {
	switch {
	case strings.HasPrefix(cfg.DatabaseURL, "sqlite://"):
		return NewDiskEngine(strings.TrimPrefix(cfg.DatabaseURL, "sqlite://"), logger)
	case strings.HasPrefix(cfg.DatabaseURL, "memory://"):
		return NewMemoryEngine(strings.TrimPrefix(cfg.DatabaseURL, "memory://"), logger)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.DatabaseURL)
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY,
	username TEXT UNIQUE NOT NULL,
	password TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'user',
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS categories (
	id INTEGER PRIMARY KEY,
	name TEXT UNIQUE NOT NULL,
	created_by INTEGER,
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (created_by) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS links (
	id INTEGER PRIMARY KEY,
	user_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	url TEXT NOT NULL,
	type TEXT NOT NULL,
	category_id INTEGER,
	created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (user_id) REFERENCES users(id),
	FOREIGN KEY (category_id) REFERENCES categories(id),
	UNIQUE (url, user_id)
);
`

// engine is the gorm-backed core shared by both backends.
type engine struct {
	db     *gorm.DB
	logger *slog.Logger
}

// openDB opens a sqlite database pinned to a single connection. One
// connection serializes writers at the storage layer and keeps
// last_insert_rowid() tied to the connection that wrote.
func openDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)
	sqlDB.SetConnMaxIdleTime(0)

	return db, nil
}

// Initialize creates the schema. Safe to call on a populated store.
func (e *engine) Initialize() error {
	return wrapError(e.db.Exec(schema).Error)
}

// SeedAdmin inserts the bootstrap admin unless the username is already taken.
// Missing credentials skip seeding with a warning instead of failing startup.
func (e *engine) SeedAdmin(username, rawPassword string) error {
	if username == "" || rawPassword == "" {
		e.logger.Warn("admin bootstrap skipped: ADMIN_USERNAME and ADMIN_PASSWORD not configured")
		return nil
	}

	var existing models.User
	if err := e.Read(&existing, "SELECT id FROM users WHERE username = ?", username); err != nil {
		return err
	}
	if existing.ID != 0 {
		return nil
	}

	hash, err := utils.HashPassword(rawPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	_, err = e.Write(
		"INSERT INTO users (username, password, role, created_at) VALUES (?, ?, ?, ?)",
		username, hash, models.RoleAdmin, time.Now().UTC().Format(time.RFC3339),
	)
	if errors.Is(err, ErrConstraint) {
		// Raced with an existing row; seeding is a no-op then.
		return nil
	}
	if err != nil {
		return err
	}

	e.logger.Info("bootstrap admin created", "username", username)
	return nil
}

// Read runs a query and decodes the rows into dest, a pointer to a struct or
// a slice of structs. Zero rows leave dest untouched.
func (e *engine) Read(dest any, query string, args ...any) error {
	return wrapError(e.db.Raw(query, args...).Scan(dest).Error)
}

// Write runs a mutating statement. The statement and the identity fetch share
// one transaction so concurrent writers cannot interleave between them.
func (e *engine) Write(query string, args ...any) (Result, error) {
	var res Result
	err := e.db.Transaction(func(tx *gorm.DB) error {
		out := tx.Exec(query, args...)
		if out.Error != nil {
			return out.Error
		}
		res.RowsAffected = out.RowsAffected
		return tx.Raw("SELECT last_insert_rowid()").Scan(&res.LastInsertID).Error
	})
	if err != nil {
		return Result{}, wrapError(err)
	}
	return res, nil
}

func (e *engine) Close() error {
	sqlDB, err := e.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "constraint failed") {
		return fmt.Errorf("%w: %v", ErrConstraint, err)
	}
	return fmt.Errorf("%w: %v", ErrStorage, err)
}
