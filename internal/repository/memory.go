package repository

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// MemoryEngine holds the whole store in memory and rewrites a snapshot file
// wholesale on Persist. Callers must call Persist after every mutation and
// bracket mutate+persist with Lock/Unlock so a concurrent request cannot
// snapshot a half-applied change.
type MemoryEngine struct {
	engine
	mu sync.Mutex

	// path is where snapshots are written and loaded from.
	path string
}

func NewMemoryEngine(snapshotPath string, logger *slog.Logger) (*MemoryEngine, error) {
	db, err := openDB(":memory:")
	if err != nil {
		return nil, err
	}
	return &MemoryEngine{engine: engine{db: db, logger: logger}, path: snapshotPath}, nil
}

// Initialize creates the schema, then imports the snapshot file if one exists
// and the store is still empty. Re-initializing a populated store never
// duplicates rows.
func (e *MemoryEngine) Initialize() error {
	if err := e.engine.Initialize(); err != nil {
		return err
	}
	return e.restore()
}

func (e *MemoryEngine) restore() error {
	if _, err := os.Stat(e.path); errors.Is(err, os.ErrNotExist) {
		return nil
	} else if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	// Import only into a fully empty store; any surviving row in any table
	// means the snapshot was already loaded.
	for _, table := range []string{"users", "categories", "links"} {
		var count int64
		if err := e.Read(&count, "SELECT count(*) FROM "+table); err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
	}

	if err := e.db.Exec("ATTACH DATABASE ? AS snapshot", e.path).Error; err != nil {
		return wrapError(err)
	}
	defer e.db.Exec("DETACH DATABASE snapshot")

	for _, table := range []string{"users", "categories", "links"} {
		stmt := fmt.Sprintf("INSERT INTO %s SELECT * FROM snapshot.%s", table, table)
		if err := e.db.Exec(stmt).Error; err != nil {
			return wrapError(err)
		}
	}

	e.logger.Info("snapshot restored", "path", e.path)
	return nil
}

// Persist serializes the whole store to the snapshot file. The write goes to
// a temp file first so a failure never truncates the previous snapshot.
func (e *MemoryEngine) Persist() error {
	tmp := e.path + ".tmp"
	_ = os.Remove(tmp)

	if err := e.db.Exec("VACUUM INTO ?", tmp).Error; err != nil {
		return wrapError(err)
	}
	if err := os.Rename(tmp, e.path); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

func (e *MemoryEngine) Lock()   { e.mu.Lock() }
func (e *MemoryEngine) Unlock() { e.mu.Unlock() }
