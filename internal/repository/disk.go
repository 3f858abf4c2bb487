package repository

import (
	"log/slog"
)

// DiskEngine is the synchronous on-disk engine: every committed write is
// already durable, so Persist has nothing to do.
type DiskEngine struct {
	engine
}

func NewDiskEngine(path string, logger *slog.Logger) (*DiskEngine, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}

	var mode string
	if err := db.Raw("PRAGMA journal_mode = WAL").Scan(&mode).Error; err != nil {
		return nil, wrapError(err)
	}
	logger.Debug("disk engine opened", "path", path, "journal_mode", mode)

	return &DiskEngine{engine{db: db, logger: logger}}, nil
}

func (e *DiskEngine) Persist() error { return nil }

// The storage layer serializes writers on its single connection.
func (e *DiskEngine) Lock()   {}
func (e *DiskEngine) Unlock() {}
