package core

import (
	"context"
	"fmt"
	"io"

	"mendel/internal/infra/persistence/memory"
	"mendel/internal/infra/persistence/postgres"
	"mendel/internal/infra/persistence/sqlite"
	"mendel/pkg/domain"
)

// StorageDriver identifies a concrete session storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// StorageConfig selects and parameterises a session store.
type StorageConfig struct {
	Driver      StorageDriver
	SQLitePath  string
	PostgresDSN string
}

// OpenSessionStore constructs the store named by cfg.Driver. An empty driver
// means memory. Release the store with CloseStore.
func OpenSessionStore(ctx context.Context, cfg StorageConfig) (domain.SessionStore, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = StorageMemory
	}
	switch driver {
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite:
		return sqlite.NewStore(cfg.SQLitePath)
	case StoragePostgres:
		return postgres.NewStore(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}

// CloseStore releases stores that hold a database handle.
func CloseStore(store domain.SessionStore) error {
	if c, ok := store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
