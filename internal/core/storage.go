package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuecore/internal/infra/persistence/memory"
	"cuecore/internal/infra/persistence/postgres"
	"cuecore/internal/infra/persistence/sqlite"
	"cuecore/pkg/domain"
)

// Storage selection environment variables.
const (
	EnvStorageDriver = "CUECORE_STORAGE_DRIVER" // memory | sqlite | postgres
	EnvSQLitePath    = "CUECORE_SQLITE_PATH"
	EnvPostgresDSN   = "CUECORE_POSTGRES_DSN"
)

func newMemoryStore() *memory.Store {
	return memory.NewStore(NewDefaultRulesEngine())
}

// OpenPersistentStore opens the ledger store selected by environment
// configuration. The default is a SQLite-backed store under the current
// working directory so a process restart keeps its ledger.
func OpenPersistentStore(engine *RulesEngine) (domain.PersistentStore, error) {
	if engine == nil {
		engine = NewDefaultRulesEngine()
	}
	driver := strings.ToLower(strings.TrimSpace(os.Getenv(EnvStorageDriver)))
	switch driver {
	case "memory":
		return memory.NewStore(engine), nil
	case "postgres":
		dsn := strings.TrimSpace(os.Getenv(EnvPostgresDSN))
		return postgres.NewStore(dsn, engine)
	case "", "sqlite":
		path := strings.TrimSpace(os.Getenv(EnvSQLitePath))
		if path == "" {
			path = filepath.Join(".", "cuecore.db")
		}
		return sqlite.NewStore(path, engine)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}
}
