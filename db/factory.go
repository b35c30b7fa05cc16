package db

import (
	"fmt"

	"safetx/logx"
)

const (
	BackendLevelDB  = "leveldb"
	BackendBolt     = "bolt"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// NewProvider opens the configured database backend. path is the data
// directory or file for embedded backends; dsn is only consulted for
// postgres.
func NewProvider(backend, path, dsn string) (IterableProvider, error) {
	switch backend {
	case BackendLevelDB, "":
		logx.Info("DB", "opening leveldb at ", path)
		return NewLevelDBProvider(path)
	case BackendBolt:
		logx.Info("DB", "opening bolt db at ", path)
		return NewBoltProvider(path)
	case BackendPostgres:
		logx.Info("DB", "connecting to postgres")
		return NewPostgresProvider(dsn)
	case BackendMemory:
		logx.Info("DB", "using in-memory storage, data will not survive restarts")
		return NewMemoryProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported database backend: %s", backend)
	}
}
