package iocache

import (
	"database/sql"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/semiconip/patentspike/internal/contract"
	"github.com/semiconip/patentspike/schema"
)

// cacheTable is the name of the table for KIPRIS response caching.
const cacheTable = "patentspike_response_cache"

// Global Manager instance for main logic.
var (
	Manager   = &CacheStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// GetDBFilePath returns the path to the SQLite DB file for cache storage.
func GetDBFilePath() string {
	return contract.GetCacheDBFilePath()
}

// GetAnalysisDBFilePath returns the path to the SQLite DB file for analysis storage.
func GetAnalysisDBFilePath() string {
	return contract.GetAnalysisDBFilePath()
}

// StoreOptions selects the backends of the global stores. An empty backend
// leaves the corresponding store unset.
type StoreOptions struct {
	CacheBackend    schema.DatabaseBackend
	CacheConnStr    string
	CacheTTL        time.Duration
	AnalysisBackend schema.DatabaseBackend
	AnalysisConnStr string
}

// NewCacheBackendStore opens the cache store for any supported cache backend.
func NewCacheBackendStore(backend schema.DatabaseBackend, connStr string, ttl time.Duration) (contract.CacheStore, error) {
	if backend == schema.RedisBackend {
		return NewRedisCacheStore(connStr, ttl)
	}
	return NewCacheStore(cacheTable, backend, connStr)
}

// InitStores initializes the global manager once with the cache and analysis stores.
func InitStores(opts StoreOptions) error {
	var initErr error

	initOnce.Do(func() {
		var cacheStore contract.CacheStore
		if opts.CacheBackend != "" {
			store, err := NewCacheBackendStore(opts.CacheBackend, opts.CacheConnStr, opts.CacheTTL)
			if err != nil {
				initErr = fmt.Errorf("failed to initialize response caching: %w", err)
				return
			}
			cacheStore = store
		}

		var analysisStore contract.AnalysisStore
		if opts.AnalysisBackend != "" {
			store, err := NewAnalysisStore(opts.AnalysisBackend, opts.AnalysisConnStr)
			if err != nil {
				if cacheStore != nil {
					_ = cacheStore.Close()
				}
				initErr = fmt.Errorf("failed to initialize analysis store: %w", err)
				return
			}
			analysisStore = store
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.cache = cacheStore
		Manager.analysis = analysisStore
	})

	return initErr
}

// CloseCaching should be called on application shutdown.
func CloseCaching() {
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.cache != nil {
			_ = Manager.cache.Close()
		}
		if Manager.analysis != nil {
			_ = Manager.analysis.Close()
		}
	})
}

// ClearCache clears the response cache.
// For SQLite, it deletes the database file.
// For MySQL/PostgreSQL, it drops the table.
// For Redis, it deletes the cache keys.
func ClearCache(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return removeDBFile(dbFilePath)
	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return dropSQLTables(backend, connStr, cacheTable)
	case schema.RedisBackend:
		store, err := NewRedisCacheStore(connStr, 0)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		_, err = store.Clear()
		return err
	case schema.NoneBackend:
		return nil
	default:
		return fmt.Errorf("unsupported cache backend for clearing: %s", backend)
	}
}

// ClearAnalysis clears the analysis history.
// For SQLite, it deletes the database file.
// For MySQL/PostgreSQL, it drops the analysis tables and the migration table.
func ClearAnalysis(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return removeDBFile(dbFilePath)
	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return dropSQLTables(backend, connStr, append(analysisTables, "schema_migrations")...)
	case schema.NoneBackend:
		return nil
	default:
		return fmt.Errorf("unsupported analysis backend for clearing: %s", backend)
	}
}

func removeDBFile(dbFilePath string) error {
	if dbFilePath == "" {
		return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
	}
	if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
	}
	return nil
}

// dropSQLTables connects to the SQL database and drops the tables if they exist.
func dropSQLTables(backend schema.DatabaseBackend, connStr string, tables ...string) error {
	db, err := openDB(backend, connStr, "")
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	return dropTables(db, backend, tables...)
}

func dropTables(db *sql.DB, backend schema.DatabaseBackend, tables ...string) error {
	for _, table := range tables {
		if err := validateTableName(table); err != nil {
			return err
		}
		if _, err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(table, backend))); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}
