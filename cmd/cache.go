package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/semiconip/patentspike/internal/contract"
	"github.com/semiconip/patentspike/internal/iocache"
	"github.com/semiconip/patentspike/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cacheSetup loads minimal configuration needed for cache operations.
// This is used by commands that need cache access without full shared setup.
func cacheSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString("cache-backend")))
	connStr := viper.GetString("cache-db-connect")
	if _, ok := schema.ValidCacheBackends[backend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, redis, none", backend)
	}
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// No analysis tracking for cache commands
	if err := iocache.InitStores(iocache.StoreOptions{
		CacheBackend: backend,
		CacheConnStr: connStr,
		CacheTTL:     viper.GetDuration("cache-ttl"),
	}); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr

	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheCmd focused on cache management.
//
// Note: Cache subcommands use minimal initialization (cacheSetup) instead of
// the full sharedSetup, so they work without a KIPRIS key or company selection.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the KIPRIS response cache",
	Long: `Manage the cache of KIPRIS search results.

Each company search is cached by query, date range and page limit for --cache-ttl
(default 1h), so repeated views of the same analysis cost a single round of requests.

Supported backends: SQLite (default), MySQL, PostgreSQL, Redis, or None

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached data

Examples:
  # Check cache status
  patentspike cache status

  # Drop cached responses before a fresh run
  patentspike cache clear`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached KIPRIS responses",
	Long: `Delete all cached search results from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table
For Redis: Deletes the patentspike cache keys

Examples:
  # Clear SQLite cache (default)
  patentspike cache clear

  # Clear a shared Redis cache
  PATENTSPIKE_CACHE_BACKEND=redis PATENTSPIKE_CACHE_DB_CONNECT="redis://cache:6379/0" patentspike cache clear`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// Release the handle opened during setup before dropping the file or keys.
		iocache.CloseCaching()
		if err := iocache.ClearCache(cfg.CacheBackend, contract.GetCacheDBFilePath(), cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show the cache backend, connection state, entry count, the newest and oldest
entry times, and the table size.

Examples:
  patentspike cache status`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetCacheStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status)
	},
}
