//go:build dev

// config/schema_ttl_dev.go
package config

import (
	"os"
	"strconv"
	"time"
)

// NewsSyncCacheTTL is how long a game's news is trusted before it's
// re-fetched (§4.9 News sync: "24h unless force=true"). Dev default:
// short, to catch changes quickly while iterating.
func NewsSyncCacheTTL() time.Duration {
	if v := os.Getenv("NEWS_SYNC_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return time.Duration(n) * time.Second
		}
	}
	return 5 * time.Minute
}

// StatusSyncCacheTTL is how long Early-Access status is trusted before
// re-checking (§4.9 Status sync: "7 days unless force=true").
func StatusSyncCacheTTL() time.Duration {
	if v := os.Getenv("STATUS_SYNC_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return time.Duration(n) * time.Second
		}
	}
	return 5 * time.Minute
}
