//go:build !dev

package config

import (
	"os"
	"strconv"
	"time"
)

// NewsSyncCacheTTL is how long a game's news is trusted before it's
// re-fetched (§4.9 News sync: "24h unless force=true").
func NewsSyncCacheTTL() time.Duration {
	if v := os.Getenv("NEWS_SYNC_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return time.Duration(n) * time.Second
		}
	}
	return 24 * time.Hour
}

// StatusSyncCacheTTL is how long Early-Access status is trusted before
// re-checking (§4.9 Status sync: "7 days unless force=true").
func StatusSyncCacheTTL() time.Duration {
	if v := os.Getenv("STATUS_SYNC_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return time.Duration(n) * time.Second
		}
	}
	return 7 * 24 * time.Hour
}
