//go:build dev

package config

import (
	"os"
	"strconv"
)

// DefaultSyncWorkers is the bounded pool size a job body should use for
// its own internal parallelism (§5: "typical 2-5 workers"). Dev
// default: 3. Override with SYNC_WORKERS.
func DefaultSyncWorkers() int {
	if v := os.Getenv("SYNC_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 3
}

// ProtonDBWorkerPoolSize is the ProtonDB sync job's worker pool size.
func ProtonDBWorkerPoolSize() int {
	if v := os.Getenv("PROTONDB_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 5
}
