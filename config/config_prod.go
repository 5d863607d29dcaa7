//go:build !dev

package config

import (
	"os"
	"strconv"
	"time"
)

// RefreshThrottleWindow is the minimum gap between two manual sync
// triggers for the same store. Prod default: 60s.
// Override with THROTTLE_WINDOW_SECONDS.
func RefreshThrottleWindow() time.Duration {
	if v := os.Getenv("THROTTLE_WINDOW_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return time.Duration(n) * time.Second
		}
	}
	return 60 * time.Second
}
