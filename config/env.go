// Package config reads the environment-variable overrides named in
// spec §6. Storefront credentials live in the settings registry
// (internal/settings), not here — this package only covers the
// process-level flags that must be readable before the database
// exists.
package config

import (
	"os"
	"strconv"
)

// DatabasePath returns the DATABASE_PATH override, or "" if unset —
// the caller falls back to its own data-directory resolution.
func DatabasePath() string {
	return os.Getenv("DATABASE_PATH")
}

// Port returns the PORT override, defaulting to 8080 (teacher's own
// hardcoded ":8080" in main.go).
func Port() int {
	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 8080
}

// Debug reports whether DEBUG is truthy.
func Debug() bool {
	return envBool("DEBUG", false)
}

// EnableAuth reports whether ENABLE_AUTH is truthy.
func EnableAuth() bool {
	return envBool("ENABLE_AUTH", false)
}

// SecretKey returns the SECRET_KEY override, or "" if unset — the
// caller falls back to the persisted settings-registry secret.
func SecretKey() string {
	return os.Getenv("SECRET_KEY")
}

// SessionExpiryDays returns SESSION_EXPIRY_DAYS, defaulting to 30.
func SessionExpiryDays() int {
	if v := os.Getenv("SESSION_EXPIRY_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return 30
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
