// Package settings implements the Settings Registry (spec §4.2): typed
// getters over the persisted `settings` table, grounded on the
// teacher's config package idiom (typed accessor functions with env-var
// overrides) but backed by a database row set instead of the build-tag
// defaults the config package keeps for its dev/prod tunables.
package settings

import (
	"context"
	"os"
	"strconv"
)

// settingsRepo is the slice of store.Repo this package needs, defined
// structurally (per the same pattern as internal/sources.Settings) so
// this package never imports internal/store and tests can fake it
// without a real database.
type settingsRepo interface {
	GetSetting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error
	ListSettings(ctx context.Context) (map[string]string, error)
}

// Registry reads settings from the DB, falling back to a caller-
// supplied default. It satisfies internal/sources.Settings
// structurally, so every adapter can take a *Registry directly.
type Registry struct {
	repo settingsRepo
}

func NewRegistry(repo settingsRepo) *Registry {
	return &Registry{repo: repo}
}

// GetString reads key from the settings table, returning def if unset.
func (r *Registry) GetString(ctx context.Context, key, def string) (string, error) {
	v, ok, err := r.repo.GetSetting(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// SetString writes key's value, overwriting any prior value.
func (r *Registry) SetString(ctx context.Context, key, value string) error {
	return r.repo.SetSetting(ctx, key, value)
}

// GetBool parses the stored value with strconv.ParseBool (1, t, T,
// TRUE, true, True, 0, f, F, FALSE, false, False), def otherwise.
func (r *Registry) GetBool(ctx context.Context, key string, def bool) (bool, error) {
	v, ok, err := r.repo.GetSetting(ctx, key)
	if err != nil {
		return false, err
	}
	if !ok {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, nil
	}
	return b, nil
}

// GetInt parses the stored value as a base-10 integer, def otherwise.
func (r *Registry) GetInt(ctx context.Context, key string, def int) (int, error) {
	v, ok, err := r.repo.GetSetting(ctx, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, nil
	}
	return n, nil
}

// Flag implements §6's feature-flag override order: the environment
// variable named key wins when set, then the DB value, then false.
// Used for USE_STEAM_CLIENT, which operators expect to toggle without
// touching the database.
func (r *Registry) Flag(ctx context.Context, key string) (bool, error) {
	if v, present := os.LookupEnv(key); present {
		if b, err := strconv.ParseBool(v); err == nil {
			return b, nil
		}
	}
	return r.GetBool(ctx, key, false)
}

// All returns every stored setting, for the settings admin page.
func (r *Registry) All(ctx context.Context) (map[string]string, error) {
	return r.repo.ListSettings(ctx)
}
