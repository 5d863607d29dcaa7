// Package sources implements one adapter per storefront, each
// normalizing a remote catalog into RawGame records for the Importer.
package sources

import (
	"context"
	"time"
)

// RawGame is the sum-type record every adapter returns: optional
// fields model the differences between storefronts instead of a
// subclass per store (spec §4.3/§9).
type RawGame struct {
	Name          string
	Store         string
	StoreID       string
	PlaytimeHours *float64
	CoverImage    *string
	Developers    []string
	Publishers    []string
	ReleaseDate   *string
	LastModified  *time.Time
	ExtraData     *string
	Streaming     bool
}

// Settings is the slice of the settings registry every adapter needs:
// reading stored credentials/tokens and persisting refreshed ones.
// Defined structurally here (rather than imported) so this package
// never depends on internal/settings — settings.Registry satisfies it
// automatically.
type Settings interface {
	GetString(ctx context.Context, key, def string) (string, error)
	SetString(ctx context.Context, key, value string) error
}

// Adapter is the uniform per-store fetch signature (spec §9 "a
// collection of independent functions exposing the same signature").
type Adapter func(ctx context.Context, settings Settings) ([]RawGame, error)
