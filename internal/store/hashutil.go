package store

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
)

// FingerprintHash computes a stable fingerprint of a set of IGDB ids,
// generalizing the teacher's CatalogHash (sort then join then sha256)
// from a set of achievement api-names to a set of IGDB ids. Nothing in
// this repository calls it; internal/popularity.Fingerprint builds the
// Tier 1 popularity-cache key itself (spec §4.11).
func FingerprintHash(igdbIDs []int64) string {
	if len(igdbIDs) == 0 {
		return sha256Hex("")
	}
	lines := make([]string, 0, len(igdbIDs))
	for _, id := range igdbIDs {
		lines = append(lines, strconv.FormatInt(id, 10))
	}
	sort.Strings(lines)
	return sha256Hex(strings.Join(lines, "\n"))
}

func sha256Hex(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}
