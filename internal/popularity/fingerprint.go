package popularity

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
)

// Fingerprint hashes a canonicalized set of IGDB ids into the Tier-1
// cache key, generalizing the teacher's CatalogHash/StateHash
// sorted-join-then-sha256 pattern from an appid+apiname list to a bare
// sorted id list.
func Fingerprint(popType string, igdbIDs []int64) string {
	if len(igdbIDs) == 0 {
		return popType + ":" + sha256Hex("")
	}
	ids := make([]string, len(igdbIDs))
	for i, id := range igdbIDs {
		ids[i] = strconv.FormatInt(id, 10)
	}
	sort.Strings(ids)
	return popType + ":" + sha256Hex(strings.Join(ids, "\n"))
}

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
