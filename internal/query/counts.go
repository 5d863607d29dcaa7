package query

import (
	"context"
	"fmt"
	"strings"
)

// countsRepo is the slice of store.Repo this package needs for
// filter-count aggregation, defined structurally so tests can fake it.
type countsRepo interface {
	CountGamesMatching(ctx context.Context, whereSQL string) (map[string]int, error)
}

// FilterCounts computes, in one pass, how many games would match each
// filter in candidates if it were added to the already-active
// selection — excluding each filter from its own count (§4.12 point
// 3): a single `COUNT(CASE WHEN ... THEN 1 END)` per filter id, string
// built the same way the teacher inlines its own SQL constants.
func FilterCounts(ctx context.Context, repo countsRepo, active []Filter, candidates []Filter) (map[string]int, error) {
	activeByID := make(map[string]bool, len(active))
	for _, f := range active {
		activeByID[f.ID] = true
	}

	base := Compose(active)

	var sb strings.Builder
	sb.WriteString("SELECT ")
	first := true
	for _, f := range candidates {
		if activeByID[f.ID] {
			continue
		}
		if !first {
			sb.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&sb, "COUNT(CASE WHEN (%s) AND (%s) THEN 1 END) AS %s",
			base, f.Fragment, countColumnAlias(f.ID))
	}
	if first {
		return map[string]int{}, nil
	}
	sb.WriteString(" FROM games")

	return repo.CountGamesMatching(ctx, sb.String())
}

// countColumnAlias sanitizes a filter id into a SQL column alias —
// filter ids may contain characters like ':' and '-' that aren't
// valid bare identifiers.
func countColumnAlias(id string) string {
	replacer := strings.NewReplacer(":", "_", "-", "_", ".", "_")
	return "f_" + replacer.Replace(id)
}
