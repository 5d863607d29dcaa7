package query

import (
	"github.com/jwolfley/unilib/internal/importer"
	"github.com/jwolfley/unilib/internal/store"
)

// SubRow is one storefront's row within a cross-store Group.
type SubRow struct {
	Game store.Game
}

// Group is the display-layer coalescing of every storefront row
// sharing a non-null igdb_id (spec §4.12 point 2). A row with a null
// igdb_id forms its own singleton group.
type Group struct {
	IGDBID          *int64
	Rows            []SubRow
	Primary         store.Game
	HasNonStreaming bool
	OnlyStreaming   bool
}

// GroupRows coalesces a flat row set from SQL into cross-store display
// groups, mirroring the teacher's GetLatestSnapshotAchievementsPair
// two-query-then-zip shape generalized to a single-pass map-by-key.
// Known promotional-name duplicates (spec.md:104 — Amazon Prime/Luna
// variants) are ingested but rejected here, at query time, never at
// insert time.
func GroupRows(games []store.Game) []Group {
	order := make([]int64, 0, len(games))
	byIGDB := make(map[int64][]store.Game)
	var ungrouped []store.Game

	for _, g := range games {
		if importer.IsKnownPromoVariant(g.Name) {
			continue
		}
		if g.IGDBID.Valid {
			id := g.IGDBID.Int64
			if _, seen := byIGDB[id]; !seen {
				order = append(order, id)
			}
			byIGDB[id] = append(byIGDB[id], g)
		} else {
			ungrouped = append(ungrouped, g)
		}
	}

	groups := make([]Group, 0, len(order)+len(ungrouped))
	for _, id := range order {
		groups = append(groups, buildGroup(id, byIGDB[id]))
	}
	for _, g := range ungrouped {
		groups = append(groups, buildGroup(0, []store.Game{g}))
	}
	return groups
}

func buildGroup(igdbID int64, rows []store.Game) Group {
	g := Group{Rows: make([]SubRow, 0, len(rows))}
	if igdbID != 0 {
		id := igdbID
		g.IGDBID = &id
	}

	var primary *store.Game
	for i := range rows {
		r := rows[i]
		g.Rows = append(g.Rows, SubRow{Game: r})
		if !r.Streaming {
			g.HasNonStreaming = true
		}
		primary = choosePrimary(primary, &rows[i])
	}
	if primary != nil {
		g.Primary = *primary
	}
	g.OnlyStreaming = g.Primary.Streaming && !g.HasNonStreaming
	return g
}

// choosePrimary implements §4.12's preference order: has IGDB cover >
// has playtime > arbitrary first.
func choosePrimary(current, candidate *store.Game) *store.Game {
	if current == nil {
		return candidate
	}
	curCover := current.IGDBCoverURL.Valid && current.IGDBCoverURL.String != ""
	candCover := candidate.IGDBCoverURL.Valid && candidate.IGDBCoverURL.String != ""
	if candCover && !curCover {
		return candidate
	}
	if curCover != candCover {
		return current
	}

	curPlaytime := current.PlaytimeHours.Valid && current.PlaytimeHours.Float64 > 0
	candPlaytime := candidate.PlaytimeHours.Valid && candidate.PlaytimeHours.Float64 > 0
	if candPlaytime && !curPlaytime {
		return candidate
	}
	return current
}

