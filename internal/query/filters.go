// Package query implements the Query Layer (spec §4.12): a closed
// filter-vocabulary registry, cross-store grouping over the raw row
// set, and single-pass filter-count aggregation. Grounded on the
// teacher's raw-SQL, no-ORM db/*.go methods — every fragment here is
// hand-written SQL text, never a query builder; the few values that
// vary (genre names, label ids) are inlined as quoted or numeric
// literals rather than bound as `?` parameters.
package query

import (
	"fmt"
	"strings"
)

// Filter is one entry in the closed filter-vocabulary registry: a
// filter id maps to a SQL boolean fragment plus the category it
// belongs to. Filters within a category compose with OR; filters
// across categories compose with AND (§4.12).
type Filter struct {
	ID       string
	Category string
	// Fragment is a SQL boolean expression referencing bare column
	// names (e.g. "nsfw = 0"). Only Label() takes a TablePrefix; every
	// other fragment assumes an unaliased games table.
	Fragment string
}

// TablePrefix controls which table bare column names in a Fragment
// are resolved against — "" for an unqualified query over games
// alone, "g." when games is joined to other tables.
type TablePrefix string

// Registry is the closed set of filters the discover surface exposes.
// Anything not in here is rejected by the HTTP boundary (out of
// scope) before it reaches this package.
var Registry = map[string]Filter{
	"highly-rated": {
		ID: "highly-rated", Category: "rating",
		Fragment: "average_rating >= 80",
	},
	"unrated": {
		ID: "unrated", Category: "rating",
		Fragment: "average_rating IS NULL",
	},
	"unplayed": {
		ID: "unplayed", Category: "playtime",
		Fragment: "(playtime_hours IS NULL OR playtime_hours = 0)",
	},
	"well-played": {
		ID: "well-played", Category: "playtime",
		Fragment: "playtime_hours >= 10",
	},
	"recently-added": {
		ID: "recently-added", Category: "recency",
		Fragment: "added_at >= datetime('now', '-30 days')",
	},
	"recently-updated": {
		ID: "recently-updated", Category: "recency",
		Fragment: "last_modified >= datetime('now', '-30 days')",
	},
	"early-access": {
		ID: "early-access", Category: "status",
		Fragment: "development_status = 'early_access'",
	},
	"hidden": {
		ID: "hidden", Category: "visibility",
		Fragment: "hidden = 1",
	},
	"nsfw": {
		ID: "nsfw", Category: "visibility",
		Fragment: "nsfw = 1",
	},
	"unmatched": {
		ID: "unmatched", Category: "igdb",
		Fragment: "igdb_id IS NULL",
	},
	"proton-playable": {
		ID: "proton-playable", Category: "compatibility",
		Fragment: "protondb_tier IN ('platinum','gold','silver')",
	},
}

// Genre returns a filter that matches name as an element of the
// games.genres JSON array column, preserving JSON quoting so
// "Action" doesn't false-match inside "Re-Action" (§9 note on JSON
// blob columns).
func Genre(name string) Filter {
	needle := `"` + strings.ReplaceAll(name, `"`, `\"`) + `"`
	return Filter{
		ID:       "genre:" + name,
		Category: "genre",
		Fragment: "genres LIKE " + sqlQuote("%"+needle+"%"),
	}
}

// Label returns a filter matching games carrying the given label id.
// It uses an EXISTS subquery against game_labels rather than a JOIN so
// downstream cross-store grouping never double-counts a game that
// happens to carry the label through two joined rows (§4.12).
func Label(labelID int64, prefix TablePrefix) Filter {
	return Filter{
		ID:       fmt.Sprintf("label:%d", labelID),
		Category: "label",
		Fragment: fmt.Sprintf(
			"EXISTS (SELECT 1 FROM game_labels WHERE game_labels.game_id = %sid AND game_labels.label_id = %d)",
			prefix, labelID),
	}
}

func sqlQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Compose builds the WHERE clause for a set of selected filter ids:
// filters sharing a category OR together, distinct categories AND
// together. An empty selection composes to "1=1" (no restriction).
func Compose(selected []Filter) string {
	if len(selected) == 0 {
		return "1=1"
	}

	byCategory := make(map[string][]string)
	var order []string
	for _, f := range selected {
		if _, seen := byCategory[f.Category]; !seen {
			order = append(order, f.Category)
		}
		byCategory[f.Category] = append(byCategory[f.Category], f.Fragment)
	}

	clauses := make([]string, 0, len(order))
	for _, cat := range order {
		frags := byCategory[cat]
		if len(frags) == 1 {
			clauses = append(clauses, frags[0])
		} else {
			clauses = append(clauses, "("+strings.Join(frags, " OR ")+")")
		}
	}
	return strings.Join(clauses, " AND ")
}
