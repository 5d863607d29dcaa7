package query

import (
	"database/sql"
	"testing"

	"github.com/jwolfley/unilib/internal/store"
)

func TestGroupRows_CoalescesSharedIGDBID(t *testing.T) {
	games := []store.Game{
		{ID: 1, Store: "steam", IGDBID: sql.NullInt64{Int64: 42, Valid: true}},
		{ID: 2, Store: "gog", IGDBID: sql.NullInt64{Int64: 42, Valid: true}, IGDBCoverURL: sql.NullString{String: "c.jpg", Valid: true}},
	}
	groups := GroupRows(games)
	if len(groups) != 1 {
		t.Fatalf("want 1 group, got %d", len(groups))
	}
	if len(groups[0].Rows) != 2 {
		t.Fatalf("want 2 sub-rows, got %d", len(groups[0].Rows))
	}
	if groups[0].Primary.Store != "gog" {
		t.Fatalf("want gog as primary (has igdb cover), got %s", groups[0].Primary.Store)
	}
}

func TestGroupRows_NullIGDBFormsOwnGroup(t *testing.T) {
	games := []store.Game{
		{ID: 1, Store: "itch"},
		{ID: 2, Store: "humble"},
	}
	groups := GroupRows(games)
	if len(groups) != 2 {
		t.Fatalf("want 2 groups, got %d", len(groups))
	}
}

func TestGroupRows_OnlyStreaming(t *testing.T) {
	games := []store.Game{
		{ID: 1, Store: "ea", Streaming: true, IGDBID: sql.NullInt64{Int64: 7, Valid: true}},
	}
	groups := GroupRows(games)
	if !groups[0].OnlyStreaming {
		t.Fatal("want OnlyStreaming=true for a lone streaming row")
	}
}
