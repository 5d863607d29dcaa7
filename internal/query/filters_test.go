package query

import "testing"

func TestCompose_EmptySelection(t *testing.T) {
	if got := Compose(nil); got != "1=1" {
		t.Fatalf("want 1=1, got %q", got)
	}
}

func TestCompose_SameCategoryOrs(t *testing.T) {
	got := Compose([]Filter{Registry["unplayed"], Registry["well-played"]})
	want := "(" + Registry["unplayed"].Fragment + " OR " + Registry["well-played"].Fragment + ")"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestCompose_DifferentCategoriesAnd(t *testing.T) {
	got := Compose([]Filter{Registry["unplayed"], Registry["nsfw"]})
	want := Registry["unplayed"].Fragment + " AND " + Registry["nsfw"].Fragment
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestGenre_PreservesJSONQuoting(t *testing.T) {
	f := Genre("Action")
	if f.Fragment != `genres LIKE '%"Action"%'` {
		t.Fatalf("unexpected fragment: %q", f.Fragment)
	}
}
