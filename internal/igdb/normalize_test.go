package igdb

import "testing"

func TestNormalizeTitle(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Half-Life 2", "half life 2"},
		{"edition suffix", "Borderlands: Game of the Year Edition", "borderlands"},
		{"year suffix", "DOOM (2016)", "doom"},
		{"platform suffix", "Portal 2 (PC)", "portal 2"},
		{"diacritics", "Déjà Vu: A Nightmare Comes True!", "deja vu a nightmare comes true"},
		{"stacked suffixes", "Control (2019) - Ultimate Edition", "control"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeTitle(tc.in); got != tc.want {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
