package igdb

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// editionSuffixPattern strips trailing "Edition"/"Remaster" qualifiers
// and the parenthetical/bracket noise storefronts append to titles
// ("Game Name: Game of the Year Edition", "Game Name (2016)").
var (
	parenSuffixPattern   = regexp.MustCompile(`(?i)[\(\[][^)\]]*[\)\]]\s*$`)
	editionSuffixPattern = regexp.MustCompile(`(?i)[:\-]?\s*(game of the year|goty|deluxe|ultimate|definitive|complete|gold|premium|enhanced|remastered?|directors?\s*cut|anniversary)\s*(edition)?\s*$`)
	yearSuffixPattern    = regexp.MustCompile(`\s*\b(19|20)\d{2}\b\s*$`)
	platformSuffixPattern = regexp.MustCompile(`(?i)\s*[\(\-]\s*(pc|steam|windows|mac|linux|epic|gog)\s*[\)]?\s*$`)
	nonWordSpacePattern  = regexp.MustCompile(`[^\w\s]`)
	multipleSpacePattern = regexp.MustCompile(`\s+`)
)

// NormalizeTitle implements spec §4.5's "strip edition/year/platform
// suffixes, fold case and diacritics", grounded on
// josegonzalez-retro-metadata's NormalizeSearchTerm — generalized here
// with an extra pass of suffix stripping the reference package doesn't
// need (it matches exact filenames, not storefront marketing titles).
func NormalizeTitle(title string) string {
	s := title
	// Repeatedly strip trailing parenthetical/edition/year/platform
	// noise since storefronts stack them ("Game (2016) - Deluxe
	// Edition").
	for {
		before := s
		s = strings.TrimSpace(s)
		s = parenSuffixPattern.ReplaceAllString(s, "")
		s = editionSuffixPattern.ReplaceAllString(s, "")
		s = yearSuffixPattern.ReplaceAllString(s, "")
		s = platformSuffixPattern.ReplaceAllString(s, "")
		s = strings.TrimSpace(s)
		if s == before || s == "" {
			break
		}
	}

	s = strings.ToLower(s)
	s = removeDiacritics(s)
	s = nonWordSpacePattern.ReplaceAllString(s, " ")
	s = multipleSpacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func removeDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	for _, r := range decomposed {
		if !unicode.Is(unicode.Mn, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
