package store

import "encoding/json"

// encodeList/decodeList round-trip the opaque JSON-array columns
// (genres, developers, publishers, igdb_screenshots) verbatim per the
// §9 design note: these are treated as opaque lists, never as
// structured/validated data.
func encodeList(xs []string) string {
	if xs == nil {
		xs = []string{}
	}
	b, err := json.Marshal(xs)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func decodeList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return out
}
