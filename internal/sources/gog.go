package sources

import (
	"context"

	"github.com/jwolfley/unilib/internal/apperr"
	"github.com/jwolfley/unilib/internal/store"
)

// FetchGOG reads GOG Galaxy's own local catalog database read-only
// (spec §4.3) — the same modernc.org/sqlite driver as the Persistence
// Store, opened a second time via store.OpenReadOnly so we never
// contend with the primary writer connection.
func FetchGOG(ctx context.Context, settings Settings) ([]RawGame, error) {
	path, _ := settings.GetString(ctx, "gog_db_path", "")
	if path == "" {
		return nil, apperr.New(apperr.NotConfigured, "gog.db_path", nil)
	}

	db, err := store.OpenReadOnly(path)
	if err != nil {
		return nil, apperr.New(apperr.TransientNetwork, "gog.open", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
SELECT pt.gameReleaseKey, gp.title, ip.playTime
FROM PlayTasks pt
JOIN LibraryReleases lr ON lr.releaseKey = pt.gameReleaseKey
JOIN GamePieces gp ON gp.releaseKey = lr.releaseKey AND gp.gamePieceTypeId = (
  SELECT id FROM GamePieceTypes WHERE type = 'title')
LEFT JOIN InstalledBaseProducts ip ON ip.productId = pt.gameReleaseKey
`)
	if err != nil {
		return nil, apperr.New(apperr.Parse, "gog.query", err)
	}
	defer rows.Close()

	var out []RawGame
	for rows.Next() {
		var releaseKey, title string
		var playTime *float64
		if err := rows.Scan(&releaseKey, &title, &playTime); err != nil {
			continue
		}
		rg := RawGame{Name: title, Store: "gog", StoreID: releaseKey}
		if playTime != nil {
			rg.PlaytimeHours = playTime
		}
		out = append(out, rg)
	}
	return out, rows.Err()
}
