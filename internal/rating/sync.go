package rating

import (
	"context"

	"github.com/jwolfley/unilib/internal/metacritic"
	"github.com/jwolfley/unilib/internal/protondb"
	"github.com/jwolfley/unilib/internal/store"
)

// SyncMetacritic scrapes game's Metacritic page (if metacritic_slug is
// set), writes the scores, and recomputes average_rating.
func SyncMetacritic(ctx context.Context, repo store.Repo, client *metacritic.Client, game store.Game) error {
	if !game.MetacriticSlug.Valid || game.MetacriticSlug.String == "" {
		return nil
	}
	scores, err := client.FetchScores(ctx, game.MetacriticSlug.String)
	if err != nil {
		return err
	}
	if err := repo.SetRatingSources(ctx, game.ID, nil, scores.CriticScore, scores.UserScore); err != nil {
		return err
	}
	if scores.CriticScore != nil {
		game.MetacriticScore.Valid, game.MetacriticScore.Float64 = true, *scores.CriticScore
	}
	if scores.UserScore != nil {
		game.MetacriticUserScore.Valid, game.MetacriticUserScore.Float64 = true, *scores.UserScore
	}
	return Recompute(ctx, repo, game)
}

// SyncProtonDB fetches the compatibility summary for game's Steam
// AppID and persists it (§4.6, §3 Compatibility entity).
func SyncProtonDB(ctx context.Context, repo store.Repo, client *protondb.Client, game store.Game) error {
	if !game.SteamAppID.Valid {
		return nil
	}
	update, err := client.FetchSummary(ctx, game.SteamAppID.Int64)
	if err != nil {
		return err
	}
	return repo.SetProtonDBData(ctx, game.ID, update)
}
