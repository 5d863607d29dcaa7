package updatetracker

import (
	"context"

	"github.com/jwolfley/unilib/internal/apperr"
	"github.com/jwolfley/unilib/internal/store"
)

// EpicFetcher is the declared known hole of spec §4.7: "Epic update
// tracking is declared a known hole (no implementation); the Tracker
// returns 'no data' for Epic entries rather than failing the batch."
type EpicFetcher struct{}

func (EpicFetcher) Observe(ctx context.Context, game store.Game) (Observation, error) {
	return Observation{}, apperr.New(apperr.NotConfigured, "epic.observe", nil)
}
