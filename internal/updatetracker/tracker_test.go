package updatetracker

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jwolfley/unilib/internal/apperr"
	"github.com/jwolfley/unilib/internal/store"
)

type fakeFetcher struct {
	obs Observation
	err error
}

func (f fakeFetcher) Observe(ctx context.Context, game store.Game) (Observation, error) {
	return f.obs, f.err
}

func TestRun_UnknownStoreCountsAsNoData(t *testing.T) {
	games := []store.Game{{ID: 1, Store: "gog"}}
	stats := Run(context.Background(), nil, zerolog.Nop(), games, map[string]Fetcher{})
	if stats.NoData != 1 {
		t.Fatalf("stats = %+v, want NoData=1", stats)
	}
}

func TestRun_NotConfiguredFetcherCountsAsNoData(t *testing.T) {
	games := []store.Game{{ID: 1, Store: "epic"}}
	fetchers := map[string]Fetcher{"epic": EpicFetcher{}}
	stats := Run(context.Background(), nil, zerolog.Nop(), games, fetchers)
	if stats.NoData != 1 || stats.Failed != 0 {
		t.Fatalf("stats = %+v, want NoData=1 Failed=0", stats)
	}
}

func TestEpicFetcher_ReturnsNotConfigured(t *testing.T) {
	_, err := EpicFetcher{}.Observe(context.Background(), store.Game{})
	if apperr.KindOf(err) != apperr.NotConfigured {
		t.Fatalf("EpicFetcher.Observe err = %v, want NotConfigured", err)
	}
}

func TestRun_GenericFailurePropagatesAsFailed(t *testing.T) {
	games := []store.Game{{ID: 1, Store: "steam"}}
	fetchers := map[string]Fetcher{"steam": fakeFetcher{err: apperr.New(apperr.TransientNetwork, "x", nil)}}
	stats := Run(context.Background(), nil, zerolog.Nop(), games, fetchers)
	if stats.Failed != 1 {
		t.Fatalf("stats = %+v, want Failed=1", stats)
	}
}
