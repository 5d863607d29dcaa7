package web

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jwolfley/unilib/internal/apperr"
)

// GetPopularity drives the Popularity Cache's Tier1->Tier2->IGDB read
// path (§4.11) for a comma-separated set of IGDB ids.
func (app *Application) GetPopularity(c echo.Context) error {
	popType := c.Param("type")

	raw := c.QueryParam("igdb_ids")
	if raw == "" {
		return c.JSON(http.StatusBadRequest, errBody(apperr.New(apperr.Fatal, "popularity.ids", nil)))
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errBody(err))
		}
		ids = append(ids, id)
	}

	if app.IGDB == nil {
		return c.JSON(http.StatusServiceUnavailable, errBody(apperr.New(apperr.NotConfigured, "popularity.igdb", nil)))
	}

	values, err := app.Popularity.Get(c.Request().Context(), popType, ids, func(ctx context.Context, igdbIDs []int64, typeID int) (map[int64]float64, error) {
		raws, err := app.IGDB.FetchPopularity(ctx, igdbIDs, typeID)
		if err != nil {
			return nil, err
		}
		out := make(map[int64]float64, len(raws))
		for _, v := range raws {
			out[v.GameID] = v.Value
		}
		return out, nil
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errBody(err))
	}
	return c.JSON(http.StatusOK, values)
}
