package web

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jwolfley/unilib/internal/query"
	"github.com/jwolfley/unilib/internal/store"
)

// DiscoverGames is the Query Layer's only HTTP entry point: it takes
// the already-resolved filter ids from the `filter` query parameter
// (comma-separated), composes the WHERE clause, and returns the
// cross-store-grouped result (§4.12).
func (app *Application) DiscoverGames(c echo.Context) error {
	ctx := c.Request().Context()

	var selected []query.Filter
	if raw := c.QueryParam("filter"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if f, ok := query.Registry[id]; ok {
				selected = append(selected, f)
			}
		}
	}

	games, err := app.Repo.ListGamesMatching(ctx, query.Compose(selected))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errBody(err))
	}
	groups := query.GroupRows(games)

	return c.JSON(http.StatusOK, groups)
}

// GetGame returns one game row by local id.
func (app *Application) GetGame(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errBody(err))
	}
	g, err := app.Repo.GetGame(c.Request().Context(), id)
	if err == store.ErrNoRows {
		return c.JSON(http.StatusNotFound, errBody(err))
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errBody(err))
	}
	return c.JSON(http.StatusOK, g)
}

// SetHidden toggles a game's user-owned hidden flag.
func (app *Application) SetHidden(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errBody(err))
	}
	var body struct {
		Hidden bool `json:"hidden"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errBody(err))
	}
	if err := app.Repo.SetHidden(c.Request().Context(), id, body.Hidden); err != nil {
		return c.JSON(http.StatusInternalServerError, errBody(err))
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

func errBody(err error) map[string]string {
	return map[string]string{"error": err.Error()}
}
