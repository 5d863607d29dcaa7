package web

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

func (app *Application) ListLabels(c echo.Context) error {
	labels, err := app.Repo.ListLabels(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errBody(err))
	}
	return c.JSON(http.StatusOK, labels)
}

// AddGameLabel assigns a user-owned (auto=false) label — the Auto-Tag
// Engine is the only writer of auto=true rows (§4.10).
func (app *Application) AddGameLabel(c echo.Context) error {
	gameID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errBody(err))
	}
	labelID, err := strconv.ParseInt(c.Param("labelId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errBody(err))
	}
	if err := app.Repo.AddGameLabel(c.Request().Context(), gameID, labelID, false); err != nil {
		return c.JSON(http.StatusInternalServerError, errBody(err))
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

func (app *Application) RemoveGameLabel(c echo.Context) error {
	gameID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errBody(err))
	}
	labelID, err := strconv.ParseInt(c.Param("labelId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errBody(err))
	}
	if err := app.Repo.RemoveGameLabel(c.Request().Context(), gameID, labelID); err != nil {
		return c.JSON(http.StatusInternalServerError, errBody(err))
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}
