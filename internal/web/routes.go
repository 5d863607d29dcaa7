package web

import "github.com/labstack/echo/v4"

func registerRoutes(e *echo.Echo, app *Application) {
	e.GET("/api/games", app.DiscoverGames)
	e.GET("/api/games/:id", app.GetGame)
	e.POST("/api/games/:id/hidden", app.SetHidden)
	e.POST("/api/games/:id/labels/:labelId", app.AddGameLabel)
	e.DELETE("/api/games/:id/labels/:labelId", app.RemoveGameLabel)

	e.GET("/api/labels", app.ListLabels)

	e.GET("/api/popularity/:type", app.GetPopularity)

	e.POST("/api/jobs/:type", app.LaunchJob)
	e.GET("/api/jobs/:id", app.GetJobStatus)
	e.POST("/api/jobs/:id/cancel", app.CancelJob)
}
