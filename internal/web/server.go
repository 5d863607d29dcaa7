// Package web is the HTTP boundary: thin JSON handlers over
// internal/query, internal/jobs and internal/store. HTML templating,
// CSS/JS, and the embedded browser shell are out of scope (spec §1)
// — every route here returns JSON. Grounded directly on the teacher's
// Application/echo.New()/middleware.Logger()+Recover() wiring in
// app.go/main.go.
package web

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/jwolfley/unilib/internal/igdb"
	"github.com/jwolfley/unilib/internal/jobs"
	"github.com/jwolfley/unilib/internal/popularity"
	"github.com/jwolfley/unilib/internal/store"
)

// Application mirrors the teacher's Application container — one
// struct holding everything a handler needs, passed by pointer so
// Echo's method-value routes share it.
type Application struct {
	Repo       store.Repo
	Engine     *jobs.Engine
	Registry   *jobs.Registry
	Bodies     jobs.Bodies
	Popularity *popularity.Cache
	IGDB       *igdb.Client // nil when IGDB credentials aren't configured
	Log        zerolog.Logger
}

// NewServer builds the Echo instance and registers every route. The
// caller owns Start/Shutdown. Login/session enforcement is out of
// scope (spec §1) — ENABLE_AUTH/SECRET_KEY/SESSION_EXPIRY_DAYS exist
// only as config readers for a boundary collaborator that owns them.
func NewServer(app *Application) *echo.Echo {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	registerRoutes(e, app)
	return e
}
