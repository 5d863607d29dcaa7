package web

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// LaunchJob fires off a job by type (fire-and-forget: HTTP handlers
// never block on a job, per §5) and returns its id immediately.
func (app *Application) LaunchJob(c echo.Context) error {
	jobType := c.Param("type")
	body, ok := app.Bodies[jobType]
	if !ok {
		return c.JSON(http.StatusNotFound, errBody(errUnknownJobType(jobType)))
	}

	force := c.QueryParam("force") == "true"
	id, err := app.Engine.Launch(c.Request().Context(), jobType, force, body)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, errBody(err))
	}
	return c.JSON(http.StatusAccepted, map[string]string{"job_id": id})
}

func (app *Application) GetJobStatus(c echo.Context) error {
	job, err := app.Repo.GetJob(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, errBody(err))
	}
	return c.JSON(http.StatusOK, job)
}

// CancelJob is cooperative: it sets the cancelled flag and returns
// immediately. The job body observes it at its own next checkpoint
// (§5).
func (app *Application) CancelJob(c echo.Context) error {
	app.Registry.Cancel(c.Param("id"))
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

type unknownJobTypeError struct{ jobType string }

func (e unknownJobTypeError) Error() string { return "unknown job type: " + e.jobType }

func errUnknownJobType(jobType string) error { return unknownJobTypeError{jobType: jobType} }
