package routes

import (
	"net/http"

	"github.com/geoffsee/proseva-sub005/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

func GetStatsHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App
	return c.JSON(http.StatusOK, app.Engine.Stats())
}
