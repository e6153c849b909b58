package routes

import (
	"net/http"

	"github.com/geoffsee/proseva-sub005/internal/server/middleware"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// SearchNodesHandler lists corpus nodes filtered by type and substring
// match, paginated with limit and offset.
func SearchNodesHandler(c echo.Context) error {
	type searchNodesParams struct {
		NodeType string `query:"type"`
		Search   string `query:"search"`
		Limit    int    `query:"limit" validate:"omitempty,min=1,max=100"`
		Offset   int    `query:"offset" validate:"omitempty,min=0"`
	}

	params := new(searchNodesParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	nodes := app.Engine.SearchNodes(ctx, params.NodeType, params.Search, params.Limit, params.Offset)
	return c.JSON(http.StatusOK, nodes)
}
