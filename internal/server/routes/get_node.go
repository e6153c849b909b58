package routes

import (
	"errors"
	"net/http"

	"github.com/geoffsee/proseva-sub005/internal/server/middleware"
	"github.com/geoffsee/proseva-sub005/pkg/retrieval"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// GetNodeHandler returns a node's metadata, resolved text, and adjacency.
func GetNodeHandler(c echo.Context) error {
	type getNodeParams struct {
		ID int64 `param:"id" validate:"required,numeric"`
	}

	params := new(getNodeParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	details, err := app.Engine.GetNode(ctx, params.ID)
	if err != nil {
		if errors.Is(err, retrieval.ErrNodeNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Node not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, details)
}
