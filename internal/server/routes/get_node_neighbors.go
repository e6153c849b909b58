package routes

import (
	"errors"
	"net/http"

	"github.com/geoffsee/proseva-sub005/internal/server/middleware"
	"github.com/geoffsee/proseva-sub005/pkg/retrieval"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// GetNodeNeighborsHandler lists a node's edges with neighbor metadata,
// optionally filtered by relation type and direction.
func GetNodeNeighborsHandler(c echo.Context) error {
	type getNeighborsParams struct {
		ID        int64  `param:"id" validate:"required,numeric"`
		Relation  string `query:"relation" validate:"omitempty,oneof=contains cites references"`
		Direction string `query:"direction" validate:"omitempty,oneof=out in both"`
	}

	params := new(getNeighborsParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	neighbors, err := app.Engine.GetNeighbors(ctx, params.ID, params.Relation, params.Direction)
	if err != nil {
		if errors.Is(err, retrieval.ErrNodeNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Node not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, neighbors)
}
