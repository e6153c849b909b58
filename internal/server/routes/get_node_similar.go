package routes

import (
	"errors"
	"net/http"

	"github.com/geoffsee/proseva-sub005/internal/server/middleware"
	"github.com/geoffsee/proseva-sub005/pkg/retrieval"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// GetNodeSimilarHandler ranks other nodes by embedding similarity to the
// given node.
func GetNodeSimilarHandler(c echo.Context) error {
	type getSimilarParams struct {
		ID    int64 `param:"id" validate:"required,numeric"`
		Limit int   `query:"limit" validate:"omitempty,min=1,max=100"`
	}

	params := new(getSimilarParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	similar, err := app.Engine.FindSimilar(ctx, params.ID, params.Limit)
	if err != nil {
		if errors.Is(err, retrieval.ErrNodeNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Node not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
	}

	return c.JSON(http.StatusOK, similar)
}
