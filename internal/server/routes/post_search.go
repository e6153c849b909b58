package routes

import (
	"errors"
	"net/http"

	"github.com/geoffsee/proseva-sub005/internal/server/middleware"
	"github.com/geoffsee/proseva-sub005/pkg/retrieval"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// SearchKnowledgeHandler answers a natural-language legal query. The query
// is embedded server-side unless the caller supplies a precomputed
// embedding matching the corpus dimension.
func SearchKnowledgeHandler(c echo.Context) error {
	type searchParams struct {
		Query     string    `json:"query" validate:"required"`
		TopK      int       `json:"top_k"`
		Embedding []float32 `json:"embedding"`
	}

	params := new(searchParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request params"})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	embedding := params.Embedding
	if len(embedding) == 0 {
		if app.Embedder == nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"error": "No embedding model configured; supply an embedding",
			})
		}
		var err error
		embedding, err = app.Embedder.GenerateEmbedding(ctx, []byte(params.Query))
		if err != nil {
			return c.JSON(http.StatusBadGateway, map[string]string{"error": "Failed to embed query"})
		}
	}

	result, err := app.Engine.SearchKnowledge(ctx, embedding, params.Query, params.TopK)
	if err != nil {
		if errors.Is(err, retrieval.ErrDimensionMismatch) {
			return c.JSON(http.StatusUnprocessableEntity, map[string]string{
				"error": "Embedding dimension does not match corpus",
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Search failed"})
	}

	return c.JSON(http.StatusOK, result)
}
