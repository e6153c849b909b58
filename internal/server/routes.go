package server

import (
	"github.com/geoffsee/proseva-sub005/internal/server/middleware"
	"github.com/geoffsee/proseva-sub005/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Knowledge search
	apiRoutes.POST("/search", routes.SearchKnowledgeHandler)

	// Node browsing routes
	apiRoutes.GET("/nodes", routes.SearchNodesHandler)
	apiRoutes.GET("/nodes/:id", routes.GetNodeHandler)
	apiRoutes.GET("/nodes/:id/neighbors", routes.GetNodeNeighborsHandler)
	apiRoutes.GET("/nodes/:id/similar", routes.GetNodeSimilarHandler)

	// Corpus stats
	apiRoutes.GET("/stats", routes.GetStatsHandler)
}
