package middleware

import (
	"github.com/MicahParks/keyfunc/v3"
	"github.com/labstack/echo/v4"

	"github.com/geoffsee/proseva-sub005/pkg/ai"
	"github.com/geoffsee/proseva-sub005/pkg/retrieval"
)

type AppUser struct {
	UserID int64
	Role   string
}

// App carries the process-wide dependencies handlers need: the retrieval
// engine over the loaded corpus, the query embedder, and auth material.
type App struct {
	Engine       *retrieval.Engine
	Embedder     ai.QueryEmbedder
	Key          *keyfunc.Keyfunc
	MasterAPIKey string
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}
