package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mid "github.com/geoffsee/proseva-sub005/internal/server/middleware"
	"github.com/geoffsee/proseva-sub005/internal/util"
	"github.com/geoffsee/proseva-sub005/pkg/ai"
	aiollama "github.com/geoffsee/proseva-sub005/pkg/ai/ollama"
	aiopenai "github.com/geoffsee/proseva-sub005/pkg/ai/openai"
	"github.com/geoffsee/proseva-sub005/pkg/corpus"
	corpuspgx "github.com/geoffsee/proseva-sub005/pkg/corpus/pgx"
	corpuss3 "github.com/geoffsee/proseva-sub005/pkg/corpus/s3"
	"github.com/geoffsee/proseva-sub005/pkg/logger"
	"github.com/geoffsee/proseva-sub005/pkg/retrieval"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/go-playground/validator"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func Init() {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var key *keyfunc.Keyfunc
	if authURL := util.GetEnv("AUTH_URL"); authURL != "" {
		jwksUrl := authURL + "/jwks"
		k, err := keyfunc.NewDefault([]string{jwksUrl})
		if err != nil {
			logger.Fatal("Failed to load jwks keys", "err", err)
		}
		key = &k
	}

	databaseURL := util.GetEnv("DATABASE_URL")
	runMigrations(databaseURL)

	conn, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}
	defer conn.Close()
	conn.Config().AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	db := corpuspgx.NewGraphDB(conn)
	store, err := corpus.Load(ctx, db)
	if err != nil {
		logger.Fatal("Failed to load corpus", "err", err)
	}

	resolver := newTextResolver(ctx, db)
	engine, err := retrieval.NewEngine(store, resolver,
		retrieval.WithDiagnostics(retrieval.LogSink{}),
		retrieval.WithPoolSize(int(util.GetEnvNumeric("POOL_SIZE", retrieval.DefaultPoolSize))),
	)
	if err != nil {
		logger.Fatal("Failed to build retrieval engine", "err", err)
	}

	app := &mid.App{
		Engine:       engine,
		Embedder:     newEmbedder(engine.Dimension()),
		Key:          key,
		MasterAPIKey: util.GetEnv("MASTER_API_KEY"),
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("Request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
			)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}

func runMigrations(databaseURL string) {
	dir := util.GetEnv("MIGRATIONS_DIR")
	if dir == "" {
		dir = "migrations"
	}

	m, err := migrate.New("file://"+dir, databaseURL)
	if err != nil {
		logger.Fatal("Failed to init migrations", "err", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		logger.Fatal("Failed to run migrations", "err", err)
	}
}

// newTextResolver picks the provenance backend for node text. The default
// reads from the same PostgreSQL database; TEXT_BACKEND=s3 serves chunk
// text from the ingest bucket instead.
func newTextResolver(ctx context.Context, db *corpuspgx.GraphDB) corpus.TextResolver {
	if util.GetEnv("TEXT_BACKEND") != "s3" {
		return db
	}

	client := corpuss3.NewS3Client(ctx)
	if client == nil {
		logger.Fatal("Failed to create S3 client")
	}
	return corpuss3.NewTextResolver(client,
		util.GetEnv("AWS_BUCKET"),
		util.GetEnv("AWS_PREFIX"),
	)
}

// newEmbedder builds the query embedder from the AI_* environment. Without
// an embedding model configured the server still serves graph lookups, but
// search requests must carry a precomputed embedding.
func newEmbedder(dimensions int) ai.QueryEmbedder {
	model := util.GetEnv("AI_EMBED_MODEL")
	if model == "" {
		return nil
	}

	switch util.GetEnv("AI_ADAPTER") {
	case "ollama":
		client, err := aiollama.NewEmbedOllamaClient(aiollama.NewEmbedOllamaClientParams{
			EmbeddingModel: model,

			BaseURL: util.GetEnv("AI_EMBED_URL"),
			ApiKey:  util.GetEnv("AI_EMBED_KEY"),

			Dimensions:            dimensions,
			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 4)),
		})
		if err != nil {
			logger.Fatal("Failed to create Ollama client", "err", err)
		}
		return client
	default:
		return aiopenai.NewEmbedOpenAIClient(aiopenai.NewEmbedOpenAIClientParams{
			EmbeddingModel: model,

			EmbeddingURL: util.GetEnv("AI_EMBED_URL"),
			EmbeddingKey: util.GetEnv("AI_EMBED_KEY"),

			Dimensions:            dimensions,
			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 4)),
		})
	}
}
