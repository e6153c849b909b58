package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/geoffsee/proseva-sub005/internal/mcp"
	"github.com/geoffsee/proseva-sub005/internal/util"
	"github.com/geoffsee/proseva-sub005/pkg/ai"
	aiollama "github.com/geoffsee/proseva-sub005/pkg/ai/ollama"
	aiopenai "github.com/geoffsee/proseva-sub005/pkg/ai/openai"
	"github.com/geoffsee/proseva-sub005/pkg/corpus"
	corpuspgx "github.com/geoffsee/proseva-sub005/pkg/corpus/pgx"
	"github.com/geoffsee/proseva-sub005/pkg/logger"
	"github.com/geoffsee/proseva-sub005/pkg/logger/console"
	"github.com/geoffsee/proseva-sub005/pkg/retrieval"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

const version = "0.1.0"

// Serves the knowledge-graph tools over MCP stdio. The console logger
// writes to stderr, so protocol traffic on stdout stays clean.
func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := pgxpool.New(ctx, util.GetEnv("DATABASE_URL"))
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

	engine, err := retrieval.NewEngine(store, db,
		retrieval.WithDiagnostics(retrieval.LogSink{}),
	)
	if err != nil {
		logger.Fatal("Failed to build retrieval engine", "err", err)
	}

	server := mcp.NewServer(engine, newEmbedder(engine.Dimension()), version)
	if err := mcp.Run(ctx, server); err != nil {
		logger.Fatal("MCP server exited", "err", err)
	}
}

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
