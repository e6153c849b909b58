// Package openai implements query embedding against any OpenAI-compatible
// embeddings endpoint.
package openai

import (
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/semaphore"
)

const defaultTimeoutMin = 2

// EmbedOpenAIClient generates query embeddings via the OpenAI embeddings
// API. A client should be created using NewEmbedOpenAIClient.
type EmbedOpenAIClient struct {
	embeddingModel string
	dimensions     int
	timeoutMin     int

	embeddingLock *semaphore.Weighted

	EmbeddingClient *openai.Client
}

// NewEmbedOpenAIClientParams defines the configuration parameters for
// creating a new EmbedOpenAIClient.
//
// Dimensions fixes the output vector length; responses are truncated or
// zero-padded to it so query vectors always match the corpus dimension.
type NewEmbedOpenAIClientParams struct {
	EmbeddingModel string
	EmbeddingURL   string
	EmbeddingKey   string

	Dimensions            int
	TimeoutMinutes        int
	MaxConcurrentRequests int64
}

// NewEmbedOpenAIClient creates a new client configured with the provided
// parameters.
//
// Example:
//
//	client := openai.NewEmbedOpenAIClient(openai.NewEmbedOpenAIClientParams{
//		EmbeddingModel: "text-embedding-3-small",
//		EmbeddingURL:   "https://api.openai.com/v1",
//		EmbeddingKey:   os.Getenv("OPENAI_API_KEY"),
//		Dimensions:     1536,
//	})
func NewEmbedOpenAIClient(params NewEmbedOpenAIClientParams) *EmbedOpenAIClient {
	timeoutMin := params.TimeoutMinutes
	if timeoutMin <= 0 {
		timeoutMin = defaultTimeoutMin
	}
	maxConcurrent := params.MaxConcurrentRequests
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}

	return &EmbedOpenAIClient{
		embeddingModel: params.EmbeddingModel,
		dimensions:     params.Dimensions,
		timeoutMin:     timeoutMin,

		embeddingLock: semaphore.NewWeighted(maxConcurrent),

		EmbeddingClient: newOpenaiClient(params.EmbeddingURL, params.EmbeddingKey),
	}
}

func newOpenaiClient(
	baseURL string,
	apiKey string,
) *openai.Client {
	if apiKey == "" {
		return nil
	}
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}

	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)

	return &client
}
