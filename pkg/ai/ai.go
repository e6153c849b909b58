// Package ai defines the embedding interface the retrieval engine's
// callers use to turn query text into vectors. Corpus embeddings are
// produced offline by the ingestion pipeline; at serving time only query
// embedding is needed, and it must use the same model and dimension.
package ai

import "context"

// QueryEmbedder creates a vector embedding for query text. The returned
// vector's dimension must match the corpus embedding dimension.
type QueryEmbedder interface {
	GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error)
}
