package embedding

import "context"

// Provider defines the interface for generating text embeddings.
type Provider interface {
	// EmbedQuery embeds a single search query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// EmbedDocuments embeds a batch of documents in one call.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}
