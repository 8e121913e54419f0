package vectorindex

import "context"

// Match is one scored result from a similarity query. Score follows the
// cosine-similarity convention: higher is more relevant.
type Match struct {
	ID       string
	Score    float64
	Metadata map[string]string
}

// Record is one vector to upsert. Metadata is a flat string map; nested
// structures must be pre-serialized (e.g. JSON-encoded sale info) before
// they reach the index.
type Record struct {
	ID       string
	Values   []float32
	Metadata map[string]string
}

// Index abstracts a vector database collection.
type Index interface {
	// Query returns the topK nearest records by cosine similarity, with
	// their metadata. An optional filter restricts matches to records whose
	// metadata contains every given key/value pair.
	Query(ctx context.Context, vector []float32, topK int, filter map[string]string) ([]Match, error)

	// Upsert inserts or replaces records by ID.
	Upsert(ctx context.Context, records []Record) error

	// Fetch returns the stored vectors for the given IDs. Missing IDs are
	// simply absent from the result.
	Fetch(ctx context.Context, ids []string) (map[string][]float32, error)
}
