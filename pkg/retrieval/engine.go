package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"bakery-support-be/internal/constant"
	"bakery-support-be/pkg/embedding"
	"bakery-support-be/pkg/store"
	"bakery-support-be/pkg/vectorindex"
)

const (
	DefaultTopK = 3

	// Minimum similarity for a match to surface as a user-visible source.
	// Matches below it still feed the prompt context; the model decides
	// contextual relevance on its own.
	DefaultRelevanceThreshold = 0.80

	maxSaleLines = 2
)

// Result carries everything one retrieval pass produced: the prompt-ready
// context block, the raw matches, and the score-filtered source refs.
type Result struct {
	Context string
	Matches []vectorindex.Match
	Sources []store.SourceRef
}

// Engine turns a customer query into product context via embedding plus
// vector similarity search.
type Engine struct {
	embeddingProvider embedding.Provider
	index             vectorindex.Index
	topK              int
	threshold         float64
	logger            *log.Logger
}

func NewEngine(embeddingProvider embedding.Provider, index vectorindex.Index, topK int, threshold float64, logger *log.Logger) *Engine {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if threshold <= 0 {
		threshold = DefaultRelevanceThreshold
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		embeddingProvider: embeddingProvider,
		index:             index,
		topK:              topK,
		threshold:         threshold,
		logger:            logger,
	}
}

// Retrieve embeds the query and fetches the configured number of top matches
// from the product index. An empty match set yields a placeholder context,
// not an error.
func (e *Engine) Retrieve(ctx context.Context, query string) (*Result, error) {
	return e.Search(ctx, query, e.topK)
}

// Search is Retrieve with a caller-chosen match count. topK <= 0 falls back
// to the engine default.
func (e *Engine) Search(ctx context.Context, query string, topK int) (*Result, error) {
	if topK <= 0 {
		topK = e.topK
	}

	vector, err := e.embeddingProvider.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := e.index.Query(ctx, vector, topK, nil)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	sources := e.filterSources(matches)
	e.logger.Printf("[INFO] Productos encontrados: %d, sugerencias filtradas (score>%.2f): %d",
		len(matches), e.threshold, len(sources))

	return &Result{
		Context: BuildContext(matches),
		Matches: matches,
		Sources: sources,
	}, nil
}

// BuildContext renders matches into the product context block fed to the
// model. Every match participates regardless of score.
func BuildContext(matches []vectorindex.Match) string {
	if len(matches) == 0 {
		return constant.EmptyProductContext
	}

	parts := make([]string, 0, len(matches))
	for _, match := range matches {
		var b strings.Builder
		b.WriteString(fmt.Sprintf("ID: %s\n", match.ID))
		b.WriteString(fmt.Sprintf("Título: %s\n", match.Metadata["title"]))
		b.WriteString(fmt.Sprintf("Categoría: %s\n", match.Metadata["category"]))
		b.WriteString(fmt.Sprintf("Precio: %s\n", match.Metadata["price_range"]))
		b.WriteString(fmt.Sprintf("Disponibilidad: %s\n", match.Metadata["availability"]))
		b.WriteString(fmt.Sprintf("URL: %s\n", match.Metadata["source_url"]))

		if sales := DecodeSales(match.Metadata); len(sales) > 0 {
			b.WriteString("\nOfertas Vigentes: ")
			for i, sale := range sales {
				if i >= maxSaleLines {
					break
				}
				b.WriteString(fmt.Sprintf("\n- %s: De $%.2f a $%.2f MXN (%d%% OFF)",
					sale.VariantTitle, sale.OriginalPrice, sale.CurrentPrice, sale.DiscountPercent))
			}
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "\n---\n")
}

func (e *Engine) filterSources(matches []vectorindex.Match) []store.SourceRef {
	sources := make([]store.SourceRef, 0, len(matches))
	for _, match := range matches {
		if match.Score < e.threshold {
			e.logger.Printf("[DEBUG] Documento filtrado por score bajo (%.3f): %s",
				match.Score, metaOr(match.Metadata, "title", "Sin título"))
			continue
		}
		sources = append(sources, store.SourceRef{
			Title:        metaOr(match.Metadata, "title", "Producto sin título"),
			URL:          match.Metadata["source_url"],
			Price:        metaOr(match.Metadata, "price_range", "Consultar"),
			Availability: metaOr(match.Metadata, "availability", "No disponible"),
			Category:     metaOr(match.Metadata, "category", "otro"),
			Score:        match.Score,
		})
	}
	return sources
}

// DecodeSales decodes the sale_info blob when the sale flag is on. Malformed
// payloads degrade to no sales rather than failing the retrieval.
func DecodeSales(metadata map[string]string) []store.SaleRecord {
	if metadata["has_active_sale"] != "True" {
		return nil
	}
	raw := metadata["sale_info"]
	if raw == "" {
		return nil
	}
	var sales []store.SaleRecord
	if err := json.Unmarshal([]byte(raw), &sales); err != nil {
		return nil
	}
	return sales
}

func metaOr(metadata map[string]string, key, fallback string) string {
	if v, ok := metadata[key]; ok && v != "" {
		return v
	}
	return fallback
}
