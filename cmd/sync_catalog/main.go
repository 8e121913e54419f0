package main

import (
	"context"
	"log"

	"bakery-support-be/internal/config"
	"bakery-support-be/pkg/database"
	"bakery-support-be/pkg/embedding"
	"bakery-support-be/pkg/shopify"
	"bakery-support-be/pkg/vectorindex"
)

const embedBatchSize = 32

// Pulls the full Shopify catalog, embeds every product and upserts the
// results into the product vector index. Safe to re-run; records are
// replaced by id.
func main() {
	cfg := config.Load()
	ctx := context.Background()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Error: Failed to connect to database: %v", err)
	}

	client, err := shopify.NewClient(cfg.Shopify.StoreURL, cfg.Shopify.AccessToken, cfg.Shopify.APIVersion)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}

	embeddingProvider := embedding.NewMistralProvider(
		cfg.Chatbot.MistralBaseURL,
		cfg.Keys.Mistral,
		cfg.Chatbot.EmbeddingModel,
	)
	productIndex := vectorindex.NewPgIndex(db, cfg.Chatbot.ProductIndexTable)

	log.Println("🔄 Obteniendo productos de Shopify...")
	products, err := client.AllProducts(ctx, 250)
	if err != nil {
		log.Fatalf("Error: Failed to fetch products: %v", err)
	}
	log.Printf("✅ %d productos obtenidos", len(products))

	total := 0
	for start := 0; start < len(products); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(products) {
			end = len(products)
		}
		batch := products[start:end]

		texts := make([]string, len(batch))
		for i, p := range batch {
			texts[i] = shopify.EmbeddingText(p)
		}

		vectors, err := embeddingProvider.EmbedDocuments(ctx, texts)
		if err != nil {
			log.Fatalf("Error: Embedding batch failed: %v", err)
		}

		records := make([]vectorindex.Record, len(batch))
		for i, p := range batch {
			doc := shopify.BuildDocument(p, cfg.Shopify.StoreURL)
			records[i] = vectorindex.Record{
				ID:       doc.ID,
				Values:   vectors[i],
				Metadata: shopify.IndexMetadata(doc),
			}
		}

		if err := productIndex.Upsert(ctx, records); err != nil {
			log.Fatalf("Error: Upsert failed: %v", err)
		}
		total += len(records)
		log.Printf("   %d/%d productos indexados", total, len(products))
	}

	log.Printf("✅ Catálogo sincronizado: %d productos en %s", total, cfg.Chatbot.ProductIndexTable)
}
