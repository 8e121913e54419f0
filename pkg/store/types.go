package store

// SaleRecord holds one active discount for a product variant.
// Values come verbatim from the catalog; the discount percent is never
// recomputed here.
type SaleRecord struct {
	VariantTitle    string  `json:"variant_title"`
	OriginalPrice   float64 `json:"original_price"`
	CurrentPrice    float64 `json:"current_price"`
	DiscountPercent int     `json:"discount_percent"`
}

// SourceRef is a product reference attached to a chatbot answer.
// Constructed fresh per query from retrieval matches, never persisted.
type SourceRef struct {
	Title        string  `json:"title"`
	URL          string  `json:"url"`
	Price        string  `json:"price"`
	Availability string  `json:"availability"`
	Category     string  `json:"category"`
	Score        float64 `json:"relevance_score"`
}

// ProductDocument is the denormalized catalog entry stored in the product
// vector index. The index owns it; the pipeline only reads it back through
// match metadata.
type ProductDocument struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Category      string       `json:"category"`
	PriceRange    string       `json:"price_range"`
	Availability  string       `json:"availability"`
	SourceURL     string       `json:"source_url"`
	HasActiveSale bool         `json:"has_active_sale"`
	SaleInfo      []SaleRecord `json:"sale_info,omitempty"`
}
