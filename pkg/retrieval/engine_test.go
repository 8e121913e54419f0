package retrieval

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"bakery-support-be/internal/constant"
	"bakery-support-be/pkg/vectorindex"
)

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (s *stubEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("not used")
}

type stubIndex struct {
	matches  []vectorindex.Match
	err      error
	lastTopK int
}

func (s *stubIndex) Query(ctx context.Context, vector []float32, topK int, filter map[string]string) ([]vectorindex.Match, error) {
	s.lastTopK = topK
	return s.matches, s.err
}

func (s *stubIndex) Upsert(ctx context.Context, records []vectorindex.Record) error {
	return nil
}

func (s *stubIndex) Fetch(ctx context.Context, ids []string) (map[string][]float32, error) {
	return nil, nil
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func productMatch(id string, score float64) vectorindex.Match {
	return vectorindex.Match{
		ID:    id,
		Score: score,
		Metadata: map[string]string{
			"title":        "Hogaza de Masa Madre",
			"category":     "pan",
			"price_range":  "$120.00 MXN",
			"availability": "Disponible",
			"source_url":   "https://masamadre.mx/products/hogaza",
		},
	}
}

func TestBuildContextEmpty(t *testing.T) {
	if got := BuildContext(nil); got != constant.EmptyProductContext {
		t.Errorf("BuildContext(nil) = %q, want placeholder", got)
	}
}

func TestBuildContextFields(t *testing.T) {
	got := BuildContext([]vectorindex.Match{productMatch("product_1", 0.9)})

	for _, want := range []string{
		"ID: product_1\n",
		"Título: Hogaza de Masa Madre\n",
		"Categoría: pan\n",
		"Precio: $120.00 MXN\n",
		"Disponibilidad: Disponible\n",
		"URL: https://masamadre.mx/products/hogaza\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("context missing %q, got:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Ofertas Vigentes") {
		t.Error("context should not mention sales without an active sale flag")
	}
}

func TestBuildContextJoinsWithSeparator(t *testing.T) {
	got := BuildContext([]vectorindex.Match{
		productMatch("product_1", 0.9),
		productMatch("product_2", 0.7),
	})
	if strings.Count(got, "\n---\n") != 1 {
		t.Errorf("want exactly one separator between two matches, got:\n%s", got)
	}
}

func TestBuildContextSaleLines(t *testing.T) {
	match := productMatch("product_1", 0.9)
	match.Metadata["has_active_sale"] = "True"
	match.Metadata["sale_info"] = `[
		{"variant_title":"Chica","original_price":100,"current_price":80,"discount_percent":20},
		{"variant_title":"Grande","original_price":200,"current_price":150,"discount_percent":25},
		{"variant_title":"Familiar","original_price":300,"current_price":240,"discount_percent":20}
	]`

	got := BuildContext([]vectorindex.Match{match})

	if !strings.Contains(got, "\nOfertas Vigentes: ") {
		t.Fatalf("missing sales header, got:\n%s", got)
	}
	if !strings.Contains(got, "- Chica: De $100.00 a $80.00 MXN (20% OFF)") {
		t.Errorf("first sale line wrong, got:\n%s", got)
	}
	if !strings.Contains(got, "- Grande: De $200.00 a $150.00 MXN (25% OFF)") {
		t.Errorf("second sale line wrong, got:\n%s", got)
	}
	if strings.Contains(got, "Familiar") {
		t.Error("only the first two sale lines should render")
	}
}

func TestDecodeSales(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]string
		want     int
	}{
		{
			name: "flag off",
			metadata: map[string]string{
				"has_active_sale": "False",
				"sale_info":       `[{"variant_title":"Chica"}]`,
			},
			want: 0,
		},
		{
			name: "flag on",
			metadata: map[string]string{
				"has_active_sale": "True",
				"sale_info":       `[{"variant_title":"Chica","original_price":100,"current_price":80,"discount_percent":20}]`,
			},
			want: 1,
		},
		{
			name: "malformed payload",
			metadata: map[string]string{
				"has_active_sale": "True",
				"sale_info":       `{{not json`,
			},
			want: 0,
		},
		{
			name: "missing payload",
			metadata: map[string]string{
				"has_active_sale": "True",
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeSales(tt.metadata); len(got) != tt.want {
				t.Errorf("DecodeSales() returned %d records, want %d", len(got), tt.want)
			}
		})
	}
}

func TestRetrieveFiltersSourcesByScore(t *testing.T) {
	index := &stubIndex{matches: []vectorindex.Match{
		productMatch("product_1", 0.91),
		productMatch("product_2", 0.79),
	}}
	engine := NewEngine(&stubEmbedder{}, index, 3, 0.80, quietLogger())

	result, err := engine.Retrieve(context.Background(), "pan de masa madre")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}

	if len(result.Matches) != 2 {
		t.Errorf("matches = %d, want 2", len(result.Matches))
	}
	if len(result.Sources) != 1 {
		t.Fatalf("sources = %d, want 1", len(result.Sources))
	}
	if result.Sources[0].Score != 0.91 {
		t.Errorf("source score = %v, want 0.91", result.Sources[0].Score)
	}
	// Low-score matches still feed the prompt context.
	if strings.Count(result.Context, "ID: product_") != 2 {
		t.Errorf("context should include both matches, got:\n%s", result.Context)
	}
}

func TestRetrieveSourceDefaults(t *testing.T) {
	index := &stubIndex{matches: []vectorindex.Match{
		{ID: "product_9", Score: 0.95, Metadata: map[string]string{}},
	}}
	engine := NewEngine(&stubEmbedder{}, index, 3, 0.80, quietLogger())

	result, err := engine.Retrieve(context.Background(), "galletas")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(result.Sources) != 1 {
		t.Fatalf("sources = %d, want 1", len(result.Sources))
	}

	src := result.Sources[0]
	if src.Title != "Producto sin título" {
		t.Errorf("default title = %q", src.Title)
	}
	if src.Price != "Consultar" {
		t.Errorf("default price = %q", src.Price)
	}
	if src.Availability != "No disponible" {
		t.Errorf("default availability = %q", src.Availability)
	}
	if src.Category != "otro" {
		t.Errorf("default category = %q", src.Category)
	}
}

func TestSearchPassesRequestedTopK(t *testing.T) {
	index := &stubIndex{}
	engine := NewEngine(&stubEmbedder{}, index, 3, 0.80, quietLogger())

	if _, err := engine.Search(context.Background(), "pan", 7); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if index.lastTopK != 7 {
		t.Errorf("index received topK = %d, want 7", index.lastTopK)
	}

	// Zero falls back to the engine default.
	if _, err := engine.Search(context.Background(), "pan", 0); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if index.lastTopK != 3 {
		t.Errorf("index received topK = %d, want the default 3", index.lastTopK)
	}
}

func TestRetrieveEmbeddingFailure(t *testing.T) {
	engine := NewEngine(&stubEmbedder{err: errors.New("api down")}, &stubIndex{}, 3, 0.80, quietLogger())

	if _, err := engine.Retrieve(context.Background(), "pan"); err == nil {
		t.Fatal("expected error when the embedding provider fails")
	}
}

func TestRetrieveEmptyIndex(t *testing.T) {
	engine := NewEngine(&stubEmbedder{}, &stubIndex{}, 3, 0.80, quietLogger())

	result, err := engine.Retrieve(context.Background(), "pan")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if result.Context != constant.EmptyProductContext {
		t.Errorf("context = %q, want placeholder", result.Context)
	}
	if len(result.Sources) != 0 {
		t.Errorf("sources = %d, want 0", len(result.Sources))
	}
}
