package shopify

import (
	"strings"
	"testing"

	"bakery-support-be/pkg/retrieval"
)

func TestPriceRange(t *testing.T) {
	tests := []struct {
		name    string
		product Product
		want    string
	}{
		{
			name:    "no variants",
			product: Product{},
			want:    "Consultar",
		},
		{
			name: "unparseable prices",
			product: Product{Variants: []Variant{
				{Price: "no disponible"},
			}},
			want: "Consultar",
		},
		{
			name: "single price",
			product: Product{Variants: []Variant{
				{Price: "120.00"},
			}},
			want: "$120.00 MXN",
		},
		{
			name: "same price across variants",
			product: Product{Variants: []Variant{
				{Price: "120.00"},
				{Price: "120.00"},
			}},
			want: "$120.00 MXN",
		},
		{
			name: "price spread",
			product: Product{Variants: []Variant{
				{Price: "85.50"},
				{Price: "240.00"},
			}},
			want: "$85.50 - $240.00 MXN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PriceRange(tt.product); got != tt.want {
				t.Errorf("PriceRange() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAvailability(t *testing.T) {
	tests := []struct {
		name    string
		product Product
		want    string
	}{
		{
			name:    "no variants",
			product: Product{},
			want:    "No disponible",
		},
		{
			name: "in stock",
			product: Product{Variants: []Variant{
				{InventoryQuantity: 3},
			}},
			want: "Disponible",
		},
		{
			name: "out of stock but sellable on continue policy",
			product: Product{Variants: []Variant{
				{InventoryQuantity: 0, InventoryPolicy: "continue"},
			}},
			want: "Disponible",
		},
		{
			name: "out of stock",
			product: Product{Variants: []Variant{
				{InventoryQuantity: 0, InventoryPolicy: "deny"},
			}},
			want: "No disponible",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Availability(tt.product); got != tt.want {
				t.Errorf("Availability() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActiveSales(t *testing.T) {
	product := Product{Variants: []Variant{
		{Title: "Chica", Price: "80.00", CompareAtPrice: "100.00"},
		{Title: "Grande", Price: "150.00", CompareAtPrice: ""},
		{Title: "Familiar", Price: "300.00", CompareAtPrice: "300.00"},
	}}

	sales := ActiveSales(product)
	if len(sales) != 1 {
		t.Fatalf("sales = %d, want 1", len(sales))
	}
	sale := sales[0]
	if sale.VariantTitle != "Chica" {
		t.Errorf("variant = %q", sale.VariantTitle)
	}
	if sale.OriginalPrice != 100 || sale.CurrentPrice != 80 {
		t.Errorf("prices = %v/%v, want 100/80", sale.OriginalPrice, sale.CurrentPrice)
	}
	if sale.DiscountPercent != 20 {
		t.Errorf("discount = %d, want 20", sale.DiscountPercent)
	}
}

func TestActiveSalesRoundsDiscount(t *testing.T) {
	product := Product{Variants: []Variant{
		{Title: "Caja", Price: "66.00", CompareAtPrice: "99.00"},
	}}

	sales := ActiveSales(product)
	if len(sales) != 1 {
		t.Fatal("expected one sale")
	}
	// 1 - 66/99 = 0.3333..., rounds to 33.
	if sales[0].DiscountPercent != 33 {
		t.Errorf("discount = %d, want 33", sales[0].DiscountPercent)
	}
}

func TestBuildDocument(t *testing.T) {
	product := Product{
		ID:          42,
		Handle:      "hogaza-masa-madre",
		Title:       "Hogaza de Masa Madre",
		ProductType: "Pan",
		Variants: []Variant{
			{Title: "Chica", Price: "80.00", CompareAtPrice: "100.00", InventoryQuantity: 2},
		},
	}

	doc := BuildDocument(product, "masamadre.myshopify.com")

	if doc.ID != "product_42" {
		t.Errorf("id = %q, want product_42", doc.ID)
	}
	if doc.Category != "pan" {
		t.Errorf("category = %q, want lowercased product type", doc.Category)
	}
	if doc.SourceURL != "https://masamadre.myshopify.com/products/hogaza-masa-madre" {
		t.Errorf("url = %q", doc.SourceURL)
	}
	if !doc.HasActiveSale || len(doc.SaleInfo) != 1 {
		t.Error("active sale should be detected")
	}
	if doc.Availability != "Disponible" {
		t.Errorf("availability = %q", doc.Availability)
	}
}

func TestBuildDocumentDefaultCategory(t *testing.T) {
	doc := BuildDocument(Product{ID: 1, Title: "Gorra"}, "masamadre.myshopify.com")
	if doc.Category != "otro" {
		t.Errorf("category = %q, want otro", doc.Category)
	}
}

func TestIndexMetadataRoundTripsSales(t *testing.T) {
	product := Product{
		ID:          7,
		Title:       "Concha",
		ProductType: "Pan Dulce",
		Variants: []Variant{
			{Title: "Individual", Price: "25.00", CompareAtPrice: "30.00", InventoryQuantity: 10},
		},
	}
	metadata := IndexMetadata(BuildDocument(product, "masamadre.myshopify.com"))

	if metadata["has_active_sale"] != "True" {
		t.Fatalf("has_active_sale = %q, want \"True\"", metadata["has_active_sale"])
	}

	sales := retrieval.DecodeSales(metadata)
	if len(sales) != 1 {
		t.Fatalf("decoded sales = %d, want 1", len(sales))
	}
	if sales[0].VariantTitle != "Individual" || sales[0].OriginalPrice != 30 {
		t.Errorf("decoded sale = %+v", sales[0])
	}
}

func TestIndexMetadataNoSale(t *testing.T) {
	metadata := IndexMetadata(BuildDocument(Product{ID: 1, Title: "Bolillo"}, "masamadre.myshopify.com"))

	if metadata["has_active_sale"] != "False" {
		t.Errorf("has_active_sale = %q, want \"False\"", metadata["has_active_sale"])
	}
	if _, ok := metadata["sale_info"]; ok {
		t.Error("sale_info should be absent without an active sale")
	}
}

func TestEmbeddingTextStripsHTML(t *testing.T) {
	product := Product{
		Title:    "Baguette",
		BodyHTML: "<p>Crujiente por fuera, <strong>suave</strong> por dentro.</p>",
		Variants: []Variant{{Title: "Default", Price: "45.00"}},
	}

	got := EmbeddingText(product)
	if !strings.HasPrefix(got, "Producto: Baguette\n") {
		t.Errorf("text should start with the product line, got %q", got)
	}
	for _, fragment := range []string{"<p>", "<strong>"} {
		if strings.Contains(got, fragment) {
			t.Errorf("html tag %q leaked into embedding text:\n%s", fragment, got)
		}
	}
	if !strings.Contains(got, "Variante: Default, Precio: $45.00 MXN") {
		t.Errorf("missing variant line:\n%s", got)
	}
}
