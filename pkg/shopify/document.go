package shopify

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"bakery-support-be/pkg/store"
)

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// BuildDocument flattens a catalog product into the denormalized form the
// vector index stores.
func BuildDocument(product Product, storeURL string) store.ProductDocument {
	sales := ActiveSales(product)
	return store.ProductDocument{
		ID:            fmt.Sprintf("product_%d", product.ID),
		Title:         product.Title,
		Category:      categoryOf(product),
		PriceRange:    PriceRange(product),
		Availability:  Availability(product),
		SourceURL:     fmt.Sprintf("https://%s/products/%s", storeURL, product.Handle),
		HasActiveSale: len(sales) > 0,
		SaleInfo:      sales,
	}
}

// IndexMetadata flattens a document into the string map stored alongside its
// vector. Sale records travel JSON-encoded; booleans become "True"/"False" to
// stay compatible with existing index contents.
func IndexMetadata(doc store.ProductDocument) map[string]string {
	metadata := map[string]string{
		"title":           doc.Title,
		"category":        doc.Category,
		"price_range":     doc.PriceRange,
		"availability":    doc.Availability,
		"source_url":      doc.SourceURL,
		"has_active_sale": "False",
	}
	if doc.HasActiveSale {
		metadata["has_active_sale"] = "True"
		if encoded, err := json.Marshal(doc.SaleInfo); err == nil {
			metadata["sale_info"] = string(encoded)
		}
	}
	return metadata
}

// EmbeddingText renders the product as the plain text that gets embedded.
func EmbeddingText(product Product) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Producto: %s\n", product.Title))
	b.WriteString(fmt.Sprintf("Categoría: %s\n", categoryOf(product)))
	if product.Vendor != "" {
		b.WriteString(fmt.Sprintf("Marca: %s\n", product.Vendor))
	}
	if product.Tags != "" {
		b.WriteString(fmt.Sprintf("Etiquetas: %s\n", product.Tags))
	}
	if desc := stripHTML(product.BodyHTML); desc != "" {
		b.WriteString(fmt.Sprintf("Descripción: %s\n", desc))
	}
	for _, v := range product.Variants {
		b.WriteString(fmt.Sprintf("Variante: %s, Precio: $%s MXN\n", v.Title, v.Price))
	}
	return b.String()
}

// PriceRange summarizes the variant prices as display text.
func PriceRange(product Product) string {
	min, max := math.Inf(1), math.Inf(-1)
	for _, v := range product.Variants {
		price, err := strconv.ParseFloat(v.Price, 64)
		if err != nil {
			continue
		}
		if price < min {
			min = price
		}
		if price > max {
			max = price
		}
	}
	if math.IsInf(min, 1) {
		return "Consultar"
	}
	if min == max {
		return fmt.Sprintf("$%.2f MXN", min)
	}
	return fmt.Sprintf("$%.2f - $%.2f MXN", min, max)
}

// Availability reports whether any variant can still be bought.
func Availability(product Product) string {
	for _, v := range product.Variants {
		if v.InventoryQuantity > 0 || v.InventoryPolicy == "continue" {
			return "Disponible"
		}
	}
	return "No disponible"
}

// ActiveSales lists the variants currently discounted, comparing each price
// against its compare-at price.
func ActiveSales(product Product) []store.SaleRecord {
	var sales []store.SaleRecord
	for _, v := range product.Variants {
		current, err := strconv.ParseFloat(v.Price, 64)
		if err != nil {
			continue
		}
		original, err := strconv.ParseFloat(v.CompareAtPrice, 64)
		if err != nil || original <= current {
			continue
		}
		sales = append(sales, store.SaleRecord{
			VariantTitle:    v.Title,
			OriginalPrice:   original,
			CurrentPrice:    current,
			DiscountPercent: int(math.Round((1 - current/original) * 100)),
		})
	}
	return sales
}

func categoryOf(product Product) string {
	if product.ProductType == "" {
		return "otro"
	}
	return strings.ToLower(product.ProductType)
}

func stripHTML(s string) string {
	return strings.TrimSpace(htmlTagPattern.ReplaceAllString(s, " "))
}
