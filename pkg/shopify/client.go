package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"
)

const DefaultAPIVersion = "2023-10"

var nextLinkPattern = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// Client is a minimal Shopify Admin REST client covering the product
// catalog, which is all the chatbot ingestion needs.
type Client struct {
	storeURL    string
	accessToken string
	apiVersion  string
	httpClient  *http.Client
}

type Product struct {
	ID          int64     `json:"id"`
	Handle      string    `json:"handle"`
	Title       string    `json:"title"`
	BodyHTML    string    `json:"body_html"`
	Vendor      string    `json:"vendor"`
	ProductType string    `json:"product_type"`
	Tags        string    `json:"tags"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Variants    []Variant `json:"variants"`
	Images      []Image   `json:"images"`
}

type Variant struct {
	ID                int64  `json:"id"`
	Title             string `json:"title"`
	Price             string `json:"price"`
	CompareAtPrice    string `json:"compare_at_price"`
	SKU               string `json:"sku"`
	Position          int    `json:"position"`
	InventoryPolicy   string `json:"inventory_policy"`
	InventoryQuantity int    `json:"inventory_quantity"`
}

type Image struct {
	ID       int64  `json:"id"`
	Src      string `json:"src"`
	Position int    `json:"position"`
}

type productsPage struct {
	Products []Product `json:"products"`
}

func NewClient(storeURL, accessToken, apiVersion string) (*Client, error) {
	if storeURL == "" || accessToken == "" {
		return nil, fmt.Errorf("faltan credenciales de Shopify")
	}
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}
	return &Client{
		storeURL:    storeURL,
		accessToken: accessToken,
		apiVersion:  apiVersion,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// AllProducts walks the catalog following Link-header pagination until the
// store runs out of pages.
func (c *Client) AllProducts(ctx context.Context, pageSize int) ([]Product, error) {
	if pageSize <= 0 || pageSize > 250 {
		pageSize = 250
	}

	endpoint := fmt.Sprintf("https://%s/admin/api/%s/products.json?limit=%d",
		c.storeURL, c.apiVersion, pageSize)

	var all []Product
	for endpoint != "" {
		page, next, err := c.fetchPage(ctx, endpoint)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		endpoint = next
	}
	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, endpoint string) ([]Product, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("shopify request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("shopify API returned status %d: %s", resp.StatusCode, string(body))
	}

	var page productsPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, "", fmt.Errorf("decode products page: %w", err)
	}

	return page.Products, nextPageURL(resp.Header.Get("Link")), nil
}

// nextPageURL extracts the rel="next" target from a Link header, if any.
func nextPageURL(linkHeader string) string {
	if linkHeader == "" {
		return ""
	}
	m := nextLinkPattern.FindStringSubmatch(linkHeader)
	if m == nil {
		return ""
	}
	if _, err := url.Parse(m[1]); err != nil {
		return ""
	}
	return m[1]
}
