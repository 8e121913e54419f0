package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const mistralEmbedModel = "mistral-embed"

// MistralProvider implements Provider against the Mistral embeddings API.
// mistral-embed produces 1024-dimensional vectors.
type MistralProvider struct {
	ApiKey  string
	BaseURL string
	Model   string
	Client  *http.Client
}

var _ Provider = &MistralProvider{}

func NewMistralProvider(baseURL, apiKey, model string) *MistralProvider {
	if baseURL == "" {
		baseURL = "https://api.mistral.ai"
	}
	if model == "" {
		model = mistralEmbedModel
	}
	return &MistralProvider{
		ApiKey:  apiKey,
		BaseURL: baseURL,
		Model:   model,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type mistralEmbeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type mistralEmbeddingData struct {
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

type mistralEmbeddingResponse struct {
	Data []mistralEmbeddingData `json:"data"`
}

func (p *MistralProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := p.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (p *MistralProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	reqBody := mistralEmbeddingRequest{
		Model: p.Model,
		Input: texts,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v1/embeddings", p.BaseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.ApiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mistral embedding request failed: %w", err)
	}
	defer res.Body.Close()

	resByte, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mistral embedding error: status %d, body %s", res.StatusCode, string(resByte))
	}

	var resEmbedding mistralEmbeddingResponse
	if err := json.Unmarshal(resByte, &resEmbedding); err != nil {
		return nil, err
	}

	if len(resEmbedding.Data) != len(texts) {
		return nil, fmt.Errorf("mistral embedding count mismatch: sent %d, got %d", len(texts), len(resEmbedding.Data))
	}

	// The API may return entries out of order; the index field is authoritative.
	vectors := make([][]float32, len(texts))
	for _, d := range resEmbedding.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("mistral embedding index out of range: %d", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}

	return vectors, nil
}
