package factory

import (
	"fmt"

	"bakery-support-be/pkg/llm"
	"bakery-support-be/pkg/llm/anthropic"
)

func NewCompletionProvider(providerType, modelName, apiKey string) (llm.CompletionProvider, error) {
	switch providerType {
	case "anthropic", "claude":
		return anthropic.NewAnthropicProvider(apiKey, modelName)
	default:
		return nil, fmt.Errorf("unsupported completion provider: %s", providerType)
	}
}
