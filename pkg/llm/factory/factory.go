package factory

import (
	"fmt"

	"etp-authoring-be/pkg/llm"
	"etp-authoring-be/pkg/llm/fallback"
	"etp-authoring-be/pkg/llm/ollama"
)

func NewLLMProvider(providerType, modelName, baseURL string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "fallback", "none", "":
		return fallback.New(), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
