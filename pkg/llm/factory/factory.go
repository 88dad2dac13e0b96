package factory

import (
	"fmt"

	"emotion-ai-be/pkg/llm"
	"emotion-ai-be/pkg/llm/ollama"
	"emotion-ai-be/pkg/llm/openai"
)

func NewProvider(providerType, modelName, ollamaBaseURL, openAIBaseURL, openAIKey string) (llm.Provider, error) {
	switch providerType {
	case "ollama":
		if ollamaBaseURL == "" {
			ollamaBaseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(ollamaBaseURL, modelName), nil
	case "openai":
		if openAIBaseURL == "" {
			openAIBaseURL = "https://api.openai.com/v1"
		}
		return openai.NewOpenAIProvider(openAIBaseURL, openAIKey, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
