package provider

import (
	"context"
	"errors"

	"github.com/lolamo/lolamo/config"
	ollama_provider "github.com/lolamo/lolamo/provider/ollama"
)

// Client represents different LLM providers
type Client string

const (
	Ollama Client = "ollama"
)

// Message represents a message in a conversation
type Message = ollama_provider.Message

// Provider is the interface that all LLM implementations must satisfy.
// ChatStream invokes emit for every text increment the model produces;
// a non-nil error from emit stops the stream and is returned as-is.
type Provider interface {
	ChatStream(ctx context.Context, messages []Message, emit func(delta string) error) error
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

// NewProvider creates a new LLM client based on the provided configuration
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	switch Client(cfg.Provider) {
	case Ollama:
		return ollama_provider.NewClient(cfg.BaseURL, cfg.ChatModel, cfg.EmbeddingModel, cfg.Timeout), nil
	default:
		return nil, errors.New("unsupported LLM provider")
	}
}
