package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/estavel/ingesta/internal/core"
)

// OpenAIEmbedder speaks to any OpenAI-compatible embedding endpoint,
// typically a local model server. This is the "local inference" face of the
// provider interface; consumers cannot tell it apart from the remote ones.
type OpenAIEmbedder struct {
	embedder embeddings.Embedder
}

// NewOpenAIEmbedder connects to baseURL. A "none" token keeps local servers
// that skip authentication happy.
func NewOpenAIEmbedder(baseURL, model string) (*OpenAIEmbedder, error) {
	client, err := openai.New(
		openai.WithBaseURL(baseURL),
		openai.WithToken("none"),
		openai.WithEmbeddingModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("openai client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("openai embedder: %w", err)
	}
	return &OpenAIEmbedder{embedder: embedder}, nil
}

func (e *OpenAIEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	return e.embedder.EmbedDocuments(ctx, texts)
}

var _ core.EmbeddingProvider = (*OpenAIEmbedder)(nil)
