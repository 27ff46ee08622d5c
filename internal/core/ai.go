package core

import "context"

// EmbeddingProvider maps texts to vectors. Implementations may be a local
// model runtime or a remote HTTP service; consumers must not care which.
type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// LLMProvider generates text from a system/user prompt pair. Used by the
// content enricher for summarization, entity extraction and paraphrasing.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}

// Tokenizer counts tokens the way the target embedding model would.
type Tokenizer interface {
	Count(text string) (int, error)
}
