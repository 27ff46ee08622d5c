package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/estavel/ingesta/internal/core"
)

// HTTPEmbedder is a client for the embedding HTTP service:
//
//	POST {base}/api/embeddings  {"model": ..., "input": text | [text]}
//	→ {"embedding": vector | [vector]}
//
// 400 means the model could not be loaded; 500 means inference failed.
type HTTPEmbedder struct {
	base   string
	model  string
	client *http.Client
}

func NewHTTPEmbedder(base, model string) *HTTPEmbedder {
	return &HTTPEmbedder{
		base:   base,
		model:  model,
		client: &http.Client{Timeout: 2 * time.Minute},
	}
}

type embedRequest struct {
	Model string `json:"model"`
	Input any    `json:"input"`
}

type embedResponse struct {
	Embedding json.RawMessage `json:"embedding"`
}

func (e *HTTPEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(embedRequest{Model: e.model, Input: texts})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.base+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		switch resp.StatusCode {
		case http.StatusBadRequest:
			return nil, fmt.Errorf("embedding server rejected model %q: %s", e.model, detail)
		default:
			return nil, fmt.Errorf("embedding server status %d: %s", resp.StatusCode, detail)
		}
	}

	var er embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}

	// The server answers a bare vector for single input and a vector list
	// for batches; accept both shapes regardless of what we sent.
	var many [][]float32
	if err := json.Unmarshal(er.Embedding, &many); err == nil {
		return many, nil
	}
	var one []float32
	if err := json.Unmarshal(er.Embedding, &one); err == nil {
		return [][]float32{one}, nil
	}
	return nil, fmt.Errorf("unexpected embedding payload shape")
}

var _ core.EmbeddingProvider = (*HTTPEmbedder)(nil)
