package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/estavel/ingesta/internal/core"
	"github.com/estavel/ingesta/internal/core/embed_engine"
	"github.com/estavel/ingesta/internal/models"
)

// SearchService answers similarity queries over the ingested corpus:
// embed the query, fetch the nearest chunks from storage, rerank.
type SearchService struct {
	store    core.VectorStore
	embedder *embed_engine.Generator
	reranker *embed_engine.Reranker
	dim      int
	logger   *slog.Logger
}

func NewSearchService(store core.VectorStore, embedder *embed_engine.Generator, reranker *embed_engine.Reranker, logger *slog.Logger) *SearchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchService{
		store:    store,
		embedder: embedder,
		reranker: reranker,
		dim:      embedder.TargetDim(),
		logger:   logger.With("component", "search"),
	}
}

// Search returns the top-limit chunks for query, reranked by relevance.
func (s *SearchService) Search(ctx context.Context, query string, limit int) ([]models.ScoredChunk, error) {
	if query == "" {
		return nil, fmt.Errorf("empty query")
	}
	if limit <= 0 {
		limit = 10
	}

	vec, degraded := s.embedder.Embed(ctx, query)
	if degraded {
		return nil, fmt.Errorf("query embedding unavailable")
	}

	records, err := s.store.Search(ctx, s.dim, vec, limit)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	if s.reranker == nil {
		out := make([]models.ScoredChunk, len(records))
		for i, rec := range records {
			out[i] = models.ScoredChunk{Record: rec, Score: embed_engine.Cosine(vec, rec.Embedding)}
		}
		return out, nil
	}
	return s.reranker.Rerank(ctx, query, records)
}
