package embed_engine

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/estavel/ingesta/internal/core"
	"github.com/estavel/ingesta/internal/models"
)

// Reranker re-scores retrieved or freshly inserted chunks against a query
// and returns them by descending relevance. Scoring is cosine similarity
// between the query embedding and each chunk's stored vector; persistence is
// never touched.
type Reranker struct {
	provider core.EmbeddingProvider
}

func NewReranker(provider core.EmbeddingProvider) *Reranker {
	return &Reranker{provider: provider}
}

func (r *Reranker) Rerank(ctx context.Context, query string, records []models.ChunkRecord) ([]models.ScoredChunk, error) {
	if len(records) == 0 {
		return nil, nil
	}
	vecs, err := r.provider.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("empty query embedding")
	}
	qv := vecs[0]

	scored := make([]models.ScoredChunk, len(records))
	for i, rec := range records {
		scored[i] = models.ScoredChunk{Record: rec, Score: Cosine(qv, rec.Embedding)}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	return scored, nil
}

// Cosine computes cosine similarity over the overlapping prefix of two
// vectors. Zero vectors score zero.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
