package embed_engine

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/estavel/ingesta/internal/core"
)

// MemoryReleaser is implemented by providers that hold accelerator memory
// and can drop their caches between attempts.
type MemoryReleaser interface {
	ReleaseMemory()
}

// Generator turns chunk text into a vector of exactly targetDim floats.
// It owns the degradation policy: an out-of-memory failure on the primary
// (accelerated) provider is retried once on the fallback provider after
// releasing memory; a second failure yields a zero vector, so ingestion never
// aborts on one bad chunk.
type Generator struct {
	primary   core.EmbeddingProvider
	fallback  core.EmbeddingProvider // may be nil; primary is retried instead
	targetDim int
	logger    *slog.Logger

	dimWarn sync.Once // mismatch is logged once, not per chunk
}

func NewGenerator(primary, fallback core.EmbeddingProvider, targetDim int, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		primary:   primary,
		fallback:  fallback,
		targetDim: targetDim,
		logger:    logger.With("component", "embedder"),
	}
}

// TargetDim returns the storage vector width this generator produces.
func (g *Generator) TargetDim() int { return g.targetDim }

// Embed returns a vector of length targetDim and whether the embedding was
// degraded to the zero vector. It never returns an error: every failure mode
// ends in a usable (if degraded) vector, logged with context.
func (g *Generator) Embed(ctx context.Context, text string) ([]float32, bool) {
	vec, err := g.embedOne(ctx, g.primary, text)
	if err == nil {
		return g.fitDim(vec), false
	}

	if !IsOOM(err) {
		g.logger.Error("embedding failed", "err", err)
		return make([]float32, g.targetDim), true
	}

	// Device memory pressure: release what we can and retry once on the
	// unaccelerated provider.
	g.logger.Warn("embedding OOM, retrying on fallback device", "err", err)
	if rel, ok := g.primary.(MemoryReleaser); ok {
		rel.ReleaseMemory()
	}
	retry := g.fallback
	if retry == nil {
		retry = g.primary
	}
	vec, err = g.embedOne(ctx, retry, text)
	if err != nil {
		g.logger.Error("embedding failed after OOM retry, degrading to zero vector", "err", err)
		return make([]float32, g.targetDim), true
	}
	return g.fitDim(vec), false
}

func (g *Generator) embedOne(ctx context.Context, p core.EmbeddingProvider, text string) ([]float32, error) {
	vecs, err := p.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return make([]float32, g.targetDim), nil
	}
	return vecs[0], nil
}

// fitDim reconciles the provider's native width with the storage schema:
// zero-pad short vectors on the right, truncate long ones. Applied on every
// path because native width is not guaranteed to match the schema, and the
// adjustment changes retrieval geometry, so it is logged.
func (g *Generator) fitDim(vec []float32) []float32 {
	if len(vec) == g.targetDim {
		return vec
	}
	g.dimWarn.Do(func() {
		g.logger.Warn("embedding dimension mismatch, adjusting",
			"native", len(vec), "target", g.targetDim)
	})
	if len(vec) > g.targetDim {
		return vec[:g.targetDim]
	}
	out := make([]float32, g.targetDim)
	copy(out, vec)
	return out
}

// IsOOM classifies provider errors that signal device memory exhaustion.
func IsOOM(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"out of memory", "resource exhausted", "insufficient memory", "oom"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
