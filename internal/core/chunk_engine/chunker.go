package chunk_engine

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
	"golang.org/x/sync/errgroup"

	"github.com/estavel/ingesta/internal/core"
	"github.com/estavel/ingesta/internal/core/tokenizer"
	"github.com/estavel/ingesta/internal/models"
)

// Config tunes the chunker.
//
// OverlapRatio:    fraction of the token budget kept as sliding-window overlap.
// ChunkSize:       character size for the recursive fallback splitter.
// ChunkOverlap:    character overlap for the recursive fallback splitter.
// Separators:      split points for the recursive fallback splitter.
// MinParagraphLen: paragraph filter minimum.
type Config struct {
	OverlapRatio    float64
	ChunkSize       int
	ChunkOverlap    int
	Separators      []string
	MinParagraphLen int
}

// Chunker partitions extracted text into token-bounded chunks for one
// embedding model: paragraph filtering, heading-based sectioning, optional
// enrichment, then per-section emit-or-split against the model's budget.
type Chunker struct {
	tok      core.Tokenizer
	budget   int
	enricher *Enricher
	th       Thesaurus
	cfg      Config
	logger   *slog.Logger
}

// NewChunker resolves the model's token budget and tokenizer from the
// registry. The enricher may be nil (no enrichment stage).
func NewChunker(reg *tokenizer.Registry, model string, enricher *Enricher, th Thesaurus, cfg Config, logger *slog.Logger) (*Chunker, error) {
	info, err := reg.Lookup(model)
	if err != nil {
		return nil, err
	}
	tok, err := reg.Tokenizer(model)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Chunker{
		tok:      tok,
		budget:   info.MaxSeqLen,
		enricher: enricher,
		th:       th,
		cfg:      cfg,
		logger:   logger.With("component", "chunker", "model", model),
	}, nil
}

// Budget returns the model's maximum input-token count.
func (c *Chunker) Budget() int { return c.budget }

// Stream lazily emits token-bounded chunks on the returned channel, one at a
// time, so a document's chunk set never sits in memory at once. Sequence
// numbers match emission order and are contiguous from zero. The returned
// metadata is the expanded copy (query expansion never mutates the input).
//
// The goroutine runs under g; closing the channel signals completion, and a
// cancelled ctx stops emission mid-document.
func (c *Chunker) Stream(ctx context.Context, g *errgroup.Group, text string, meta models.Metadata) (<-chan models.Chunk, models.Metadata) {
	metaOut := ExpandQuery(meta, c.th)
	out := make(chan models.Chunk, 8)

	g.Go(func() error {
		defer close(out)

		seq := 0
		emit := func(content string, tokens int) error {
			select {
			case out <- models.Chunk{Seq: seq, Content: content, TokenCnt: tokens}:
				seq++
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		paras := FilterParagraphs(text, c.cfg.MinParagraphLen)
		joined := strings.Join(paras, "\n\n")
		for _, sec := range SplitSections(joined) {
			body := sec.Text
			if c.enricher != nil {
				body = c.enricher.Enrich(ctx, body)
			}

			n := c.count(body)
			if n <= c.budget {
				if err := emit(body, n); err != nil {
					return err
				}
				continue
			}

			overlap := int(float64(c.budget) * c.cfg.OverlapRatio)
			parts := SlidingWindow(body, c.budget, overlap)
			if len(parts) == 0 {
				// Only reachable with a non-positive budget.
				var err error
				parts, err = c.recursiveSplit(body, overlap)
				if err != nil {
					return err
				}
			}
			for _, p := range parts {
				if err := emit(p, c.count(p)); err != nil {
					return err
				}
			}
		}
		return nil
	})

	return out, metaOut
}

// GroupParagraphs is the alternate mode used when section structure is not
// wanted: consecutive paragraphs are packed into one chunk while the running
// token count stays under budget. A single paragraph over budget is flushed
// alone and split by the recursive splitter, never merged with neighbours.
func (c *Chunker) GroupParagraphs(text string) ([]models.Chunk, error) {
	paras := FilterParagraphs(text, c.cfg.MinParagraphLen)

	var (
		chunks []models.Chunk
		buf    []string
		tokSum int
	)
	flush := func() {
		if len(buf) == 0 {
			return
		}
		chunks = append(chunks, models.Chunk{
			Seq:      len(chunks),
			Content:  strings.Join(buf, "\n\n"),
			TokenCnt: tokSum,
		})
		buf = buf[:0]
		tokSum = 0
	}

	for _, p := range paras {
		n := c.count(p)
		if n > c.budget {
			flush()
			parts, err := c.recursiveSplit(p, c.cfg.ChunkOverlap)
			if err != nil {
				return nil, err
			}
			for _, part := range parts {
				chunks = append(chunks, models.Chunk{Seq: len(chunks), Content: part, TokenCnt: c.count(part)})
			}
			continue
		}
		if tokSum+n > c.budget {
			flush()
		}
		buf = append(buf, p)
		tokSum += n
	}
	flush()
	return chunks, nil
}

// recursiveSplit is the generic fallback splitter, configured with the same
// size/overlap knobs as the primary strategies.
func (c *Chunker) recursiveSplit(text string, overlap int) ([]string, error) {
	size := c.cfg.ChunkSize
	if size <= 0 {
		size = 500
	}
	if overlap >= size {
		overlap = size / 2
	}
	opts := []textsplitter.Option{
		textsplitter.WithChunkSize(size),
		textsplitter.WithChunkOverlap(overlap),
	}
	if len(c.cfg.Separators) > 0 {
		opts = append(opts, textsplitter.WithSeparators(c.cfg.Separators))
	}
	sp := textsplitter.NewRecursiveCharacter(opts...)
	parts, err := sp.SplitText(text)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		parts = []string{text}
	}
	return parts, nil
}

// count falls back to the rune heuristic if the tokenizer errors; a counting
// failure must not abort chunking.
func (c *Chunker) count(text string) int {
	n, err := c.tok.Count(text)
	if err != nil {
		c.logger.Warn("tokenizer failed, using heuristic", "err", err)
		n, _ = tokenizer.Heuristic{}.Count(text)
	}
	return n
}
