package chunk_engine

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/estavel/ingesta/internal/core/tokenizer"
	"github.com/estavel/ingesta/internal/models"
)

func testChunker(t *testing.T, budget int) *Chunker {
	t.Helper()
	reg := tokenizer.NewRegistry()
	reg.Register(tokenizer.ModelInfo{Name: "test-model", Dim: 8, MaxSeqLen: budget})

	c, err := NewChunker(reg, "test-model", nil, nil, Config{
		OverlapRatio:    0.1,
		ChunkSize:       200,
		ChunkOverlap:    20,
		MinParagraphLen: 10,
	}, nil)
	require.NoError(t, err)
	return c
}

func collect(t *testing.T, c *Chunker, text string, meta models.Metadata) ([]models.Chunk, models.Metadata) {
	t.Helper()
	g, gctx := errgroup.WithContext(context.Background())
	ch, metaOut := c.Stream(gctx, g, text, meta)

	var chunks []models.Chunk
	for chunk := range ch {
		chunks = append(chunks, chunk)
	}
	require.NoError(t, g.Wait())
	return chunks, metaOut
}

func TestStreamShortSectionEmittedIntact(t *testing.T) {
	c := testChunker(t, 50)
	text := "1 Introduction\nThis short opening section stays within budget easily.\n\n" +
		"2 Details\nThe second section is also brief and fits in one chunk."

	chunks, _ := collect(t, c, text, models.Metadata{})
	require.Len(t, chunks, 2)
	assert.True(t, strings.HasPrefix(chunks[0].Content, "1 Introduction"))
	assert.True(t, strings.HasPrefix(chunks[1].Content, "2 Details"))
	for _, ck := range chunks {
		assert.LessOrEqual(t, ck.TokenCnt, c.Budget())
	}
}

func TestStreamOversizedSectionWindowed(t *testing.T) {
	c := testChunker(t, 50)
	long := strings.TrimSpace(strings.Repeat("alpha beta gamma delta epsilon ", 120))
	text := "1 Introduction\nThis short opening section stays within budget easily.\n\n" +
		"2 Details\n" + long

	chunks, _ := collect(t, c, text, models.Metadata{})
	require.Greater(t, len(chunks), 2)

	// first chunk is the intact short section
	assert.True(t, strings.HasPrefix(chunks[0].Content, "1 Introduction"))

	// the long section became multiple windows, starting at its heading
	assert.True(t, strings.HasPrefix(chunks[1].Content, "2 Details"))
	assert.True(t, strings.HasSuffix(chunks[len(chunks)-1].Content, "epsilon"))

	for i, ck := range chunks {
		assert.Equal(t, i, ck.Seq, "sequence numbers must be contiguous from zero")
		assert.NotEmpty(t, ck.Content)
	}
}

func TestStreamIdempotent(t *testing.T) {
	c := testChunker(t, 50)
	text := "1 First\nA section long enough to survive the paragraph filter.\n\n" +
		"2 Second\n" + strings.TrimSpace(strings.Repeat("word token item thing other ", 90))

	first, _ := collect(t, c, text, models.Metadata{})
	second, _ := collect(t, c, text, models.Metadata{})
	assert.Equal(t, first, second)
}

func TestStreamExpandsQueryWithoutMutating(t *testing.T) {
	reg := tokenizer.NewRegistry()
	reg.Register(tokenizer.ModelInfo{Name: "m", Dim: 8, MaxSeqLen: 50})
	c, err := NewChunker(reg, "m", nil, DefaultThesaurus(), Config{MinParagraphLen: 10}, nil)
	require.NoError(t, err)

	meta := models.Metadata{models.MetaQuery: "vulnerability"}
	_, metaOut := collect(t, c, "A single paragraph that clears the length filter.", meta)

	assert.Contains(t, metaOut, models.MetaQueryExpanded)
	assert.NotContains(t, meta, models.MetaQueryExpanded)
}

func TestStreamCancelledContextStopsEmission(t *testing.T) {
	c := testChunker(t, 50)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g, gctx := errgroup.WithContext(ctx)
	// nobody drains the channel, so once its buffer fills the producer can
	// only observe cancellation
	_, _ = c.Stream(gctx, g, strings.Repeat("cancel mid stream please now ", 200), models.Metadata{})

	assert.ErrorIs(t, g.Wait(), context.Canceled)
}

func TestGroupParagraphsPacksUnderBudget(t *testing.T) {
	c := testChunker(t, 50)
	para := strings.TrimSpace(strings.Repeat("pack ", 15)) // ~19 tokens
	text := strings.Join([]string{para, para, para}, "\n\n")

	chunks, err := c.GroupParagraphs(text)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, para+"\n\n"+para, chunks[0].Content)
	assert.Equal(t, para, chunks[1].Content)
	assert.Equal(t, 0, chunks[0].Seq)
	assert.Equal(t, 1, chunks[1].Seq)
}

func TestGroupParagraphsOversizedFlushedAlone(t *testing.T) {
	c := testChunker(t, 50)
	small := strings.TrimSpace(strings.Repeat("small ", 12))
	huge := strings.TrimSpace(strings.Repeat("longword ", 50)) // well over budget

	chunks, err := c.GroupParagraphs(small + "\n\n" + huge)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 2)

	assert.Equal(t, small, chunks[0].Content, "buffered paragraph flushed before the oversized one")
	for i, ck := range chunks {
		assert.Equal(t, i, ck.Seq)
	}
	for _, ck := range chunks[1:] {
		assert.NotContains(t, ck.Content, "small", "oversized paragraph never merged with neighbours")
	}
}

func TestNewChunkerUnknownModel(t *testing.T) {
	_, err := NewChunker(tokenizer.NewRegistry(), "nope", nil, nil, Config{}, nil)
	assert.Error(t, err)
}
