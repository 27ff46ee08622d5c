package services

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"

	"github.com/estavel/ingesta/internal/core"
	"github.com/estavel/ingesta/internal/core/chunk_engine"
	"github.com/estavel/ingesta/internal/core/embed_engine"
	"github.com/estavel/ingesta/internal/core/extraction_engine"
	"github.com/estavel/ingesta/internal/models"
)

// IngestService is the ingestion writer: it streams chunks out of the
// chunker, embeds each one, and persists the whole document's chunk set in a
// single transaction. One service instance is bound to one embedding model
// and storage dimension; workers run independent calls in parallel, each
// holding its own pooled connection.
type IngestService struct {
	store    core.VectorStore
	cascade  *extraction_engine.Cascade
	chunker  *chunk_engine.Chunker
	embedder *embed_engine.Generator
	reranker *embed_engine.Reranker
	dim      int
	logger   *slog.Logger
}

func NewIngestService(
	store core.VectorStore,
	cascade *extraction_engine.Cascade,
	chunker *chunk_engine.Chunker,
	embedder *embed_engine.Generator,
	reranker *embed_engine.Reranker,
	logger *slog.Logger,
) *IngestService {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestService{
		store:    store,
		cascade:  cascade,
		chunker:  chunker,
		embedder: embedder,
		reranker: reranker,
		dim:      embedder.TargetDim(),
		logger:   logger.With("component", "ingest"),
	}
}

// Ingest chunks, embeds and persists one document's text, all-or-nothing.
// Previously ingested rows for the same filename are replaced inside the
// same transaction, so re-ingestion never duplicates.
//
// Returns the chunk count (plus rerank results when metadata carries a
// query); any mid-stream failure rolls back every insert and is returned.
func (s *IngestService) Ingest(ctx context.Context, filename, text string, meta models.Metadata) (*models.IngestResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoText, filename)
	}
	if meta == nil {
		meta = models.Metadata{}
	}

	tx, err := s.store.BeginIngest(ctx, s.dim)
	if err != nil {
		return nil, fmt.Errorf("begin ingest: %w", err)
	}

	if err := tx.DeleteByParent(ctx, filename); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("replace previous ingestion: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	chunkCh, metaOut := s.chunker.Stream(gctx, g, text, meta)

	query, hasQuery := metaOut.Query()

	result := &models.IngestResult{Parent: filename}
	var inserted []models.ChunkRecord

	g.Go(func() error {
		for chunk := range chunkCh {
			vec, degraded := s.embedder.Embed(gctx, chunk.Content)
			if degraded {
				result.DegradedEmbeddings++
				s.logger.Warn("chunk persisted with zero vector",
					"parent", filename, "chunk_index", chunk.Seq)
			}

			recMeta := metaOut.Clone()
			recMeta[models.MetaParent] = filename
			recMeta[models.MetaChunkIndex] = chunk.Seq

			rec := models.ChunkRecord{
				ID:        uuid.NewString(),
				Content:   strings.ReplaceAll(chunk.Content, "\x00", ""),
				Metadata:  recMeta,
				Embedding: vec,
				CreatedAt: time.Now().UTC(),
			}
			if err := tx.Insert(gctx, rec); err != nil {
				return fmt.Errorf("insert chunk %d: %w", chunk.Seq, err)
			}
			result.ChunksWritten++
			if hasQuery {
				inserted = append(inserted, rec)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit ingest: %w", err)
	}

	// Reranking only shapes the return value; rows are already committed.
	if hasQuery && s.reranker != nil && len(inserted) > 0 {
		ranked, err := s.reranker.Rerank(ctx, query, inserted)
		if err != nil {
			s.logger.Warn("post-insert rerank failed", "parent", filename, "err", err)
		} else {
			result.Ranked = ranked
		}
	}

	s.logger.Info("document ingested",
		"parent", filename, "chunks", result.ChunksWritten, "degraded", result.DegradedEmbeddings)
	return result, nil
}

// IngestFile runs the full pipeline for one file on disk: extraction
// cascade, per-document metadata, then Ingest. Degraded (below-threshold)
// text is still ingested when non-empty; the flag is logged so operators can
// spot weak extractions.
func (s *IngestService) IngestFile(ctx context.Context, path string, preferred extraction_engine.Method, meta models.Metadata) (*models.IngestResult, error) {
	if !IsValidFile(path) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFile, path)
	}

	if strings.HasSuffix(strings.ToLower(path), ".docx") && preferred == "" {
		preferred = extraction_engine.MethodDocx
	}

	res := s.cascade.Extract(ctx, path, preferred)
	if res.BelowThreshold {
		s.logger.Warn("extraction below threshold, ingesting best effort",
			"path", path, "method", string(res.Method), "len", len(res.Text))
	}

	docMeta := extraction_engine.ReadDocumentInfo(path)
	for k, v := range meta {
		docMeta[k] = v
	}

	return s.Ingest(ctx, filepath.Base(path), res.Text, docMeta)
}

// IngestDir walks dir for .pdf/.docx files and ingests them on a bounded
// worker pool. Individual document failures are counted and logged with the
// failing file, never halting the rest of the batch.
func (s *IngestService) IngestDir(ctx context.Context, dir string, preferred extraction_engine.Method, meta models.Metadata, workers int) (*models.BatchResult, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsValidFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	if workers < 1 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu     sync.Mutex
		result models.BatchResult
		wg     sync.WaitGroup
	)
	for _, path := range files {
		path := path
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			_, err := s.IngestFile(ctx, path, preferred, meta)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors++
				s.logger.Error("document failed", "path", path, "err", err)
				return
			}
			result.Processed++
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			result.Errors++
			mu.Unlock()
		}
	}
	wg.Wait()

	s.logger.Info("batch finished", "dir", dir, "processed", result.Processed, "errors", result.Errors)
	return &result, nil
}

// IsValidFile accepts the document types the cascade can handle.
func IsValidFile(path string) bool {
	low := strings.ToLower(path)
	return strings.HasSuffix(low, ".pdf") || strings.HasSuffix(low, ".docx")
}
