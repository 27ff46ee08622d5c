package core

import (
	"context"

	"github.com/estavel/ingesta/internal/models"
)

// VectorStore abstracts the pgvector-backed persistence layer. Chunk tables
// are routed by embedding dimension, so every operation names the dimension.
type VectorStore interface {
	// EnsureDimension creates the chunk table for dim if it does not exist.
	EnsureDimension(ctx context.Context, dim int) error

	// BeginIngest opens a transaction scoped to one document's chunk set.
	// The caller must Commit or Rollback; rollback discards every insert.
	BeginIngest(ctx context.Context, dim int) (IngestTx, error)

	// Search returns the limit nearest chunks to vec by L2 distance.
	Search(ctx context.Context, dim int, vec []float32, limit int) ([]models.ChunkRecord, error)

	Close() error
}

// IngestTx is the per-document write scope. Inserts are visible to other
// readers only after Commit.
type IngestTx interface {
	// DeleteByParent removes every chunk previously written for parent.
	// Called before the first insert so re-ingestion replaces, not duplicates.
	DeleteByParent(ctx context.Context, parent string) error

	Insert(ctx context.Context, rec models.ChunkRecord) error
	Commit() error
	Rollback() error
}
