package models

import (
	"time"
)

// Metadata carries document-level key/value pairs through the pipeline.
// The writer copies it per chunk; nothing in the pipeline mutates a shared map.
type Metadata map[string]any

// Reserved metadata keys understood by the pipeline.
const (
	MetaQuery         = "query"          // triggers query expansion and post-insert reranking
	MetaQueryExpanded = "query_expanded" // written by ExpandQuery
	MetaParent        = "parent"         // source filename, set per chunk by the writer
	MetaChunkIndex    = "chunk_index"    // zero-based sequence index, set per chunk by the writer
)

// Clone returns a shallow copy so stages can derive new metadata without
// touching the caller's map.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m)+2)
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Query returns the query key as a string, if present and non-empty.
func (m Metadata) Query() (string, bool) {
	v, ok := m[MetaQuery]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

// Document describes a source file handed to the pipeline.
type Document struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"` // pdf | docx
	Encrypted   bool   `json:"encrypted"`
}

// Chunk is one token-bounded unit emitted by the chunker.
//
// Seq:      zero-based position inside the parent document; strictly increasing.
// Content:  chunk text, already enriched/split.
// TokenCnt: token count under the model's tokenizer (estimate if unavailable).
type Chunk struct {
	Seq      int
	Content  string
	TokenCnt int
}

// ChunkRecord is the durable row written per chunk. Never updated in place;
// re-ingesting a document replaces all of its rows.
type ChunkRecord struct {
	ID        string    `db:"id" json:"id"`
	Content   string    `db:"content" json:"content"`
	Metadata  Metadata  `db:"metadata" json:"metadata"`
	Embedding []float32 `db:"embedding" json:"embedding"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ScoredChunk pairs a persisted record with a relevance score against a query.
type ScoredChunk struct {
	Record ChunkRecord `json:"record"`
	Score  float64     `json:"score"`
}

// IngestResult summarizes one document's ingestion.
//
// DegradedEmbeddings counts chunks persisted with a zero vector after the
// embedder exhausted its retries; callers may choose to re-ingest those.
type IngestResult struct {
	Parent             string        `json:"parent"`
	ChunksWritten      int           `json:"chunks_written"`
	DegradedEmbeddings int           `json:"degraded_embeddings"`
	Ranked             []ScoredChunk `json:"ranked,omitempty"`
}

// BatchResult accumulates per-document outcomes across a directory run.
type BatchResult struct {
	Processed int `json:"processed"`
	Errors    int `json:"errors"`
}
