package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/estavel/ingesta/internal/core"
	"github.com/estavel/ingesta/internal/models"
)

// Client is the pgvector-backed VectorStore. Chunks live in per-dimension
// tables (documents_<dim>) because a vector column's width is fixed at
// creation time.
type Client struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewClient(ctx context.Context, databaseURL string, logger *slog.Logger) (*Client, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}
	if logger == nil {
		logger = slog.Default()
	}

	sqlDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Pool sizing: one connection per pipeline worker plus API headroom.
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return &Client{db: sqlDB, logger: logger.With("component", "store")}, nil
}

func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// tableFor routes a dimension to its chunk table.
func tableFor(dim int) string {
	return fmt.Sprintf("documents_%d", dim)
}

// EnsureDimension bootstraps the pgvector extension and the chunk table for
// dim. Idempotent; called once at startup per configured dimension.
func (c *Client) EnsureDimension(ctx context.Context, dim int) error {
	if dim <= 0 {
		return fmt.Errorf("invalid embedding dimension %d", dim)
	}

	bootCtx, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id uuid PRIMARY KEY,
			content text NOT NULL,
			metadata jsonb NOT NULL DEFAULT '{}'::jsonb,
			embedding vector(%d) NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)`, tableFor(dim), dim),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_parent_idx ON %s ((metadata->>'parent'))`,
			tableFor(dim), tableFor(dim)),
	}
	for _, q := range stmts {
		if _, err := c.db.ExecContext(bootCtx, q); err != nil {
			return fmt.Errorf("bootstrap dim %d: %w", dim, err)
		}
	}
	c.logger.Info("chunk table ready", "table", tableFor(dim))
	return nil
}

// BeginIngest opens the per-document transaction. Acquisition blocks on the
// pool when it is exhausted; callers hold the tx for one document only.
func (c *Client) BeginIngest(ctx context.Context, dim int) (core.IngestTx, error) {
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin ingest tx: %w", err)
	}
	return &ingestTx{tx: tx, table: tableFor(dim)}, nil
}

// Search returns the limit nearest chunks to vec by L2 distance.
func (c *Client) Search(ctx context.Context, dim int, vec []float32, limit int) ([]models.ChunkRecord, error) {
	q := fmt.Sprintf(`
		SELECT id, content, metadata, embedding, created_at
		FROM %s
		ORDER BY embedding <-> $1
		LIMIT $2
	`, tableFor(dim))

	rows, err := c.db.QueryContext(ctx, q, pgvector.NewVector(vec), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ChunkRecord
	for rows.Next() {
		var (
			rec     models.ChunkRecord
			rawMeta []byte
			emb     pgvector.Vector
		)
		if err := rows.Scan(&rec.ID, &rec.Content, &rawMeta, &emb, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(rawMeta, &rec.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
		rec.Embedding = emb.Slice()
		out = append(out, rec)
	}
	return out, rows.Err()
}

var _ core.VectorStore = (*Client)(nil)

// ingestTx scopes one document's chunk writes.
type ingestTx struct {
	tx    *sql.Tx
	table string
}

func (t *ingestTx) DeleteByParent(ctx context.Context, parent string) error {
	q := fmt.Sprintf(`DELETE FROM %s WHERE metadata->>'parent' = $1`, t.table)
	_, err := t.tx.ExecContext(ctx, q, parent)
	return err
}

func (t *ingestTx) Insert(ctx context.Context, rec models.ChunkRecord) error {
	// Postgres text columns reject embedded NULs regardless of encoding.
	content := strings.ReplaceAll(rec.Content, "\x00", "")

	meta, err := json.Marshal(rec.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	q := fmt.Sprintf(`
		INSERT INTO %s (id, content, metadata, embedding, created_at)
		VALUES ($1, $2, $3::jsonb, $4, COALESCE($5, now()))
	`, t.table)

	var created any
	if !rec.CreatedAt.IsZero() {
		created = rec.CreatedAt
	}
	_, err = t.tx.ExecContext(ctx, q, rec.ID, content, meta, pgvector.NewVector(rec.Embedding), created)
	return err
}

func (t *ingestTx) Commit() error   { return t.tx.Commit() }
func (t *ingestTx) Rollback() error { return t.tx.Rollback() }

var _ core.IngestTx = (*ingestTx)(nil)
