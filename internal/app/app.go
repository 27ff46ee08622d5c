package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/estavel/ingesta/internal/config"
	"github.com/estavel/ingesta/internal/core"
	"github.com/estavel/ingesta/internal/core/chunk_engine"
	db "github.com/estavel/ingesta/internal/core/database"
	"github.com/estavel/ingesta/internal/core/embed_engine"
	"github.com/estavel/ingesta/internal/core/extraction_engine"
	"github.com/estavel/ingesta/internal/core/llm"
	objectclient "github.com/estavel/ingesta/internal/core/object-client"
	"github.com/estavel/ingesta/internal/core/tokenizer"
	"github.com/estavel/ingesta/internal/services"
)

// App is the composition root: it owns every shared resource (store, model
// registry, providers) and hands references down the pipeline.
type App struct {
	Store    *db.Client
	Registry *tokenizer.Registry
	Ingest   *services.IngestService
	Search   *services.SearchService
	Server   *Server

	closers []func() error
}

func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{}

	store, err := db.NewClient(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}
	a.Store = store
	a.closers = append(a.closers, store.Close)

	if err := store.EnsureDimension(ctx, cfg.EmbedDim); err != nil {
		a.Close()
		return nil, err
	}
	logger.Info("database initialized", "dim", cfg.EmbedDim)

	a.Registry = tokenizer.NewRegistry()
	a.Registry.Register(tokenizer.ModelInfo{
		Name:      cfg.EmbedModel,
		Dim:       cfg.EmbedDim,
		MaxSeqLen: cfg.MaxSeqLength,
		Encoding:  cfg.TokenEncoding,
	})

	provider, err := buildProvider(ctx, cfg, a)
	if err != nil {
		a.Close()
		return nil, err
	}

	var enricher *chunk_engine.Enricher
	if cfg.AIAPIKey != "" {
		gen, err := llm.NewGeminiLLM(ctx, cfg.AIAPIKey, cfg.GenModel)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init llm: %w", err)
		}
		a.closers = append(a.closers, gen.Close)
		enricher = chunk_engine.NewEnricher(gen, cfg.EnrichMinWords, logger)
	}

	cascade := extraction_engine.NewCascade(extraction_engine.Config{
		Threshold: cfg.OCRThreshold,
		Languages: cfg.OCRLanguages,
	}, extraction_engine.ExecRunner{}, logger)

	chunker, err := chunk_engine.NewChunker(a.Registry, cfg.EmbedModel, enricher, chunk_engine.DefaultThesaurus(), chunk_engine.Config{
		OverlapRatio:    cfg.OverlapRatio,
		ChunkSize:       cfg.ChunkSize,
		ChunkOverlap:    cfg.ChunkOverlap,
		Separators:      cfg.Separators,
		MinParagraphLen: cfg.MinParagraphLen,
	}, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	embedder := embed_engine.NewGenerator(provider, nil, cfg.EmbedDim, logger)
	reranker := embed_engine.NewReranker(provider)

	a.Ingest = services.NewIngestService(store, cascade, chunker, embedder, reranker, logger)
	a.Search = services.NewSearchService(store, embedder, reranker, logger)

	var obj core.ObjectClient
	if cfg.AwsAccessKey != "" && cfg.AwsSecretKey != "" {
		s3c, err := objectclient.NewS3Client(ctx, cfg)
		if err != nil {
			a.Close()
			return nil, err
		}
		obj = s3c
	}

	a.Server = NewServer(cfg, a.Ingest, a.Search, obj, logger)
	return a, nil
}

// buildProvider selects the embedding provider named in config. Unknown
// names are a configuration error, fatal at startup.
func buildProvider(ctx context.Context, cfg *config.Config, a *App) (core.EmbeddingProvider, error) {
	switch cfg.EmbedProvider {
	case "gemini":
		p, err := llm.NewGeminiEmbedder(ctx, cfg.AIAPIKey, cfg.EmbedModel)
		if err != nil {
			return nil, fmt.Errorf("init gemini embedder: %w", err)
		}
		a.closers = append(a.closers, p.Close)
		return p, nil
	case "openai":
		p, err := llm.NewOpenAIEmbedder(cfg.EmbedEndpoint, cfg.EmbedModel)
		if err != nil {
			return nil, fmt.Errorf("init openai embedder: %w", err)
		}
		return p, nil
	case "http":
		return llm.NewHTTPEmbedder(cfg.EmbedEndpoint, cfg.EmbedModel), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbedProvider)
	}
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}
