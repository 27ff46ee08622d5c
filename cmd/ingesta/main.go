package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/estavel/ingesta/internal/app"
	"github.com/estavel/ingesta/internal/config"
	"github.com/estavel/ingesta/internal/core/extraction_engine"
	"github.com/estavel/ingesta/internal/models"
)

func main() {
	cliApp := &cli.App{
		Name:  "ingesta",
		Usage: "Extract, chunk, embed and store documents for semantic search",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "file",
				Usage:     "Ingest a single document",
				ArgsUsage: "<path>",
				Action:    fileCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "strategy",
						Aliases: []string{"s"},
						Usage:   "Preferred extraction strategy (pdftext, rows, docconv, docx, pdftotext, ocr)",
					},
					&cli.StringFlag{
						Name:  "model",
						Usage: "Embedding model name (overrides EMBED_MODEL)",
					},
					&cli.IntFlag{
						Name:  "dim",
						Usage: "Embedding dimension (overrides EMBED_DIM)",
					},
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Query used for synonym expansion and ranking of the stored chunks",
					},
				},
			},
			{
				Name:      "dir",
				Usage:     "Ingest every supported document under a directory",
				ArgsUsage: "<dir>",
				Action:    dirCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "strategy",
						Aliases: []string{"s"},
						Usage:   "Preferred extraction strategy (pdftext, rows, docconv, docx, pdftotext, ocr)",
					},
					&cli.StringFlag{
						Name:  "model",
						Usage: "Embedding model name (overrides EMBED_MODEL)",
					},
					&cli.IntFlag{
						Name:  "dim",
						Usage: "Embedding dimension (overrides EMBED_DIM)",
					},
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Usage:   "Concurrent file workers (overrides WORKERS)",
					},
				},
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// buildApp loads the environment config, applies flag overrides and wires
// the full pipeline. The caller owns the returned App.
func buildApp(c *cli.Context) (*app.App, *config.Config, error) {
	cfg := config.LoadConfig()
	if m := c.String("model"); m != "" {
		cfg.EmbedModel = m
	}
	if d := c.Int("dim"); d > 0 {
		cfg.EmbedDim = d
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	a, err := app.NewApp(c.Context, cfg, slog.Default())
	if err != nil {
		return nil, nil, err
	}
	return a, cfg, nil
}

func parseStrategy(c *cli.Context) (extraction_engine.Method, error) {
	s := c.String("strategy")
	if s == "" {
		return "", nil
	}
	return extraction_engine.ParseMethod(s)
}

func fileCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("file path is required")
	}

	preferred, err := parseStrategy(c)
	if err != nil {
		return err
	}

	a, _, err := buildApp(c)
	if err != nil {
		return err
	}
	defer a.Close()

	meta := models.Metadata{}
	if q := c.String("query"); q != "" {
		meta[models.MetaQuery] = q
	}

	res, err := a.Ingest.IngestFile(c.Context, path, preferred, meta)
	if err != nil {
		return err
	}

	fmt.Printf("ingested %s: %d chunks written, %d degraded embeddings\n",
		res.Parent, res.ChunksWritten, res.DegradedEmbeddings)
	for i, sc := range res.Ranked {
		fmt.Printf("  %2d. score=%.4f %s\n", i+1, sc.Score, firstLine(sc.Record.Content))
	}
	return nil
}

func dirCommand(c *cli.Context) error {
	dir := c.Args().First()
	if dir == "" {
		return fmt.Errorf("directory path is required")
	}

	preferred, err := parseStrategy(c)
	if err != nil {
		return err
	}

	a, cfg, err := buildApp(c)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Ingest.IngestDir(c.Context, dir, preferred, models.Metadata{}, cfg.Workers)
	if err != nil {
		return err
	}

	fmt.Printf("processed %d files, %d errors\n", res.Processed, res.Errors)
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 100 {
		s = s[:100] + "..."
	}
	return s
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
