package extraction_engine

import (
	"context"
	"log/slog"
	"strings"
)

// Attempt records one strategy's outcome inside a cascade run.
type Attempt struct {
	Method Method
	Len    int
	Err    error
}

// Result is the cascade's output. BelowThreshold marks degraded text: no
// strategy cleared the acceptance threshold and Text is the longest output
// seen. Callers decide whether degraded text is worth ingesting.
type Result struct {
	Text           string
	Method         Method
	BelowThreshold bool
	Attempts       []Attempt
}

// Config tunes the cascade.
//
// Threshold: minimum trimmed length for an extraction to be accepted. A
// length heuristic, not a correctness check. Tune it per corpus.
// Languages: tesseract language set for the OCR stage.
type Config struct {
	Threshold int
	Languages string
}

// Cascade runs extraction strategies in a fixed fallback order until one
// clears the threshold. Each stage is independently fail-safe: a panic-free
// error in one stage only logs and moves on.
type Cascade struct {
	cfg        Config
	runner     CommandRunner
	strategies map[Method]Strategy
	logger     *slog.Logger
}

func NewCascade(cfg Config, runner CommandRunner, logger *slog.Logger) *Cascade {
	if runner == nil {
		runner = ExecRunner{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cascade{
		cfg:    cfg,
		runner: runner,
		strategies: map[Method]Strategy{
			MethodPDFText:   PDFTextStrategy{},
			MethodRows:      RowsStrategy{},
			MethodDocconv:   DocconvStrategy{},
			MethodDocx:      DocxStrategy{},
			MethodPdftotext: PdftotextStrategy{Runner: runner},
			MethodOCR:       OCRStrategy{Runner: runner, Languages: cfg.Languages},
		},
		logger: logger.With("component", "extraction"),
	}
}

// fallbackOrder is the chain run after the preferred method comes up short:
// text layer, generic extraction, table-aware rows, external pdftotext, OCR.
var fallbackOrder = []Method{
	MethodPDFText,
	MethodDocconv,
	MethodRows,
	MethodPdftotext,
	MethodOCR,
}

// Extract converts a document into best-effort plain text.
//
// The repair pre-step and every strategy are non-fatal; the only terminal
// outcome is a Result, possibly flagged BelowThreshold with the longest text
// any stage produced (which may be empty when everything failed).
func (c *Cascade) Extract(ctx context.Context, path string, preferred Method) Result {
	path = RepairPDF(ctx, c.runner, path, c.logger)

	res := Result{}

	// Encrypted documents skip straight to OCR; their text layer lies.
	if strings.HasSuffix(strings.ToLower(path), ".pdf") && IsEncryptedPDF(path) {
		c.logger.Info("encrypted document, skipping to OCR", "path", path)
		return c.run(ctx, path, res, MethodOCR)
	}

	if preferred != "" {
		res = c.attempt(ctx, path, &res, preferred)
		if !res.BelowThreshold {
			return res
		}
	}

	return c.run(ctx, path, res, fallbackOrder...)
}

// run tries methods in order, returning on the first accepted result.
func (c *Cascade) run(ctx context.Context, path string, res Result, methods ...Method) Result {
	for _, m := range methods {
		res = c.attempt(ctx, path, &res, m)
		if !res.BelowThreshold {
			return res
		}
	}
	return res
}

// attempt runs one strategy and folds its outcome into the running result,
// keeping the longest text seen so far as the degraded candidate.
func (c *Cascade) attempt(ctx context.Context, path string, prev *Result, m Method) Result {
	res := *prev
	res.BelowThreshold = true

	strat, ok := c.strategies[m]
	if !ok {
		// Unreachable for parsed methods; kept so a raw Method literal fails
		// loudly in logs rather than silently extracting nothing.
		c.logger.Error("unknown extraction method", "method", string(m))
		res.Attempts = append(res.Attempts, Attempt{Method: m})
		return res
	}

	text, err := strat.Extract(ctx, path)
	trimmed := len(strings.TrimSpace(text))
	res.Attempts = append(res.Attempts, Attempt{Method: m, Len: trimmed, Err: err})

	if err != nil {
		c.logger.Warn("extraction stage failed", "method", string(m), "path", path, "err", err)
		return res
	}

	if trimmed > c.cfg.Threshold {
		res.Text = text
		res.Method = m
		res.BelowThreshold = false
		return res
	}

	// Keep the longest output so the terminal result is best-effort, not empty.
	if trimmed > len(strings.TrimSpace(res.Text)) {
		res.Text = text
		res.Method = m
	}
	c.logger.Debug("extraction below threshold", "method", string(m), "len", trimmed, "threshold", c.cfg.Threshold)
	return res
}
