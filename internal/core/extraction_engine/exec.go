package extraction_engine

import (
	"context"
	"fmt"
)

// PdftotextStrategy shells out to poppler's pdftotext with layout
// preservation. Last resort before OCR: it handles PDFs the in-process
// parsers choke on, at the cost of an external dependency.
type PdftotextStrategy struct {
	Runner CommandRunner
}

func (s PdftotextStrategy) Extract(ctx context.Context, path string) (string, error) {
	if _, err := s.Runner.LookPath("pdftotext"); err != nil {
		return "", fmt.Errorf("pdftotext not installed: %w", err)
	}
	// "-" sends the text to stdout.
	out, err := s.Runner.Run(ctx, "pdftotext", "-layout", path, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}
