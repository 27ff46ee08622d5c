package extraction_engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// OCRStrategy rasterizes each page at 300 dpi with pdftoppm and reads the
// images with tesseract. The slowest stage and the only one that works on
// scanned documents, so it terminates the cascade.
type OCRStrategy struct {
	Runner    CommandRunner
	Languages string // tesseract -l value, e.g. "por+eng"
}

func (s OCRStrategy) Extract(ctx context.Context, path string) (string, error) {
	for _, bin := range []string{"pdftoppm", "tesseract"} {
		if _, err := s.Runner.LookPath(bin); err != nil {
			return "", fmt.Errorf("%s not installed: %w", bin, err)
		}
	}

	dir, err := os.MkdirTemp("", "ingesta-ocr-*")
	if err != nil {
		return "", fmt.Errorf("ocr tmp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	prefix := filepath.Join(dir, "page")
	if _, err := s.Runner.Run(ctx, "pdftoppm", "-r", "300", "-png", path, prefix); err != nil {
		return "", fmt.Errorf("pdftoppm: %w", err)
	}

	pages, err := filepath.Glob(prefix + "*.png")
	if err != nil || len(pages) == 0 {
		return "", fmt.Errorf("no pages rasterized for %s", path)
	}
	sort.Strings(pages) // pdftoppm zero-pads page numbers

	var b strings.Builder
	for _, img := range pages {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		args := []string{img, "stdout"}
		if s.Languages != "" {
			args = append(args, "-l", s.Languages)
		}
		out, err := s.Runner.Run(ctx, "tesseract", args...)
		if err != nil {
			// A single unreadable page keeps its neighbours' text.
			continue
		}
		b.Write(out)
		b.WriteString("\n\n")
	}
	return b.String(), nil
}
