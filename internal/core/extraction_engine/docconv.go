package extraction_engine

import (
	"context"
	"fmt"
	"os"

	"code.sajari.com/docconv"
)

// DocconvStrategy delegates to docconv's format dispatch (PDF, DOCX, HTML,
// plain text, ...). It is the generic content-extraction service of the
// cascade: slower than the text-layer readers but tolerant of odd inputs.
type DocconvStrategy struct{}

func (DocconvStrategy) Extract(ctx context.Context, path string) (string, error) {
	res, err := docconv.ConvertPath(path)
	if err != nil {
		return "", fmt.Errorf("docconv: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return res.Body, nil
}

// DocxStrategy extracts word-processor documents through docconv's DOCX
// converter directly, skipping mime sniffing.
type DocxStrategy struct{}

func (DocxStrategy) Extract(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer f.Close()

	body, _, err := docconv.ConvertDocx(f)
	if err != nil {
		return "", fmt.Errorf("convert docx: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return body, nil
}
