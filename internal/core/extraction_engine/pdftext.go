package extraction_engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/estavel/ingesta/internal/models"
)

// PDFTextStrategy reads the embedded text layer of a PDF. Fast and faithful
// when the document was digitally authored; returns almost nothing for scans.
type PDFTextStrategy struct{}

func (PDFTextStrategy) Extract(ctx context.Context, path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	rd, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read text layer: %w", err)
	}
	var b bytes.Buffer
	if _, err := io.Copy(&b, rd); err != nil {
		return "", fmt.Errorf("copy text layer: %w", err)
	}
	return b.String(), nil
}

// RowsStrategy walks the text layer row by row per page, which keeps cell
// contents of simple tables on one line where GetPlainText interleaves them.
type RowsStrategy struct{}

func (RowsStrategy) Extract(ctx context.Context, path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	total := r.NumPage()
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		rows, err := p.GetTextByRow()
		if err != nil {
			// One broken page must not lose the rest of the document.
			continue
		}
		for _, row := range rows {
			for j, word := range row.Content {
				if j > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(word.S)
			}
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

// IsEncryptedPDF reports whether the PDF declares an encryption dictionary.
// Text-layer parsers cannot be trusted on encrypted files, so the cascade
// sends them straight to OCR.
func IsEncryptedPDF(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	// The /Encrypt entry lives in the trailer; scanning the raw bytes avoids
	// tripping the same parser we are trying to protect.
	return bytes.Contains(data, []byte("/Encrypt"))
}

// ReadDocumentInfo pulls lightweight per-document metadata (page count,
// title, producer) for the ingestion record. Best-effort: a document we
// cannot open metadata for still gets ingested.
func ReadDocumentInfo(path string) models.Metadata {
	meta := models.Metadata{}
	f, r, err := pdf.Open(path)
	if err != nil {
		return meta
	}
	defer f.Close()

	meta["numpages"] = r.NumPage()
	trailer := r.Trailer()
	info := trailer.Key("Info")
	if !info.IsNull() {
		if title := info.Key("Title").Text(); title != "" {
			meta["title"] = title
		}
		if producer := info.Key("Producer").Text(); producer != "" {
			meta["producer"] = producer
		}
	}
	return meta
}
