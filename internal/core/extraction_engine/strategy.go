package extraction_engine

import (
	"context"
	"fmt"
)

// Method identifies one extraction strategy. The set is closed: selection
// happens through ParseMethod and the cascade's lookup table, never by
// interpreting arbitrary strings at extraction time.
type Method string

const (
	// MethodPDFText reads the PDF text layer directly.
	MethodPDFText Method = "pdftext"
	// MethodRows reads the text layer row by row, preserving table layout.
	MethodRows Method = "rows"
	// MethodDocconv runs the generic docconv content extractor.
	MethodDocconv Method = "docconv"
	// MethodDocx extracts word-processor documents.
	MethodDocx Method = "docx"
	// MethodPdftotext shells out to poppler's pdftotext.
	MethodPdftotext Method = "pdftotext"
	// MethodOCR rasterizes pages and runs tesseract.
	MethodOCR Method = "ocr"
)

// methodNames maps accepted identifiers (including legacy aliases from the
// configuration surface) to Methods.
var methodNames = map[string]Method{
	"pdftext":      MethodPDFText,
	"pdfminer-low": MethodPDFText,
	"rows":         MethodRows,
	"plumber":      MethodRows,
	"docconv":      MethodDocconv,
	"tika":         MethodDocconv,
	"docx":         MethodDocx,
	"unstructured": MethodDocx,
	"pdftotext":    MethodPdftotext,
	"ocr":          MethodOCR,
}

// ParseMethod resolves a configured identifier. Unknown identifiers are a
// configuration error, not a runtime fallback.
func ParseMethod(s string) (Method, error) {
	m, ok := methodNames[s]
	if !ok {
		return "", fmt.Errorf("unknown extraction method %q", s)
	}
	return m, nil
}

// Strategy extracts best-effort plain text from a document on disk.
type Strategy interface {
	Extract(ctx context.Context, path string) (string, error)
}
