package extraction_engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStrategy returns canned output; stubs replace the real strategy table
// so cascade ordering can be exercised without documents or binaries.
type stubStrategy struct {
	text  string
	err   error
	calls *int
}

func (s stubStrategy) Extract(context.Context, string) (string, error) {
	if s.calls != nil {
		*s.calls++
	}
	return s.text, s.err
}

// mockRunner has no external tools, so repair and exec stages are inert.
type mockRunner struct{}

func (mockRunner) Run(context.Context, string, ...string) ([]byte, error) {
	return nil, errors.New("not installed")
}
func (mockRunner) LookPath(string) (string, error) { return "", errors.New("not installed") }

func stubbedCascade(threshold int, stubs map[Method]Strategy) *Cascade {
	c := NewCascade(Config{Threshold: threshold}, mockRunner{}, nil)
	c.strategies = stubs
	return c
}

func TestExtractPreferredAcceptedFirst(t *testing.T) {
	fallbackCalls := 0
	c := stubbedCascade(5, map[Method]Strategy{
		MethodDocconv: stubStrategy{text: "a perfectly good extraction"},
		MethodPDFText: stubStrategy{text: "should not run", calls: &fallbackCalls},
	})

	res := c.Extract(context.Background(), "doc.bin", MethodDocconv)
	assert.False(t, res.BelowThreshold)
	assert.Equal(t, MethodDocconv, res.Method)
	assert.Equal(t, "a perfectly good extraction", res.Text)
	assert.Equal(t, 0, fallbackCalls)
	assert.Len(t, res.Attempts, 1)
}

func TestExtractFallsThroughToFirstAboveThreshold(t *testing.T) {
	c := stubbedCascade(10, map[Method]Strategy{
		MethodPDFText:   stubStrategy{text: "short"},
		MethodDocconv:   stubStrategy{err: errors.New("parser blew up")},
		MethodRows:      stubStrategy{text: "this row text is comfortably long enough"},
		MethodPdftotext: stubStrategy{text: "never reached"},
		MethodOCR:       stubStrategy{text: "never reached"},
	})

	res := c.Extract(context.Background(), "doc.bin", "")
	assert.False(t, res.BelowThreshold)
	assert.Equal(t, MethodRows, res.Method)
	assert.Equal(t, "this row text is comfortably long enough", res.Text)

	// pdftext (too short), docconv (error), rows (accepted)
	require.Len(t, res.Attempts, 3)
	assert.Equal(t, MethodPDFText, res.Attempts[0].Method)
	assert.Equal(t, MethodDocconv, res.Attempts[1].Method)
	assert.Error(t, res.Attempts[1].Err)
	assert.Equal(t, MethodRows, res.Attempts[2].Method)
}

func TestExtractAllBelowThresholdKeepsLongest(t *testing.T) {
	c := stubbedCascade(1000, map[Method]Strategy{
		MethodPDFText:   stubStrategy{text: "tiny"},
		MethodDocconv:   stubStrategy{text: "the longest of the degraded outputs"},
		MethodRows:      stubStrategy{text: "medium length text"},
		MethodPdftotext: stubStrategy{err: errors.New("missing binary")},
		MethodOCR:       stubStrategy{text: ""},
	})

	res := c.Extract(context.Background(), "doc.bin", "")
	assert.True(t, res.BelowThreshold)
	assert.Equal(t, MethodDocconv, res.Method)
	assert.Equal(t, "the longest of the degraded outputs", res.Text)
	assert.Len(t, res.Attempts, 5)
}

func TestExtractEverythingFailsYieldsEmptyDegraded(t *testing.T) {
	boom := errors.New("boom")
	c := stubbedCascade(5, map[Method]Strategy{
		MethodPDFText:   stubStrategy{err: boom},
		MethodDocconv:   stubStrategy{err: boom},
		MethodRows:      stubStrategy{err: boom},
		MethodPdftotext: stubStrategy{err: boom},
		MethodOCR:       stubStrategy{err: boom},
	})

	res := c.Extract(context.Background(), "doc.bin", "")
	assert.True(t, res.BelowThreshold)
	assert.Empty(t, res.Text)
}

func TestExtractWhitespaceOnlyCountsAsEmpty(t *testing.T) {
	c := stubbedCascade(3, map[Method]Strategy{
		MethodPDFText:   stubStrategy{text: "   \n\t  "},
		MethodDocconv:   stubStrategy{text: "real content here"},
		MethodRows:      stubStrategy{text: ""},
		MethodPdftotext: stubStrategy{text: ""},
		MethodOCR:       stubStrategy{text: ""},
	})

	res := c.Extract(context.Background(), "doc.bin", "")
	assert.False(t, res.BelowThreshold)
	assert.Equal(t, MethodDocconv, res.Method)
}

func TestExtractEncryptedPDFSkipsToOCR(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "locked.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7\n/Encrypt 12 0 R\n%%EOF"), 0o644))

	textLayerCalls := 0
	c := stubbedCascade(5, map[Method]Strategy{
		MethodPDFText: stubStrategy{text: "untrustworthy text layer", calls: &textLayerCalls},
		MethodOCR:     stubStrategy{text: "text recovered by optical recognition"},
	})

	res := c.Extract(context.Background(), path, "")
	assert.Equal(t, MethodOCR, res.Method)
	assert.Equal(t, 0, textLayerCalls, "encrypted documents must never use the text layer")
	assert.False(t, res.BelowThreshold)
}

func TestIsEncryptedPDF(t *testing.T) {
	dir := t.TempDir()

	locked := filepath.Join(dir, "locked.pdf")
	require.NoError(t, os.WriteFile(locked, []byte("%PDF-1.7\n/Encrypt 12 0 R\n"), 0o644))
	assert.True(t, IsEncryptedPDF(locked))

	open := filepath.Join(dir, "open.pdf")
	require.NoError(t, os.WriteFile(open, []byte("%PDF-1.7\nplain body\n"), 0o644))
	assert.False(t, IsEncryptedPDF(open))

	assert.False(t, IsEncryptedPDF(filepath.Join(dir, "missing.pdf")))
}

func TestParseMethod(t *testing.T) {
	cases := map[string]Method{
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
	for in, want := range cases {
		got, err := ParseMethod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseMethod("guess")
	assert.Error(t, err)
}
