package extraction_engine

import (
	"context"
	"log/slog"
	"os"
)

// RepairPDF tries to rewrite a structurally damaged PDF before extraction:
// first qpdf, then ghostscript. It returns the path of the repaired copy, or
// the original path when both tools fail or are missing; repair is never a
// reason to abort extraction.
func RepairPDF(ctx context.Context, runner CommandRunner, path string, logger *slog.Logger) string {
	if logger == nil {
		logger = slog.Default()
	}

	if _, err := runner.LookPath("qpdf"); err == nil {
		tmp, err := tmpPDF()
		if err == nil {
			if _, err := runner.Run(ctx, "qpdf", path, tmp); err == nil {
				return tmp
			}
			os.Remove(tmp)
			logger.Warn("qpdf repair failed", "path", path)
		}
	}

	if _, err := runner.LookPath("gs"); err == nil {
		tmp, err := tmpPDF()
		if err == nil {
			_, err := runner.Run(ctx, "gs",
				"-q", "-dNOPAUSE", "-dBATCH",
				"-sDEVICE=pdfwrite",
				"-dCompatibilityLevel=1.4",
				"-dPDFSETTINGS=/prepress",
				"-sOutputFile="+tmp,
				path,
			)
			if err == nil {
				return tmp
			}
			os.Remove(tmp)
			logger.Warn("ghostscript repair failed", "path", path)
		}
	}

	return path
}

func tmpPDF() (string, error) {
	f, err := os.CreateTemp("", "ingesta-repair-*.pdf")
	if err != nil {
		return "", err
	}
	name := f.Name()
	f.Close()
	return name, nil
}
