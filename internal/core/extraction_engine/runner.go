package extraction_engine

import (
	"context"
	"os/exec"
)

// CommandRunner abstracts the external binaries the cascade shells out to
// (qpdf, gs, pdftotext, pdftoppm, tesseract) so strategies stay testable
// without the tools installed.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
	LookPath(name string) (string, error)
}

// ExecRunner runs real processes.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

func (ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
