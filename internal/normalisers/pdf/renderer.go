package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/phonetonote/paperweight/internal/core/ports/driven"
)

// Ensure Renderer implements the interface.
var _ driven.PageRenderer = (*Renderer)(nil)

// ErrPDFToolNotFound is returned when pdftoppm is not installed.
var ErrPDFToolNotFound = errors.New("pdftoppm not found: install poppler-utils")

// ErrNotPNG is returned when the renderer output is not a PNG image.
var ErrNotPNG = errors.New("pdftoppm output is not a PNG image")

// pngSignature is the eight byte header of every PNG file.
var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// DefaultPreviewWidth is the pixel width of rendered previews.
const DefaultPreviewWidth = 512

// CommandRunner executes external commands.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Renderer rasterises the first page of a PDF with pdftoppm.
type Renderer struct {
	runner CommandRunner
	width  int
}

// NewRenderer creates a renderer that shells out to pdftoppm.
func NewRenderer() *Renderer {
	return NewRendererWithRunner(execRunner{})
}

// NewRendererWithRunner creates a renderer with a custom command runner.
func NewRendererWithRunner(runner CommandRunner) *Renderer {
	return &Renderer{runner: runner, width: DefaultPreviewWidth}
}

// RenderFirstPage returns page one of data as a PNG.
func (r *Renderer) RenderFirstPage(ctx context.Context, data []byte) ([]byte, error) {
	tmp, err := os.CreateTemp("", "paperweight-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("pdf: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("pdf: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("pdf: close temp file: %w", err)
	}

	// Without an output root pdftoppm writes the single page to stdout.
	out, err := r.runner.Run(ctx, "pdftoppm",
		"-png", "-singlefile",
		"-f", "1", "-l", "1",
		"-scale-to", strconv.Itoa(r.width),
		tmp.Name(),
	)
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return nil, ErrPDFToolNotFound
		}
		return nil, fmt.Errorf("pdftoppm failed: %w", err)
	}
	if !bytes.HasPrefix(out, pngSignature) {
		return nil, ErrNotPNG
	}
	return out, nil
}

// CheckAvailable returns ErrPDFToolNotFound if pdftoppm is not on PATH.
func CheckAvailable() error {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns platform hints for installing pdftoppm.
func InstallInstructions() string {
	return `pdftoppm is part of poppler. Install it with:
  macOS:          brew install poppler
  Debian/Ubuntu:  apt install poppler-utils
  Fedora:         dnf install poppler-utils`
}
