// Package pdf extracts PDF text by running the poppler pdftotext tool.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/custodia-labs/lexicon/internal/core/domain"
	"github.com/custodia-labs/lexicon/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// ToolName is the external extractor binary.
const ToolName = "pdftotext"

// ErrPDFToolNotFound indicates pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// CommandRunner runs an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, err
	}
	return out, nil
}

// Normaliser handles PDF documents.
type Normaliser struct {
	runner   CommandRunner
	lookPath func(string) (string, error)
}

// New creates a PDF normaliser that runs pdftotext.
func New() *Normaliser {
	return NewWithRunner(execRunner{})
}

// NewWithRunner creates a PDF normaliser with a custom command runner.
func NewWithRunner(runner CommandRunner) *Normaliser {
	return &Normaliser{runner: runner, lookPath: exec.LookPath}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// CheckAvailable returns ErrPDFToolNotFound if pdftotext is missing.
func (n *Normaliser) CheckAvailable() error {
	if _, err := n.lookPath(ToolName); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// Normalise extracts the text layer of the PDF at raw.Path.
// Encrypted or image-only files fail with domain.ErrExtractionFailed.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.ExtractedDocument, error) {
	if raw == nil || raw.Path == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := n.CheckAvailable(); err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrToolUnavailable, err, InstallInstructions())
	}

	out, err := n.runner.Run(ctx, ToolName, "-layout", "-enc", "UTF-8", raw.Path, "-")
	if err != nil {
		return nil, fmt.Errorf("%w: pdftotext failed on %s: %w", domain.ErrExtractionFailed, raw.Path, err)
	}

	text := strings.ToValidUTF8(string(out), "�")
	// pdftotext separates pages with form feeds.
	text = strings.ReplaceAll(text, "\f", "\n")
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s has no text layer", domain.ErrExtractionFailed, raw.Path)
	}

	return &domain.ExtractedDocument{
		Name:    raw.Name,
		Path:    raw.Path,
		Type:    domain.FileTypePDF,
		ModTime: raw.ModTime,
		Content: text,
		Metadata: map[string]any{
			"mime_type": raw.MIMEType,
			"extractor": ToolName,
		},
	}, nil
}

// InstallInstructions describes how to install pdftotext.
func InstallInstructions() string {
	return "Install poppler to get pdftotext: " +
		"`brew install poppler` (macOS) or `apt install poppler-utils` (Debian/Ubuntu)."
}
