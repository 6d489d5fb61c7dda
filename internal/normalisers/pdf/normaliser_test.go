package pdf

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexicon/internal/core/domain"
	"github.com/custodia-labs/lexicon/internal/core/ports/driven"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
	name   string
	args   []string
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.name = name
	m.args = args
	return m.output, m.err
}

func newTestNormaliser(runner CommandRunner) *Normaliser {
	n := NewWithRunner(runner)
	n.lookPath = func(string) (string, error) { return "/usr/bin/pdftotext", nil }
	return n
}

func TestSupportedMIMETypes(t *testing.T) {
	assert.Equal(t, []string{"application/pdf"}, New().SupportedMIMETypes())
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
}

func TestNormalise_NilDocument(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNormalise_WithMockRunner(t *testing.T) {
	runner := &mockRunner{output: []byte("Page one\fPage two\n")}
	raw := &domain.RawDocument{Name: "paper", Path: "/docs/paper.pdf", MIMEType: "application/pdf"}

	doc, err := newTestNormaliser(runner).Normalise(context.Background(), raw)

	require.NoError(t, err)
	assert.Equal(t, "pdftotext", runner.name)
	assert.Equal(t, []string{"-layout", "-enc", "UTF-8", "/docs/paper.pdf", "-"}, runner.args)
	assert.Equal(t, "Page one\nPage two\n", doc.Content)
	assert.Equal(t, domain.FileTypePDF, doc.Type)
	assert.Equal(t, "paper", doc.Name)
}

func TestNormalise_RunnerError(t *testing.T) {
	runner := &mockRunner{err: errors.New("Incorrect password")}
	raw := &domain.RawDocument{Name: "locked", Path: "/docs/locked.pdf"}

	_, err := newTestNormaliser(runner).Normalise(context.Background(), raw)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
	assert.Contains(t, err.Error(), "pdftotext failed")
}

func TestNormalise_NoTextLayer(t *testing.T) {
	runner := &mockRunner{output: []byte(" \f \n")}
	raw := &domain.RawDocument{Name: "scan", Path: "/docs/scan.pdf"}

	_, err := newTestNormaliser(runner).Normalise(context.Background(), raw)

	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestNormalise_ToolMissing(t *testing.T) {
	n := NewWithRunner(&mockRunner{})
	n.lookPath = func(string) (string, error) { return "", exec.ErrNotFound }

	_, err := n.Normalise(context.Background(), &domain.RawDocument{Name: "a", Path: "/a.pdf"})

	assert.ErrorIs(t, err, domain.ErrToolUnavailable)
	assert.NotErrorIs(t, err, domain.ErrExtractionFailed)
	assert.ErrorIs(t, err, ErrPDFToolNotFound)
	assert.ErrorIs(t, n.CheckAvailable(), ErrPDFToolNotFound)
}

func TestInstallInstructions(t *testing.T) {
	assert.Contains(t, InstallInstructions(), "pdftotext")
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = New()
}
