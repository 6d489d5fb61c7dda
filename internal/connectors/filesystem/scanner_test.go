package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexicon/internal/core/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestScanner_Scan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.md"), "# B")
	writeFile(t, filepath.Join(dir, "a.txt"), "a")
	writeFile(t, filepath.Join(dir, "sub", "c.pdf"), "%PDF")
	writeFile(t, filepath.Join(dir, "image.png"), "png")
	writeFile(t, filepath.Join(dir, ".hidden.md"), "hidden")
	writeFile(t, filepath.Join(dir, ".git", "d.md"), "hidden dir")

	docs, err := NewScanner().Scan(context.Background(), dir)

	require.NoError(t, err)
	require.Len(t, docs, 3)

	assert.Equal(t, "a", docs[0].Name)
	assert.Equal(t, domain.FileTypeNote, docs[0].Type)
	assert.Equal(t, "text/plain", docs[0].MIMEType)
	assert.True(t, filepath.IsAbs(docs[0].Path))

	assert.Equal(t, "b", docs[1].Name)
	assert.Equal(t, "text/markdown", docs[1].MIMEType)

	assert.Equal(t, "c", docs[2].Name)
	assert.Equal(t, domain.FileTypePDF, docs[2].Type)
	assert.False(t, docs[2].ModTime.IsZero())
	assert.Nil(t, docs[2].Content)
}

func TestScanner_Scan_SkipsDuplicateNames(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a", "notes.md"), "first")
	writeFile(t, filepath.Join(dir, "b", "notes.txt"), "second")

	docs, err := NewScanner().Scan(context.Background(), dir)

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, filepath.Join(dir, "a", "notes.md"), docs[0].Path)
}

func TestScanner_Scan_InvalidFolder(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	writeFile(t, file, "x")

	for _, folder := range []string{"", filepath.Join(dir, "missing"), file} {
		_, err := NewScanner().Scan(context.Background(), folder)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, folder)
	}
}

func TestScanner_Scan_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.md"), "a")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewScanner().Scan(ctx, dir)

	assert.ErrorIs(t, err, context.Canceled)
}
