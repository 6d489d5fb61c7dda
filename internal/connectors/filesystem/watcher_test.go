package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexicon/internal/core/domain"
)

func TestHandleFsEvent(t *testing.T) {
	dir := t.TempDir()
	note := filepath.Join(dir, "note.md")
	writeFile(t, note, "content")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "folder.md"), 0755))

	tests := []struct {
		name     string
		path     string
		op       fsnotify.Op
		expected *domain.ChangeType
	}{
		{"create", note, fsnotify.Create, ptr(domain.ChangeCreated)},
		{"write", note, fsnotify.Write, ptr(domain.ChangeUpdated)},
		{"write and chmod", note, fsnotify.Write | fsnotify.Chmod, ptr(domain.ChangeUpdated)},
		{"remove", filepath.Join(dir, "gone.md"), fsnotify.Remove, ptr(domain.ChangeDeleted)},
		{"rename", filepath.Join(dir, "moved.md"), fsnotify.Rename, ptr(domain.ChangeDeleted)},
		{"chmod only", note, fsnotify.Chmod, nil},
		{"hidden file", filepath.Join(dir, ".note.md"), fsnotify.Create, nil},
		{"unrecognised", filepath.Join(dir, "image.png"), fsnotify.Create, nil},
		{"directory", filepath.Join(dir, "folder.md"), fsnotify.Create, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change := handleFsEvent(fsnotify.Event{Name: tt.path, Op: tt.op})
			if tt.expected == nil {
				assert.Nil(t, change)
				return
			}
			require.NotNil(t, change)
			assert.Equal(t, *tt.expected, change.Type)
			assert.Equal(t, tt.path, change.Document.Path)
			assert.Equal(t, documentName(tt.path), change.Document.Name)
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestWatcher_Watch(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := NewWatcher(WithDebounce(20*time.Millisecond)).Watch(ctx, dir)
	require.NoError(t, err)

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = os.WriteFile(filepath.Join(dir, "new-note.md"), []byte("content"), 0644)
	}()

	select {
	case change := <-changes:
		assert.Equal(t, "new-note", change.Document.Name)
		assert.Contains(t, []domain.ChangeType{domain.ChangeCreated, domain.ChangeUpdated}, change.Type)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for file change event")
	}

	cancel()
	select {
	case _, ok := <-changes:
		for ok {
			_, ok = <-changes
		}
	case <-time.After(5 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestWatcher_Watch_InvalidFolder(t *testing.T) {
	_, err := NewWatcher().Watch(context.Background(), filepath.Join(t.TempDir(), "missing"))

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
