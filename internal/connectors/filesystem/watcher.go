package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/lexicon/internal/core/domain"
	"github.com/custodia-labs/lexicon/internal/core/ports/driven"
	"github.com/custodia-labs/lexicon/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.Watcher = (*Watcher)(nil)

// DefaultDebounce is how long a file must be quiet before its change is sent.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reports changes to corpus files under a folder.
type Watcher struct {
	debounce time.Duration
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period before a change is emitted.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// NewWatcher creates a filesystem watcher.
func NewWatcher(opts ...WatcherOption) *Watcher {
	w := &Watcher{debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch emits debounced changes until ctx is cancelled, then closes the
// channel. New subdirectories are watched as they appear.
func (w *Watcher) Watch(ctx context.Context, folder string) (<-chan domain.RawDocumentChange, error) {
	if err := ValidateFolder(folder); err != nil {
		return nil, err
	}
	root, err := filepath.Abs(folder)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", folder, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := addTree(fsw, root); err != nil {
		fsw.Close()
		return nil, err
	}

	out := make(chan domain.RawDocumentChange)
	go w.loop(ctx, fsw, out)
	return out, nil
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, out chan<- domain.RawDocumentChange) {
	defer close(out)
	defer fsw.Close()

	pending := make(map[string]domain.RawDocumentChange)
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !isHidden(filepath.Base(event.Name)) {
					if err := addTree(fsw, event.Name); err != nil {
						logger.Warn("watching %s: %v", event.Name, err)
					}
					continue
				}
			}
			change := handleFsEvent(event)
			if change == nil {
				continue
			}
			pending[event.Name] = *change
			timer.Reset(w.debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error: %v", err)

		case <-timer.C:
			for path, change := range pending {
				select {
				case out <- change:
				case <-ctx.Done():
					return
				}
				delete(pending, path)
			}
		}
	}
}

// handleFsEvent converts an fsnotify event to a change, or nil when the
// event does not concern a visible corpus file.
func handleFsEvent(event fsnotify.Event) *domain.RawDocumentChange {
	if isHidden(filepath.Base(event.Name)) {
		return nil
	}
	fileType, ok := classify(event.Name)
	if !ok {
		return nil
	}

	doc := domain.RawDocument{
		Name:     documentName(event.Name),
		Path:     event.Name,
		MIMEType: detectMIMEType(event.Name),
		Type:     fileType,
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &domain.RawDocumentChange{Type: domain.ChangeDeleted, Document: doc}
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil || info.IsDir() {
			return nil
		}
		doc.ModTime = info.ModTime()
		changeType := domain.ChangeUpdated
		if event.Has(fsnotify.Create) {
			changeType = domain.ChangeCreated
		}
		return &domain.RawDocumentChange{Type: changeType, Document: doc}
	default:
		return nil
	}
}

// addTree watches root and every visible directory below it.
func addTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // unreadable subtrees are skipped
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}
