package driven

import (
	"context"

	"github.com/custodia-labs/lexicon/internal/core/domain"
)

// Scanner finds source files under a folder.
type Scanner interface {
	// Scan walks folder and returns every recognised file, sorted by path.
	// Files sharing a name with an earlier file are skipped.
	Scan(ctx context.Context, folder string) ([]domain.RawDocument, error)
}

// Watcher reports changes to recognised files under a folder.
type Watcher interface {
	// Watch emits changes until ctx is cancelled, then closes the channel.
	Watch(ctx context.Context, folder string) (<-chan domain.RawDocumentChange, error)
}
