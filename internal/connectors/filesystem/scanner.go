package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/custodia-labs/lexicon/internal/core/domain"
	"github.com/custodia-labs/lexicon/internal/core/ports/driven"
	"github.com/custodia-labs/lexicon/internal/logger"
)

// Ensure Scanner implements the interface.
var _ driven.Scanner = (*Scanner)(nil)

// Scanner walks a folder for corpus files.
type Scanner struct{}

// NewScanner creates a filesystem scanner.
func NewScanner() *Scanner {
	return &Scanner{}
}

// ValidateFolder returns domain.ErrInvalidInput unless folder is an
// existing directory.
func ValidateFolder(folder string) error {
	if folder == "" {
		return fmt.Errorf("%w: folder is required", domain.ErrInvalidInput)
	}
	info, err := os.Stat(folder)
	if err != nil {
		return fmt.Errorf("%w: folder %s: %w", domain.ErrInvalidInput, folder, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, folder)
	}
	return nil
}

// Scan returns every recognised file under folder, sorted by path.
// Hidden files and directories are skipped. When two files share a
// document name the first by path wins and the rest are skipped.
func (s *Scanner) Scan(ctx context.Context, folder string) ([]domain.RawDocument, error) {
	if err := ValidateFolder(folder); err != nil {
		return nil, err
	}
	root, err := filepath.Abs(folder)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", folder, err)
	}

	var docs []domain.RawDocument
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			logger.Warn("skipping %s: %v", path, walkErr)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path != root && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		fileType, ok := classify(path)
		if !ok {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			logger.Warn("skipping %s: %v", path, err)
			return nil
		}
		docs = append(docs, domain.RawDocument{
			Name:     documentName(path),
			Path:     path,
			MIMEType: detectMIMEType(path),
			Type:     fileType,
			ModTime:  info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })

	seen := make(map[string]string, len(docs))
	unique := docs[:0]
	for _, doc := range docs {
		if first, dup := seen[doc.Name]; dup {
			logger.Warn("skipping %s: document name %q already used by %s", doc.Path, doc.Name, first)
			continue
		}
		seen[doc.Name] = doc.Path
		unique = append(unique, doc)
	}

	logger.Debug("scanned %s: %d documents", root, len(unique))
	return unique, nil
}
