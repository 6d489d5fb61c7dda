package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/custodia-labs/lexicon/internal/core/domain"
	"github.com/custodia-labs/lexicon/internal/core/ports/driven"
)

// ==================== Vector Store ====================

// vectorStore implements driven.VectorStore.
type vectorStore struct {
	store *Store
}

var _ driven.VectorStore = (*vectorStore)(nil)

// ReplaceDocumentVector replaces one document's entries and token total.
func (s *vectorStore) ReplaceDocumentVector(ctx context.Context, totals domain.DocumentTotals, entries []domain.VectorEntry) error {
	return s.store.write(ctx, "replacing vector of "+totals.DocumentName, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM document_vectors WHERE document_name = ?", totals.DocumentName); err != nil {
			return fmt.Errorf("clearing vector: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO document_totals (document_name, tokens) VALUES (?, ?)
			ON CONFLICT(document_name) DO UPDATE SET tokens = excluded.tokens
		`, totals.DocumentName, totals.Tokens); err != nil {
			return fmt.Errorf("saving document total: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO document_vectors (document_name, word, raw_count, normalised, tfidf)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing statement: %w", err)
		}
		defer stmt.Close()

		for _, e := range entries {
			if e.Raw == 0 {
				continue
			}
			if _, err := stmt.ExecContext(ctx, totals.DocumentName, e.Word, e.Raw, e.Normalised, e.TFIDF); err != nil {
				return fmt.Errorf("saving vector entry %q: %w", e.Word, err)
			}
		}
		return nil
	})
}

// VectorEntries returns all entries ordered by document then word.
func (s *vectorStore) VectorEntries(ctx context.Context) ([]domain.VectorEntry, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT document_name, word, raw_count, normalised, tfidf
		FROM document_vectors ORDER BY document_name, word
	`)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var entries []domain.VectorEntry //nolint:prealloc // size unknown from rows iterator
	for rows.Next() {
		var e domain.VectorEntry
		if err := rows.Scan(&e.DocumentName, &e.Word, &e.Raw, &e.Normalised, &e.TFIDF); err != nil {
			return nil, fmt.Errorf("scanning vector entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DocumentTotals returns the token total of every vectorised document.
func (s *vectorStore) DocumentTotals(ctx context.Context) ([]domain.DocumentTotals, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT document_name, tokens FROM document_totals ORDER BY document_name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying document totals: %w", err)
	}
	defer rows.Close()

	var totals []domain.DocumentTotals //nolint:prealloc // size unknown from rows iterator
	for rows.Next() {
		var t domain.DocumentTotals
		if err := rows.Scan(&t.DocumentName, &t.Tokens); err != nil {
			return nil, fmt.Errorf("scanning document total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// UpdateTFIDF writes the tfidf value of the given entries.
func (s *vectorStore) UpdateTFIDF(ctx context.Context, entries []domain.VectorEntry) error {
	return s.store.write(ctx, "updating tfidf", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			UPDATE document_vectors SET tfidf = ? WHERE document_name = ? AND word = ?
		`)
		if err != nil {
			return fmt.Errorf("preparing statement: %w", err)
		}
		defer stmt.Close()

		for _, e := range entries {
			if _, err := stmt.ExecContext(ctx, e.TFIDF, e.DocumentName, e.Word); err != nil {
				return fmt.Errorf("saving tfidf of %s/%s: %w", e.DocumentName, e.Word, err)
			}
		}
		return nil
	})
}
