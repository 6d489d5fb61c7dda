package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/custodia-labs/lexicon/internal/core/domain"
	"github.com/custodia-labs/lexicon/internal/core/ports/driven"
)

// ==================== Frequency Store ====================

// frequencyStore implements driven.FrequencyStore.
type frequencyStore struct {
	store *Store
}

var _ driven.FrequencyStore = (*frequencyStore)(nil)

// AddFrequencies adds counts to the stored frequencies in one transaction.
func (s *frequencyStore) AddFrequencies(ctx context.Context, counts map[string]int64) error {
	if len(counts) == 0 {
		return nil
	}

	// Sorted so that concurrent writers take row locks in the same order.
	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Strings(words)

	return s.store.write(ctx, "adding frequencies", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO word_frequencies (word, frequency) VALUES (?, ?)
			ON CONFLICT(word) DO UPDATE SET frequency = frequency + excluded.frequency
		`)
		if err != nil {
			return fmt.Errorf("preparing statement: %w", err)
		}
		defer stmt.Close()

		for _, w := range words {
			if _, err := stmt.ExecContext(ctx, w, counts[w]); err != nil {
				return fmt.Errorf("saving frequency of %q: %w", w, err)
			}
		}
		return nil
	})
}

// TotalFrequency returns the sum of all frequencies.
func (s *frequencyStore) TotalFrequency(ctx context.Context) (int64, error) {
	var total int64
	err := s.store.db.QueryRowContext(ctx, "SELECT COALESCE(SUM(frequency), 0) FROM word_frequencies").Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("summing frequencies: %w", err)
	}
	return total, nil
}

// FrequencyPage returns the next page of words by descending frequency.
func (s *frequencyStore) FrequencyPage(ctx context.Context, after *domain.WordFrequency, limit int) ([]domain.WordFrequency, error) {
	var rows *sql.Rows
	var err error
	if after == nil {
		rows, err = s.store.db.QueryContext(ctx, `
			SELECT word, frequency FROM word_frequencies
			ORDER BY frequency DESC, word ASC LIMIT ?
		`, limit)
	} else {
		rows, err = s.store.db.QueryContext(ctx, `
			SELECT word, frequency FROM word_frequencies
			WHERE frequency < ? OR (frequency = ? AND word > ?)
			ORDER BY frequency DESC, word ASC LIMIT ?
		`, after.Frequency, after.Frequency, after.Word, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("querying frequencies: %w", err)
	}
	defer rows.Close()

	page := make([]domain.WordFrequency, 0, limit)
	for rows.Next() {
		var wf domain.WordFrequency
		if err := rows.Scan(&wf.Word, &wf.Frequency); err != nil {
			return nil, fmt.Errorf("scanning frequency: %w", err)
		}
		page = append(page, wf)
	}
	return page, rows.Err()
}

// DeleteAbove removes words whose frequency exceeds threshold.
func (s *frequencyStore) DeleteAbove(ctx context.Context, threshold int64) (int, error) {
	var removed int64
	err := s.store.write(ctx, "pruning frequencies", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM word_frequencies WHERE frequency > ?", threshold)
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	return int(removed), err
}

// ==================== Vocabulary Store ====================

// vocabularyStore implements driven.VocabularyStore.
type vocabularyStore struct {
	store *Store
}

var _ driven.VocabularyStore = (*vocabularyStore)(nil)

// ReplaceVocabulary drops the vocabulary and writes entries.
func (s *vocabularyStore) ReplaceVocabulary(ctx context.Context, entries []domain.VocabularyEntry) error {
	return s.store.write(ctx, "replacing vocabulary", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM coverage_vocabulary"); err != nil {
			return fmt.Errorf("clearing vocabulary: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, "INSERT INTO coverage_vocabulary (word, frequency) VALUES (?, ?)")
		if err != nil {
			return fmt.Errorf("preparing statement: %w", err)
		}
		defer stmt.Close()

		for _, e := range entries {
			if _, err := stmt.ExecContext(ctx, e.Word, e.Frequency); err != nil {
				return fmt.Errorf("saving vocabulary word %q: %w", e.Word, err)
			}
		}
		return nil
	})
}

// Vocabulary returns the vocabulary ordered by frequency descending.
func (s *vocabularyStore) Vocabulary(ctx context.Context) ([]domain.VocabularyEntry, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT word, frequency FROM coverage_vocabulary ORDER BY frequency DESC, word ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying vocabulary: %w", err)
	}
	defer rows.Close()

	var entries []domain.VocabularyEntry //nolint:prealloc // size unknown from rows iterator
	for rows.Next() {
		var e domain.VocabularyEntry
		if err := rows.Scan(&e.Word, &e.Frequency); err != nil {
			return nil, fmt.Errorf("scanning vocabulary: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
