package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/lexicon/internal/core/domain"
	"github.com/custodia-labs/lexicon/internal/core/ports/driven"
)

// ==================== Model Store ====================

// modelStore implements driven.ModelStore.
type modelStore struct {
	store *Store
}

var _ driven.ModelStore = (*modelStore)(nil)

// SaveModel stores or replaces a topic model.
func (s *modelStore) SaveModel(ctx context.Context, model *domain.TopicModel) error {
	return s.store.write(ctx, "saving model "+model.Topic, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO topic_models (topic, payload, positives, trained_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(topic) DO UPDATE SET
				payload = excluded.payload,
				positives = excluded.positives,
				trained_at = excluded.trained_at
		`, model.Topic, model.Payload, model.Positives, model.TrainedAt.UTC())
		return err
	})
}

// GetModel returns a model by topic.
func (s *modelStore) GetModel(ctx context.Context, topic string) (*domain.TopicModel, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT topic, payload, positives, trained_at FROM topic_models WHERE topic = ?
	`, topic)

	m, err := scanModel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return m, err
}

// HasModel reports whether a topic has a stored model.
func (s *modelStore) HasModel(ctx context.Context, topic string) (bool, error) {
	var count int
	err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM topic_models WHERE topic = ?", topic).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking model: %w", err)
	}
	return count > 0, nil
}

// DeleteModels removes every stored model.
func (s *modelStore) DeleteModels(ctx context.Context) error {
	return s.store.write(ctx, "deleting models", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "DELETE FROM topic_models")
		return err
	})
}

// ListModels returns every stored model ordered by topic.
func (s *modelStore) ListModels(ctx context.Context) ([]domain.TopicModel, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT topic, payload, positives, trained_at FROM topic_models ORDER BY topic
	`)
	if err != nil {
		return nil, fmt.Errorf("querying models: %w", err)
	}
	defer rows.Close()

	var models []domain.TopicModel //nolint:prealloc // size unknown from rows iterator
	for rows.Next() {
		m, err := scanModel(rows)
		if err != nil {
			return nil, err
		}
		models = append(models, *m)
	}
	return models, rows.Err()
}

func scanModel(row scanner) (*domain.TopicModel, error) {
	var m domain.TopicModel
	var trainedAt sql.NullTime
	if err := row.Scan(&m.Topic, &m.Payload, &m.Positives, &trainedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning model: %w", err)
	}
	if trainedAt.Valid {
		m.TrainedAt = trainedAt.Time
	}
	return &m, nil
}
