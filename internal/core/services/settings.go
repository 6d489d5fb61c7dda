package services

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/custodia-labs/lexicon/internal/core/domain"
	"github.com/custodia-labs/lexicon/internal/core/ports/driven"
	"github.com/custodia-labs/lexicon/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// settingField returns a pointer to the field a config key controls.
type settingField func(s *domain.Settings) any

// settingsTable lists every supported key.
var settingsTable = map[string]settingField{
	"corpus.folder":             func(s *domain.Settings) any { return &s.Corpus.Folder },
	"extraction.chunk_size":     func(s *domain.Settings) any { return &s.Extraction.ChunkSize },
	"extraction.workers":        func(s *domain.Settings) any { return &s.Extraction.Workers },
	"extraction.queue_size":     func(s *domain.Settings) any { return &s.Extraction.QueueSize },
	"extraction.flush_every":    func(s *domain.Settings) any { return &s.Extraction.FlushEvery },
	"aggregation.batch_size":    func(s *domain.Settings) any { return &s.Aggregation.BatchSize },
	"aggregation.prune_share":   func(s *domain.Settings) any { return &s.Aggregation.PruneShare },
	"coverage.fraction":         func(s *domain.Settings) any { return &s.Coverage.Fraction },
	"vectors.workers":           func(s *domain.Settings) any { return &s.Vectors.Workers },
	"classifier.high_threshold": func(s *domain.Settings) any { return &s.Classifier.HighThreshold },
	"classifier.low_threshold":  func(s *domain.Settings) any { return &s.Classifier.LowThreshold },
	"classifier.neighbours":     func(s *domain.Settings) any { return &s.Classifier.Neighbours },
	"classifier.max_features":   func(s *domain.Settings) any { return &s.Classifier.MaxFeatures },
	"classifier.ridge_alpha":    func(s *domain.Settings) any { return &s.Classifier.RidgeAlpha },
	"classifier.seed":           func(s *domain.Settings) any { return &s.Classifier.Seed },
	"classifier.labels_file":    func(s *domain.Settings) any { return &s.Classifier.LabelsFile },
	"retry.max_attempts":        func(s *domain.Settings) any { return &s.Retry.MaxAttempts },
	"retry.delay":               func(s *domain.Settings) any { return &s.Retry.Delay },
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get returns the defaults overlaid with every stored value.
func (s *SettingsService) Get() (*domain.Settings, error) {
	settings := domain.DefaultSettings()

	for key, field := range settingsTable {
		if _, ok := s.configStore.Get(key); !ok {
			continue
		}
		if err := s.load(key, field, &settings); err != nil {
			return nil, err
		}
	}

	return &settings, nil
}

// Set validates and persists one setting.
func (s *SettingsService) Set(key, value string) error {
	field, ok := settingsTable[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	stored, err := assign(field, settings, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns every supported key in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingsTable))
	for key := range settingsTable {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Value returns the current value of key as text.
func (s *SettingsService) Value(key string) (string, error) {
	field, ok := settingsTable[key]
	if !ok {
		return "", fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	settings, err := s.Get()
	if err != nil {
		return "", err
	}

	switch p := field(settings).(type) {
	case *string:
		return *p, nil
	case *int:
		return strconv.Itoa(*p), nil
	case *int64:
		return strconv.FormatInt(*p, 10), nil
	case *float64:
		return strconv.FormatFloat(*p, 'g', -1, 64), nil
	case *time.Duration:
		return p.String(), nil
	default:
		return "", fmt.Errorf("setting %s has unsupported type %T", key, p)
	}
}

// Validate checks the current settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// load copies the stored value of key into settings.
func (s *SettingsService) load(key string, field settingField, settings *domain.Settings) error {
	switch p := field(settings).(type) {
	case *string:
		*p = s.configStore.GetString(key)
	case *int:
		*p = s.configStore.GetInt(key)
	case *int64:
		*p = int64(s.configStore.GetInt(key))
	case *float64:
		*p = s.configStore.GetFloat(key)
	case *time.Duration:
		d, err := time.ParseDuration(s.configStore.GetString(key))
		if err != nil {
			return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
		}
		*p = d
	}
	return nil
}

// assign parses value into field and returns the value to store.
func assign(field settingField, settings *domain.Settings, value string) (any, error) {
	switch p := field(settings).(type) {
	case *string:
		*p = value
		return value, nil
	case *int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, err
		}
		*p = n
		return n, nil
	case *int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, err
		}
		*p = n
		return n, nil
	case *float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, err
		}
		*p = f
		return f, nil
	case *time.Duration:
		d, err := time.ParseDuration(value)
		if err != nil {
			return nil, err
		}
		*p = d
		return d.String(), nil
	default:
		return nil, fmt.Errorf("unsupported type %T", p)
	}
}
