package driving

import "github.com/custodia-labs/lexicon/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get returns the current settings with defaults applied.
	Get() (*domain.Settings, error)

	// Set validates and persists one setting by dot key.
	Set(key, value string) error

	// Keys returns every supported setting key.
	Keys() []string

	// Value returns the current value of a key as text.
	Value(key string) (string, error)

	// Validate checks the current settings.
	Validate() error
}
