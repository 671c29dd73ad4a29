package driving

import "github.com/custodia-labs/stopprep/internal/core/domain"

// SettingsService resolves and persists preparation settings.
type SettingsService interface {
	// Get resolves the stored configuration over the defaults.
	Get() (*domain.PrepareConfig, error)

	// Set validates and persists a single setting by key.
	Set(key, value string) error

	// Keys returns the recognised setting keys in display order.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.PrepareConfig
}
