package repository

import (
	"context"

	"github.com/noah-isme/advent-api/internal/models"
)

// SettingsRepository persists the singleton calendar settings document.
type SettingsRepository struct {
	doc      *document
	defaults models.Settings
}

// NewSettingsRepository builds the repository. The defaults are written on
// first read when no document exists yet.
func NewSettingsRepository(path string, defaults models.Settings) *SettingsRepository {
	return &SettingsRepository{doc: newDocument(path), defaults: defaults}
}

// Get returns the stored settings, creating the document with defaults when
// absent.
func (r *SettingsRepository) Get(ctx context.Context) (models.Settings, error) {
	settings := models.Settings{}
	err := r.doc.mutate(&settings, func() error {
		if settings.StartDate != "" {
			return errNoChange
		}
		settings = r.defaults
		return nil
	})
	if err != nil {
		return models.Settings{}, err
	}
	return settings, nil
}

// Save replaces the settings document.
func (r *SettingsRepository) Save(ctx context.Context, settings models.Settings) error {
	current := models.Settings{}
	return r.doc.mutate(&current, func() error {
		current = settings
		return nil
	})
}
