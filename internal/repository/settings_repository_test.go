package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/advent-api/internal/models"
)

func TestSettingsFirstReadWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	defaults := models.Settings{StartDate: "2024-12-01", Title: "Advent Calendar"}
	repo := NewSettingsRepository(path, defaults)

	settings, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, defaults, settings)

	// The defaults are now durable: a different repo over the same path
	// sees them regardless of its own defaults.
	other := NewSettingsRepository(path, models.Settings{StartDate: "2030-01-01", Title: "other"})
	settings, err = other.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, defaults, settings)
}

func TestSettingsSaveReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	repo := NewSettingsRepository(path, models.Settings{StartDate: "2024-12-01", Title: "Advent"})

	updated := models.Settings{StartDate: "2025-12-01", Title: "Next Year", Description: "with a note"}
	require.NoError(t, repo.Save(context.Background(), updated))

	settings, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, updated, settings)
}
