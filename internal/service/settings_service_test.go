package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/advent-api/internal/models"
	appErrors "github.com/noah-isme/advent-api/pkg/errors"
)

type settingsRepoStub struct {
	settings models.Settings
	saved    *models.Settings
}

func (s *settingsRepoStub) Get(ctx context.Context) (models.Settings, error) {
	return s.settings, nil
}

func (s *settingsRepoStub) Save(ctx context.Context, settings models.Settings) error {
	s.saved = &settings
	s.settings = settings
	return nil
}

type invalidatorStub struct {
	calls int
}

func (i *invalidatorStub) InvalidateListing(ctx context.Context) { i.calls++ }

func TestSettingsUpdatePersistsAndInvalidatesListing(t *testing.T) {
	repo := &settingsRepoStub{settings: models.Settings{StartDate: "2024-12-01", Title: "Advent"}}
	cache := &invalidatorStub{}
	svc := NewSettingsService(repo, cache, nil, nil)

	updated, err := svc.Update(context.Background(), models.Settings{StartDate: "2025-12-01", Title: "Advent 2025"})
	require.NoError(t, err)
	assert.Equal(t, "2025-12-01", updated.StartDate)
	require.NotNil(t, repo.saved)
	assert.Equal(t, "Advent 2025", repo.saved.Title)
	assert.Equal(t, 1, cache.calls)
}

func TestSettingsUpdateRejectsMalformedStartDate(t *testing.T) {
	repo := &settingsRepoStub{}
	cache := &invalidatorStub{}
	svc := NewSettingsService(repo, cache, nil, nil)

	for _, startDate := range []string{"", "01.12.2024", "2024-13-01", "december"} {
		_, err := svc.Update(context.Background(), models.Settings{StartDate: startDate, Title: "Advent"})
		require.Error(t, err, startDate)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code, startDate)
	}
	assert.Nil(t, repo.saved)
	assert.Zero(t, cache.calls)
}

func TestSettingsUpdateRequiresTitle(t *testing.T) {
	svc := NewSettingsService(&settingsRepoStub{}, nil, nil, nil)

	_, err := svc.Update(context.Background(), models.Settings{StartDate: "2024-12-01"})
	assert.Error(t, err)
}

func TestSettingsGetPassesThrough(t *testing.T) {
	repo := &settingsRepoStub{settings: models.Settings{StartDate: "2024-12-01", Title: "Advent", Description: "24 doors"}}
	svc := NewSettingsService(repo, nil, nil, nil)

	settings, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "24 doors", settings.Description)
}
