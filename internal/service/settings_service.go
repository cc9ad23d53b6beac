package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/advent-api/internal/models"
	appErrors "github.com/noah-isme/advent-api/pkg/errors"
)

type settingsRepository interface {
	Get(ctx context.Context) (models.Settings, error)
	Save(ctx context.Context, settings models.Settings) error
}

type listingInvalidator interface {
	InvalidateListing(ctx context.Context)
}

// SettingsService manages the calendar-wide settings singleton.
type SettingsService struct {
	repo      settingsRepository
	cache     listingInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSettingsService constructs the service.
func NewSettingsService(repo settingsRepository, cache listingInvalidator, validate *validator.Validate, logger *zap.Logger) *SettingsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// Get returns the stored settings, created with defaults on first read.
func (s *SettingsService) Get(ctx context.Context) (models.Settings, error) {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		return models.Settings{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}
	return settings, nil
}

// Update validates and replaces the settings, then invalidates the listing
// cache since availability depends on the start date.
func (s *SettingsService) Update(ctx context.Context, settings models.Settings) (models.Settings, error) {
	if err := s.validator.Struct(settings); err != nil {
		return models.Settings{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "startDate must be YYYY-MM-DD and title must not be empty")
	}
	if err := s.repo.Save(ctx, settings); err != nil {
		return models.Settings{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save settings")
	}
	if s.cache != nil {
		s.cache.InvalidateListing(ctx)
	}
	s.logger.Info("settings updated", zap.String("start_date", settings.StartDate))
	return settings, nil
}
