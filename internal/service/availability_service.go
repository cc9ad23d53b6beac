package service

import (
	"context"
	"time"

	"github.com/noah-isme/advent-api/internal/models"
	appErrors "github.com/noah-isme/advent-api/pkg/errors"
)

type settingsReader interface {
	Get(ctx context.Context) (models.Settings, error)
}

// AvailabilityService answers the date question for doors: may this door's
// content be revealed yet. Range checks (1..24) stay with callers.
type AvailabilityService struct {
	settings settingsReader
	clock    func() time.Time
}

// NewAvailabilityService constructs the service.
func NewAvailabilityService(settings settingsReader, clock func() time.Time) *AvailabilityService {
	if clock == nil {
		clock = time.Now
	}
	return &AvailabilityService{settings: settings, clock: clock}
}

// Available reports whether the door's release date has been reached,
// reading the configured start date from settings.
func (s *AvailabilityService) Available(ctx context.Context, door int) (bool, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}
	startDate, err := time.ParseInLocation("2006-01-02", settings.StartDate, time.Local)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "invalid configured start date")
	}
	return IsAvailable(door, s.clock(), startDate), nil
}

// IsAvailable decides whether a door may be revealed on the given day. A
// puzzle image index (door+1000) shares its door's release date. Door 1 is
// available on the start date itself. Calendar-day granularity: time of day
// is ignored on both sides.
func IsAvailable(door int, today, startDate time.Time) bool {
	if door >= models.PuzzleImageOffset {
		door -= models.PuzzleImageOffset
	}
	availableOn := truncateToDay(startDate).AddDate(0, 0, door-1)
	return !truncateToDay(today).Before(availableOn)
}

// PuzzleImageIndex returns the registry slot holding a puzzle's source image.
func PuzzleImageIndex(door int) int {
	return door + models.PuzzleImageOffset
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
