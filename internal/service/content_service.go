package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/advent-api/internal/models"
	"github.com/noah-isme/advent-api/internal/repository"
	appErrors "github.com/noah-isme/advent-api/pkg/errors"
	"github.com/noah-isme/advent-api/pkg/storage"
)

const listingCacheKey = "doors:listing"

type contentRegistry interface {
	GetAll(ctx context.Context) (map[int]string, error)
	Get(ctx context.Context, index int) (string, error)
}

type messageReader interface {
	Get(ctx context.Context, door int) (string, error)
}

type thumbnailProvider interface {
	CacheBuster() int64
}

// ContentService resolves stored files into typed door content and assembles
// the cached door listing.
type ContentService struct {
	registry     contentRegistry
	messages     messageReader
	availability *AvailabilityService
	thumbs       thumbnailProvider
	media        *storage.LocalStorage
	cache        *CacheService
	metrics      *MetricsService
	logger       *zap.Logger
	apiPrefix    string
	doorCount    int
}

// ContentServiceConfig wires the resolver's collaborators.
type ContentServiceConfig struct {
	Registry     contentRegistry
	Messages     messageReader
	Availability *AvailabilityService
	Thumbnails   thumbnailProvider
	Media        *storage.LocalStorage
	Cache        *CacheService
	Metrics      *MetricsService
	Logger       *zap.Logger
	APIPrefix    string
	DoorCount    int
}

// NewContentService constructs the service.
func NewContentService(cfg ContentServiceConfig) *ContentService {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.DoorCount <= 0 {
		cfg.DoorCount = 24
	}
	return &ContentService{
		registry:     cfg.Registry,
		messages:     cfg.Messages,
		availability: cfg.Availability,
		thumbs:       cfg.Thumbnails,
		media:        cfg.Media,
		cache:        cfg.Cache,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger,
		apiPrefix:    cfg.APIPrefix,
		doorCount:    cfg.DoorCount,
	}
}

// DoorCount returns the number of doors in the calendar.
func (s *ContentService) DoorCount() int {
	return s.doorCount
}

// checkDoorRange rejects door indices outside 1..doorCount so shifted
// registry slots never resolve as doors on the public surface.
func (s *ContentService) checkDoorRange(door int) error {
	if door < 1 || door > s.doorCount {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("door must be between 1 and %d", s.doorCount))
	}
	return nil
}

type listingSnapshot struct {
	Doors     models.Listing `json:"doors"`
	CreatedAt time.Time      `json:"created_at"`
}

// Listing returns the full door snapshot. Requests without client state may
// be served from the short-TTL cache; client state is request-specific and
// always bypasses it.
func (s *ContentService) Listing(ctx context.Context, state models.DoorState) (models.Listing, time.Time, error) {
	useCache := len(state) == 0 && s.cache.Enabled()

	if useCache {
		snapshot := listingSnapshot{}
		if hit, _ := s.cache.Get(ctx, listingCacheKey, &snapshot); hit {
			return snapshot.Doors, snapshot.CreatedAt, nil
		}
	}

	entries, err := s.registry.GetAll(ctx)
	if err != nil {
		return nil, time.Time{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load content registry")
	}

	listing := make(models.Listing, s.doorCount)
	for door := 1; door <= s.doorCount; door++ {
		available, err := s.availability.Available(ctx, door)
		if err != nil {
			return nil, time.Time{}, err
		}
		filename, assigned := entries[door]
		if !available || !assigned {
			listing[door] = models.DoorContent{Type: models.KindNotAvailable}
			continue
		}
		listing[door] = s.resolve(ctx, door, filename, state)
	}

	createdAt := time.Now().UTC()
	if useCache {
		_ = s.cache.Set(ctx, listingCacheKey, listingSnapshot{Doors: listing, CreatedAt: createdAt}, 0)
	}
	return listing, createdAt, nil
}

// Door resolves a single door. The availability gate takes priority over
// content presence: a gated door yields ErrNotYetAvailable regardless of
// whether content exists, and an open door without content reports the
// uniform "not available yet" shape.
func (s *ContentService) Door(ctx context.Context, door int, state models.DoorState) (models.DoorContent, error) {
	if err := s.checkDoorRange(door); err != nil {
		return models.DoorContent{}, err
	}
	available, err := s.availability.Available(ctx, door)
	if err != nil {
		return models.DoorContent{}, err
	}
	if !available {
		s.metrics.RecordDoorRead("gated")
		return models.DoorContent{}, appErrors.Clone(appErrors.ErrNotYetAvailable, fmt.Sprintf("door %d is not available yet", door))
	}

	filename, err := s.registry.Get(ctx, door)
	if err != nil {
		if errors.Is(err, repository.ErrNoEntry) {
			s.metrics.RecordDoorRead("empty")
			return models.DoorContent{Type: models.KindNotAvailable}, nil
		}
		return models.DoorContent{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load content registry")
	}

	s.metrics.RecordDoorRead("open")
	return s.resolve(ctx, door, filename, state), nil
}

// MediaFile returns the stored path of a door's media file for streaming.
func (s *ContentService) MediaFile(ctx context.Context, door int) (string, error) {
	if err := s.checkDoorRange(door); err != nil {
		return "", err
	}
	return s.mediaFile(ctx, door)
}

// mediaFile resolves by registry index, which may be a shifted puzzle-image
// slot and therefore skips the public range check.
func (s *ContentService) mediaFile(ctx context.Context, door int) (string, error) {
	available, err := s.availability.Available(ctx, door)
	if err != nil {
		return "", err
	}
	if !available {
		return "", appErrors.Clone(appErrors.ErrNotYetAvailable, fmt.Sprintf("door %d is not available yet", door))
	}
	filename, err := s.registry.Get(ctx, door)
	if err != nil {
		if errors.Is(err, repository.ErrNoEntry) {
			return "", appErrors.Clone(appErrors.ErrNotFound, "door has no content")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load content registry")
	}
	return s.media.Path(filename), nil
}

// PuzzleImageFile returns the stored path of a puzzle door's source image.
// The image shares its door's release date.
func (s *ContentService) PuzzleImageFile(ctx context.Context, door int) (string, error) {
	if err := s.checkDoorRange(door); err != nil {
		return "", err
	}
	return s.mediaFile(ctx, PuzzleImageIndex(door))
}

// StoredContent returns a door's registry filename and its effective content
// kind. Marker files carry a text extension, so a text-classified file falls
// through to body classification the same way the resolver does.
func (s *ContentService) StoredContent(ctx context.Context, door int) (string, models.ContentKind, error) {
	if err := s.checkDoorRange(door); err != nil {
		return "", models.KindNotAvailable, err
	}
	filename, err := s.registry.Get(ctx, door)
	if err != nil {
		if errors.Is(err, repository.ErrNoEntry) {
			return "", models.KindNotAvailable, appErrors.Clone(appErrors.ErrNotFound, "door has no content")
		}
		return "", models.KindNotAvailable, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load content registry")
	}
	kind := KindFromFilename(filename)
	if kind == models.KindText {
		if body, err := s.media.Read(filename); err == nil {
			kind = ClassifyText(string(body)).Kind
		}
	}
	return filename, kind, nil
}

// InvalidateListing drops the cached snapshot. Called by every admin
// mutation after its writes are durable.
func (s *ContentService) InvalidateListing(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, listingCacheKey)
}

// resolve never fails: any read or parse problem degrades to plain text.
func (s *ContentService) resolve(ctx context.Context, door int, filename string, state models.DoorState) models.DoorContent {
	declared := KindFromFilename(filename)

	var content models.DoorContent
	if declared.IsMedia() {
		data := s.mediaURL(door)
		content = models.DoorContent{Type: declared, Data: &data}
	} else {
		body, err := s.media.Read(filename)
		if err != nil {
			s.logger.Warn("content file unreadable", zap.Int("door", door), zap.String("file", filename), zap.Error(err))
			empty := ""
			return models.DoorContent{Type: models.KindText, Data: &empty}
		}
		content = s.classified(door, string(body), state)
	}

	if content.Type.HasThumbnail() && content.Thumbnail == nil {
		thumb := s.thumbnailURL(door)
		content.Thumbnail = &thumb
	}

	if message, err := s.messages.Get(ctx, door); err == nil && message != "" && content.Text == nil {
		content.Text = &message
	}
	return content
}

func (s *ContentService) classified(door int, body string, state models.DoorState) models.DoorContent {
	c := ClassifyText(body)
	switch c.Kind {
	case models.KindCountdown:
		return models.DoorContent{Type: models.KindCountdown, TargetDate: &c.TargetDate, Text: &c.Text}
	case models.KindPoll:
		return models.DoorContent{Type: models.KindPoll}
	case models.KindPuzzle:
		image := s.puzzleImageURL(door)
		content := models.DoorContent{Type: models.KindPuzzle, Data: &image}
		solved := state[door].Win
		content.IsSolved = &solved
		if solved {
			// The solved reveal: full image replaces the placeholder thumbnail.
			content.Thumbnail = &image
			content.FullImage = &image
		}
		return content
	case models.KindIframe:
		return models.DoorContent{Type: models.KindIframe, Data: &c.Payload}
	default:
		return models.DoorContent{Type: models.KindText, Data: &c.Payload}
	}
}

func (s *ContentService) mediaURL(door int) string {
	return fmt.Sprintf("%s/doors/%d/media", s.apiPrefix, door)
}

func (s *ContentService) puzzleImageURL(door int) string {
	return fmt.Sprintf("%s/doors/%d/puzzle-image", s.apiPrefix, door)
}

func (s *ContentService) thumbnailURL(door int) string {
	url := fmt.Sprintf("%s/doors/%d/thumbnail", s.apiPrefix, door)
	if s.thumbs != nil {
		if buster := s.thumbs.CacheBuster(); buster > 0 {
			url = fmt.Sprintf("%s?v=%d", url, buster)
		}
	}
	return url
}

// Classification is the outcome of sentinel inspection on a text body.
type Classification struct {
	Kind       models.ContentKind
	Payload    string
	TargetDate string
	Text       string
}

type textRule struct {
	name  string
	apply func(trimmed, raw string) (Classification, bool)
}

// countdownJSON is the JSON form of a countdown body.
type countdownJSON struct {
	Type       string      `json:"type"`
	TargetDate interface{} `json:"targetDate"`
	Text       interface{} `json:"text"`
}

// textRules is the ordered sentinel dispatch table. Order matters: the exact
// countdown sentinel wins over JSON parsing, and iframe detection runs after
// all exact-match sentinels.
var textRules = []textRule{
	{
		name: "countdown-sentinel",
		apply: func(trimmed, raw string) (Classification, bool) {
			if trimmed != models.SentinelCountdown {
				return Classification{}, false
			}
			return Classification{Kind: models.KindCountdown}, true
		},
	},
	{
		name: "countdown-json",
		apply: func(trimmed, raw string) (Classification, bool) {
			var parsed countdownJSON
			if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil || parsed.Type != "countdown" {
				return Classification{}, false
			}
			c := Classification{Kind: models.KindCountdown}
			if target, ok := parsed.TargetDate.(string); ok {
				c.TargetDate = target
			}
			if text, ok := parsed.Text.(string); ok {
				c.Text = text
			}
			return c, true
		},
	},
	{
		name: "poll-sentinel",
		apply: func(trimmed, raw string) (Classification, bool) {
			if trimmed != models.SentinelPoll {
				return Classification{}, false
			}
			return Classification{Kind: models.KindPoll}, true
		},
	},
	{
		name: "puzzle-sentinel",
		apply: func(trimmed, raw string) (Classification, bool) {
			if trimmed != models.SentinelPuzzle {
				return Classification{}, false
			}
			return Classification{Kind: models.KindPuzzle}, true
		},
	},
	{
		name: "iframe-wrapper",
		apply: func(trimmed, raw string) (Classification, bool) {
			start := strings.Index(trimmed, models.SentinelIframe)
			if start < 0 {
				return Classification{}, false
			}
			rest := trimmed[start+len(models.SentinelIframe):]
			end := strings.Index(rest, models.SentinelIframe)
			if end < 0 {
				return Classification{}, false
			}
			return Classification{Kind: models.KindIframe, Payload: strings.TrimSpace(rest[:end])}, true
		},
	},
}

// ClassifyText inspects a text body for sentinels and returns the resulting
// variant. It never fails; anything unrecognized is plain text with the full
// body as payload.
func ClassifyText(body string) Classification {
	trimmed := strings.TrimSpace(body)
	for _, rule := range textRules {
		if c, ok := rule.apply(trimmed, body); ok {
			return c
		}
	}
	return Classification{Kind: models.KindText, Payload: body}
}

// KindFromFilename derives the declared content kind from a stored file's
// extension. Unknown extensions are treated as text and classified by body.
func KindFromFilename(filename string) models.ContentKind {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png", ".webp", ".bmp":
		return models.KindImage
	case ".gif":
		return models.KindGif
	case ".mp4", ".webm", ".mov", ".mkv":
		return models.KindVideo
	case ".mp3", ".ogg", ".wav", ".m4a", ".flac":
		return models.KindAudio
	default:
		return models.KindText
	}
}
