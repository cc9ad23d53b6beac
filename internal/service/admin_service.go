package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/advent-api/internal/dto"
	"github.com/noah-isme/advent-api/internal/models"
	"github.com/noah-isme/advent-api/internal/repository"
	appErrors "github.com/noah-isme/advent-api/pkg/errors"
	"github.com/noah-isme/advent-api/pkg/jobs"
	"github.com/noah-isme/advent-api/pkg/storage"
)

var countdownDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

type adminRegistry interface {
	GetAll(ctx context.Context) (map[int]string, error)
	Get(ctx context.Context, index int) (string, error)
	Set(ctx context.Context, index int, filename string) error
	Delete(ctx context.Context, index int) (map[int]string, error)
	PuzzleImageIndex(index int) int
}

type messageStore interface {
	Get(ctx context.Context, door int) (string, error)
	Set(ctx context.Context, door int, message string) error
	Delete(ctx context.Context, door int) error
}

// AdminService orchestrates content mutations: delete-old, write-new, update
// registry, invalidate caches. The incoming payload is validated before any
// destructive step, so a rejected upload leaves the door untouched.
type AdminService struct {
	registry     adminRegistry
	polls        *PollService
	thumbs       *ThumbnailService
	messages     messageStore
	content      *ContentService
	availability *AvailabilityService
	media        *storage.LocalStorage
	signer       *storage.SignedURLSigner
	queue        *jobs.Queue
	validator    *validator.Validate
	logger       *zap.Logger
	doorCount    int
}

// AdminServiceConfig wires the pipeline's collaborators.
type AdminServiceConfig struct {
	Registry     adminRegistry
	Polls        *PollService
	Thumbnails   *ThumbnailService
	Messages     messageStore
	Content      *ContentService
	Availability *AvailabilityService
	Media        *storage.LocalStorage
	Signer       *storage.SignedURLSigner
	Queue        *jobs.Queue
	Validator    *validator.Validate
	Logger       *zap.Logger
	DoorCount    int
}

// NewAdminService constructs the pipeline.
func NewAdminService(cfg AdminServiceConfig) *AdminService {
	if cfg.Validator == nil {
		cfg.Validator = validator.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.DoorCount <= 0 {
		cfg.DoorCount = 24
	}
	return &AdminService{
		registry:     cfg.Registry,
		polls:        cfg.Polls,
		thumbs:       cfg.Thumbnails,
		messages:     cfg.Messages,
		content:      cfg.Content,
		availability: cfg.Availability,
		media:        cfg.Media,
		signer:       cfg.Signer,
		queue:        cfg.Queue,
		validator:    cfg.Validator,
		logger:       cfg.Logger,
		doorCount:    cfg.DoorCount,
	}
}

// Upload replaces a door's content. Replacing is delete-then-create, never a
// merge. The listing cache is invalidated last, after all writes are durable.
func (s *AdminService) Upload(ctx context.Context, door int, req dto.UploadContentRequest) (*dto.UploadContentResponse, error) {
	if err := s.checkDoorRange(door); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "contentType must be one of text, image, video, audio, gif, poll, puzzle, countdown, iframe")
	}
	kind := models.ContentKind(req.ContentType)
	if err := s.validateUpload(kind, req); err != nil {
		return nil, err
	}

	if err := s.removeExisting(ctx, door); err != nil {
		return nil, err
	}

	filename, err := s.persist(ctx, door, kind, req)
	if err != nil {
		return nil, err
	}

	if req.Message != "" && kind != models.KindText && kind != models.KindCountdown {
		if err := s.messages.Set(ctx, door, req.Message); err != nil {
			s.logger.Warn("message save failed", zap.Int("door", door), zap.Error(err))
		}
	}

	s.content.InvalidateListing(ctx)
	s.enqueueThumbnail(door, filename, kind)
	s.logger.Info("content uploaded", zap.Int("door", door), zap.String("type", string(kind)), zap.String("file", filename))
	return &dto.UploadContentResponse{Door: door, Type: kind, Filename: filename}, nil
}

// Delete removes a door's content and every dependent artifact: thumbnail,
// poll record, puzzle image, secondary message. File deletions are
// best-effort idempotent.
func (s *AdminService) Delete(ctx context.Context, door int) error {
	if err := s.checkDoorRange(door); err != nil {
		return err
	}

	removed, err := s.registry.Delete(ctx, door)
	if err != nil {
		if errors.Is(err, repository.ErrNoEntry) {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("door %d has no content", door))
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update content registry")
	}

	for _, filename := range removed {
		s.thumbs.Invalidate(filename)
		if err := s.media.Delete(filename); err != nil {
			s.logger.Warn("content file delete failed", zap.String("file", filename), zap.Error(err))
		}
	}
	if err := s.polls.Delete(ctx, door); err != nil {
		s.logger.Warn("poll cleanup failed", zap.Int("door", door), zap.Error(err))
	}
	if err := s.messages.Delete(ctx, door); err != nil {
		s.logger.Warn("message cleanup failed", zap.Int("door", door), zap.Error(err))
	}

	s.content.InvalidateListing(ctx)
	s.logger.Info("content deleted", zap.Int("door", door))
	return nil
}

// Doors lists every door for the admin UI, ignoring the availability gate.
func (s *AdminService) Doors(ctx context.Context) ([]dto.AdminDoorView, error) {
	entries, err := s.registry.GetAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load content registry")
	}

	views := make([]dto.AdminDoorView, 0, s.doorCount)
	for door := 1; door <= s.doorCount; door++ {
		view := dto.AdminDoorView{Door: door, Type: models.KindNotAvailable}
		if available, err := s.availability.Available(ctx, door); err == nil {
			view.Available = available
		}

		filename, assigned := entries[door]
		if assigned {
			view.Filename = filename
			view.Type = s.kindOf(filename)
			if token, _, err := s.signer.Generate(strconv.Itoa(door), filename); err == nil {
				view.PreviewToken = token
			}
		}
		if imageFile, ok := entries[s.registry.PuzzleImageIndex(door)]; ok {
			view.PuzzleImage = imageFile
			if token, _, err := s.signer.Generate(strconv.Itoa(s.registry.PuzzleImageIndex(door)), imageFile); err == nil {
				view.PuzzlePreview = token
			}
		}
		if message, err := s.messages.Get(ctx, door); err == nil && message != "" {
			view.HasMessage = true
		}
		if poll, err := s.polls.Definition(ctx, door); err == nil {
			total := 0
			for _, count := range s.polls.Votes(ctx, door) {
				total += count
			}
			view.Poll = &dto.PollSummary{Question: poll.Question, Options: len(poll.Options), TotalVotes: total}
		}
		views = append(views, view)
	}
	return views, nil
}

// ResolvePreview validates a signed preview token and returns the stored
// path of the referenced file.
func (s *AdminService) ResolvePreview(token string) (string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid preview token")
	}
	if !s.media.Exists(relPath) {
		return "", appErrors.Clone(appErrors.ErrNotFound, "file no longer exists")
	}
	return s.media.Path(relPath), nil
}

// ClearThumbnails wipes the derived thumbnail cache and bumps the reset
// timestamp, then invalidates the listing so clients pick up new busters.
func (s *AdminService) ClearThumbnails(ctx context.Context) (*dto.ClearThumbnailsResponse, error) {
	deleted, err := s.thumbs.ClearAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear thumbnails")
	}
	s.content.InvalidateListing(ctx)
	return &dto.ClearThumbnailsResponse{Deleted: deleted, ResetAt: s.thumbs.CacheBuster()}, nil
}

func (s *AdminService) checkDoorRange(door int) error {
	if door < 1 || door > s.doorCount {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("door must be between 1 and %d", s.doorCount))
	}
	return nil
}

func (s *AdminService) validateUpload(kind models.ContentKind, req dto.UploadContentRequest) error {
	switch kind {
	case models.KindText:
		if strings.TrimSpace(req.Text) == "" {
			return appErrors.Clone(appErrors.ErrValidation, "text content must not be empty")
		}
	case models.KindPoll:
		if strings.TrimSpace(req.Question) == "" {
			return appErrors.Clone(appErrors.ErrValidation, "poll requires a question")
		}
		options := dedupeOptions(req.Options)
		if len(options) == 0 {
			return appErrors.Clone(appErrors.ErrValidation, "poll requires at least one option")
		}
	case models.KindCountdown:
		if !countdownDatePattern.MatchString(req.Date) {
			return appErrors.Clone(appErrors.ErrValidation, "countdown date must match YYYY-MM-DD")
		}
	case models.KindIframe:
		if !strings.HasPrefix(req.URL, "http://") && !strings.HasPrefix(req.URL, "https://") {
			return appErrors.Clone(appErrors.ErrValidation, "iframe requires an http(s) URL")
		}
	case models.KindPuzzle:
		if req.PuzzleImage == nil || len(req.PuzzleImage.Data) == 0 {
			return appErrors.Clone(appErrors.ErrValidation, "puzzle requires a source image")
		}
		if KindFromFilename(req.PuzzleImage.Name) != models.KindImage {
			return appErrors.Clone(appErrors.ErrValidation, "puzzle source must be a still image")
		}
	case models.KindImage, models.KindVideo, models.KindAudio, models.KindGif:
		if req.File == nil || len(req.File.Data) == 0 {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s content requires a file", kind))
		}
		if KindFromFilename(req.File.Name) != kind {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file extension %s does not match content type %s", filepath.Ext(req.File.Name), kind))
		}
	}
	return nil
}

// removeExisting tears down whatever the door currently holds. Replacing
// content is delete-then-create.
func (s *AdminService) removeExisting(ctx context.Context, door int) error {
	_, err := s.registry.Get(ctx, door)
	if err != nil {
		if errors.Is(err, repository.ErrNoEntry) {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load content registry")
	}

	removed, err := s.registry.Delete(ctx, door)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update content registry")
	}
	for _, filename := range removed {
		s.thumbs.Invalidate(filename)
		if err := s.media.Delete(filename); err != nil {
			s.logger.Warn("content file delete failed", zap.String("file", filename), zap.Error(err))
		}
	}
	if err := s.polls.Delete(ctx, door); err != nil {
		s.logger.Warn("poll cleanup failed", zap.Int("door", door), zap.Error(err))
	}
	if err := s.messages.Delete(ctx, door); err != nil {
		s.logger.Warn("message cleanup failed", zap.Int("door", door), zap.Error(err))
	}
	return nil
}

func (s *AdminService) persist(ctx context.Context, door int, kind models.ContentKind, req dto.UploadContentRequest) (string, error) {
	switch kind {
	case models.KindText:
		return s.persistBody(ctx, door, req.Text)
	case models.KindPoll:
		poll := models.Poll{Question: strings.TrimSpace(req.Question), Options: dedupeOptions(req.Options)}
		if err := s.polls.Create(ctx, door, poll); err != nil {
			return "", err
		}
		return s.persistBody(ctx, door, models.SentinelPoll)
	case models.KindCountdown:
		body, err := json.Marshal(map[string]string{
			"type":       "countdown",
			"targetDate": req.Date,
			"text":       req.CountdownText,
		})
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode countdown")
		}
		return s.persistBody(ctx, door, string(body))
	case models.KindIframe:
		body := models.SentinelIframe + req.URL + models.SentinelIframe
		return s.persistBody(ctx, door, body)
	case models.KindPuzzle:
		imageIndex := s.registry.PuzzleImageIndex(door)
		imageName := s.storedName(imageIndex, req.PuzzleImage.Name)
		if _, err := s.media.Save(imageName, req.PuzzleImage.Data); err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store puzzle image")
		}
		if err := s.registry.Set(ctx, imageIndex, imageName); err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update content registry")
		}
		return s.persistBody(ctx, door, models.SentinelPuzzle)
	default:
		name := s.storedName(door, req.File.Name)
		if _, err := s.media.Save(name, req.File.Data); err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store media file")
		}
		if err := s.registry.Set(ctx, door, name); err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update content registry")
		}
		return name, nil
	}
}

func (s *AdminService) persistBody(ctx context.Context, door int, body string) (string, error) {
	name := fmt.Sprintf("%d.txt", door)
	if _, err := s.media.Save(name, []byte(body)); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store content file")
	}
	if err := s.registry.Set(ctx, door, name); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update content registry")
	}
	return name, nil
}

func (s *AdminService) storedName(index int, original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	return fmt.Sprintf("%d_%s%s", index, uuid.NewString()[:8], ext)
}

func (s *AdminService) enqueueThumbnail(door int, filename string, kind models.ContentKind) {
	if s.queue == nil || !kind.HasThumbnail() {
		return
	}
	job := jobs.Job{ID: uuid.NewString(), Door: door, Filename: filename, Kind: string(kind)}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("thumbnail enqueue failed", zap.Int("door", door), zap.Error(err))
	}
}

func (s *AdminService) kindOf(filename string) models.ContentKind {
	declared := KindFromFilename(filename)
	if declared != models.KindText {
		return declared
	}
	body, err := s.media.Read(filename)
	if err != nil {
		return models.KindText
	}
	return ClassifyText(string(body)).Kind
}

func dedupeOptions(options []string) []string {
	seen := make(map[string]struct{}, len(options))
	result := make([]string, 0, len(options))
	for _, option := range options {
		trimmed := strings.TrimSpace(option)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}
