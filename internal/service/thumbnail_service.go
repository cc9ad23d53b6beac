package service

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	// Validity probing of cached thumbnails and placeholder assets.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"go.uber.org/zap"

	"github.com/noah-isme/advent-api/internal/models"
	"github.com/noah-isme/advent-api/pkg/storage"
)

// Transcoder produces a resized JPEG from a source file. Transcoding is an
// external concern; failures are absorbed here and degrade to no thumbnail.
type Transcoder interface {
	Image(ctx context.Context, src, dst string) error
	VideoFrame(ctx context.Context, src, dst string) error
}

// ThumbnailService derives and caches one preview image per content file.
type ThumbnailService struct {
	media       *storage.LocalStorage
	thumbs      *storage.LocalStorage
	transcoder  Transcoder
	placeholder string
	metrics     *MetricsService
	logger      *zap.Logger
	enabled     bool
	resetAt     atomic.Int64
}

// ThumbnailServiceConfig wires the cache's collaborators.
type ThumbnailServiceConfig struct {
	Media       *storage.LocalStorage
	Thumbs      *storage.LocalStorage
	Transcoder  Transcoder
	Placeholder string
	Metrics     *MetricsService
	Logger      *zap.Logger
	Enabled     bool
}

// NewThumbnailService constructs the service.
func NewThumbnailService(cfg ThumbnailServiceConfig) *ThumbnailService {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &ThumbnailService{
		media:       cfg.Media,
		thumbs:      cfg.Thumbs,
		transcoder:  cfg.Transcoder,
		placeholder: cfg.Placeholder,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
		enabled:     cfg.Enabled,
	}
}

// Generate returns the cached thumbnail path for a content file, deriving it
// on first use. Kinds without previews return "" immediately (explicit skip,
// not an error). Transcode failures are absorbed: the result is simply no
// thumbnail, never a failed content request.
func (s *ThumbnailService) Generate(ctx context.Context, filename string, kind models.ContentKind) (string, error) {
	if !s.enabled || !kind.HasThumbnail() {
		return "", nil
	}

	name := s.thumbName(filename)
	path := s.thumbs.Path(name)
	if s.isValidImage(path) {
		return path, nil
	}

	start := time.Now()
	err := s.derive(ctx, filename, kind, path)
	s.metrics.ObserveThumbnail(time.Since(start), err != nil)
	if err != nil {
		s.logger.Warn("thumbnail generation failed", zap.String("file", filename), zap.Error(err))
		_ = s.thumbs.Delete(name)
		return "", nil
	}
	return path, nil
}

// Invalidate deletes the derived thumbnail for a content file. Idempotent.
func (s *ThumbnailService) Invalidate(filename string) {
	if err := s.thumbs.Delete(s.thumbName(filename)); err != nil {
		s.logger.Warn("thumbnail invalidate failed", zap.String("file", filename), zap.Error(err))
	}
}

// ClearAll wipes every cached thumbnail and bumps the reset timestamp used
// as the client-facing cache-buster.
func (s *ThumbnailService) ClearAll(ctx context.Context) (int, error) {
	deleted, err := s.thumbs.Clear()
	if err != nil {
		return 0, err
	}
	s.resetAt.Store(time.Now().Unix())
	s.logger.Info("thumbnail cache cleared", zap.Int("deleted", len(deleted)))
	return len(deleted), nil
}

// CacheBuster returns the last reset timestamp, zero before any reset.
func (s *ThumbnailService) CacheBuster() int64 {
	return s.resetAt.Load()
}

func (s *ThumbnailService) derive(ctx context.Context, filename string, kind models.ContentKind, dst string) error {
	switch kind {
	case models.KindPuzzle:
		// Puzzle previews never derive from the content file: a fixed
		// placeholder hides the image until the puzzle is solved.
		data, err := os.ReadFile(s.placeholder)
		if err != nil {
			return fmt.Errorf("read puzzle placeholder: %w", err)
		}
		return os.WriteFile(dst, data, 0o644)
	case models.KindVideo, models.KindGif:
		return s.transcoder.VideoFrame(ctx, s.media.Path(filename), dst)
	case models.KindImage:
		return s.transcoder.Image(ctx, s.media.Path(filename), dst)
	default:
		return fmt.Errorf("kind %s has no thumbnail", kind)
	}
}

func (s *ThumbnailService) thumbName(filename string) string {
	base := filepath.Base(filename)
	return "thumb_" + strings.TrimSuffix(base, filepath.Ext(base)) + ".jpg"
}

// isValidImage is the cache-hit probe: an existing, decodable file
// short-circuits transcoding.
func (s *ThumbnailService) isValidImage(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close() //nolint:errcheck
	_, _, err = image.DecodeConfig(file)
	return err == nil
}
