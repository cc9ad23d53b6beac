package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	_ "github.com/noah-isme/advent-api/api/swagger"
	"github.com/noah-isme/advent-api/internal/handler"
	"github.com/noah-isme/advent-api/internal/models"
	"github.com/noah-isme/advent-api/internal/repository"
	"github.com/noah-isme/advent-api/internal/server"
	"github.com/noah-isme/advent-api/internal/service"
	"github.com/noah-isme/advent-api/pkg/cache"
	"github.com/noah-isme/advent-api/pkg/config"
	"github.com/noah-isme/advent-api/pkg/jobs"
	"github.com/noah-isme/advent-api/pkg/logger"
	"github.com/noah-isme/advent-api/pkg/storage"
	"github.com/noah-isme/advent-api/pkg/transcode"
)

// @title Advent Calendar API
// @version 1.0.0
// @description Door availability, content resolution and administration for a web advent calendar
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	mediaStore, err := storage.NewLocalStorage(filepath.Join(cfg.Media.DataDir, cfg.Media.MediaSubdir))
	if err != nil {
		logr.Sugar().Fatalw("media storage init failed", "error", err)
	}
	thumbStore, err := storage.NewLocalStorage(filepath.Join(cfg.Media.DataDir, cfg.Media.ThumbnailSubdir))
	if err != nil {
		logr.Sugar().Fatalw("thumbnail storage init failed", "error", err)
	}
	messageStore, err := storage.NewLocalStorage(filepath.Join(cfg.Media.DataDir, cfg.Media.MessageSubdir))
	if err != nil {
		logr.Sugar().Fatalw("message storage init failed", "error", err)
	}

	registryRepo := repository.NewRegistryRepository(filepath.Join(cfg.Media.DataDir, "doors.json"), mediaStore)
	settingsRepo := repository.NewSettingsRepository(filepath.Join(cfg.Media.DataDir, "settings.json"), models.Settings{
		StartDate: cfg.Calendar.DefaultStartDate,
		Title:     cfg.Calendar.DefaultTitle,
	})
	pollRepo := repository.NewPollRepository(filepath.Join(cfg.Media.DataDir, "polls.json"), filepath.Join(cfg.Media.DataDir, "votes.json"))
	messageRepo := repository.NewMessageRepository(messageStore)

	metrics := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	var closeCache func() error
	if cfg.Cache.UseRedis {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("redis connection failed", "error", err)
		}
		redisRepo := repository.NewCacheRepository(client, logr)
		cacheRepo = redisRepo
		closeCache = redisRepo.Close
	} else {
		cacheRepo = repository.NewMemoryCacheRepository()
	}
	cacheService := service.NewCacheService(cacheRepo, metrics, cfg.Cache.ListingTTL, logr)

	validate := validator.New()
	availability := service.NewAvailabilityService(settingsRepo, time.Now)
	transcoder := transcode.NewFFmpeg(cfg.Thumbnails.FFmpegPath, cfg.Thumbnails.MaxDimension)
	thumbService := service.NewThumbnailService(service.ThumbnailServiceConfig{
		Media:       mediaStore,
		Thumbs:      thumbStore,
		Transcoder:  transcoder,
		Placeholder: cfg.Media.PuzzlePlaceholder,
		Metrics:     metrics,
		Logger:      logr,
		Enabled:     cfg.Thumbnails.Enabled,
	})
	contentService := service.NewContentService(service.ContentServiceConfig{
		Registry:     registryRepo,
		Messages:     messageRepo,
		Availability: availability,
		Thumbnails:   thumbService,
		Media:        mediaStore,
		Cache:        cacheService,
		Metrics:      metrics,
		Logger:       logr,
		APIPrefix:    cfg.APIPrefix,
		DoorCount:    cfg.Calendar.DoorCount,
	})
	pollService := service.NewPollService(pollRepo, availability, metrics, logr)
	settingsService := service.NewSettingsService(settingsRepo, contentService, validate, logr)
	authService := service.NewAuthService(cfg.Admin, cfg.JWT, validate, logr)
	signer := storage.NewSignedURLSigner(cfg.Admin.PreviewSecret, cfg.Admin.PreviewTokenTTL)

	queue := jobs.NewQueue("thumbnails", func(ctx context.Context, job jobs.Job) error {
		_, err := thumbService.Generate(ctx, job.Filename, models.ContentKind(job.Kind))
		return err
	}, jobs.QueueConfig{Workers: cfg.Thumbnails.Workers, Logger: logr})

	adminService := service.NewAdminService(service.AdminServiceConfig{
		Registry:     registryRepo,
		Polls:        pollService,
		Thumbnails:   thumbService,
		Messages:     messageRepo,
		Content:      contentService,
		Availability: availability,
		Media:        mediaStore,
		Signer:       signer,
		Queue:        queue,
		Validator:    validate,
		Logger:       logr,
		DoorCount:    cfg.Calendar.DoorCount,
	})

	router := server.New(server.Dependencies{
		Config:   cfg,
		Logger:   logr,
		Metrics:  metrics,
		Auth:     authService,
		Doors:    handler.NewDoorHandler(contentService, thumbService),
		Polls:    handler.NewPollHandler(pollService),
		Settings: handler.NewSettingsHandler(settingsService),
		Admin:    handler.NewAdminHandler(adminService, cfg.Media.MaxUploadSize),
		Login:    handler.NewAuthHandler(authService),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	queue.Start(ctx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
	queue.Stop()
	if closeCache != nil {
		_ = closeCache()
	}
}
