package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Calendar   CalendarConfig
	Media      MediaConfig
	Thumbnails ThumbnailConfig
	Cache      CacheConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Admin      AdminConfig
	CORS       CORSConfig
	Log        LogConfig
}

// CalendarConfig controls the door calendar itself.
type CalendarConfig struct {
	DoorCount        int
	DefaultStartDate string
	DefaultTitle     string
}

// MediaConfig locates the on-disk content store.
type MediaConfig struct {
	DataDir           string
	MediaSubdir       string
	ThumbnailSubdir   string
	MessageSubdir     string
	MaxUploadSize     int64
	AllowedMIMEs      []string
	PuzzlePlaceholder string
}

// ThumbnailConfig tunes derived-preview generation.
type ThumbnailConfig struct {
	Enabled      bool
	FFmpegPath   string
	MaxDimension int
	Workers      int
}

// CacheConfig governs the door listing cache.
type CacheConfig struct {
	ListingTTL time.Duration
	UseRedis   bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

// AdminConfig holds the single operator's credentials.
type AdminConfig struct {
	Username        string
	PasswordHash    string
	PreviewSecret   string
	PreviewTokenTTL time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Calendar = CalendarConfig{
		DoorCount:        v.GetInt("CALENDAR_DOOR_COUNT"),
		DefaultStartDate: v.GetString("CALENDAR_DEFAULT_START_DATE"),
		DefaultTitle:     v.GetString("CALENDAR_DEFAULT_TITLE"),
	}

	cfg.Media = MediaConfig{
		DataDir:           v.GetString("MEDIA_DATA_DIR"),
		MediaSubdir:       v.GetString("MEDIA_SUBDIR"),
		ThumbnailSubdir:   v.GetString("MEDIA_THUMBNAIL_SUBDIR"),
		MessageSubdir:     v.GetString("MEDIA_MESSAGE_SUBDIR"),
		MaxUploadSize:     v.GetInt64("MEDIA_MAX_UPLOAD_SIZE"),
		AllowedMIMEs:      splitAndTrim(v.GetString("MEDIA_ALLOWED_MIME_TYPES")),
		PuzzlePlaceholder: v.GetString("MEDIA_PUZZLE_PLACEHOLDER"),
	}
	if cfg.Media.MaxUploadSize <= 0 {
		cfg.Media.MaxUploadSize = 64 * 1024 * 1024
	}

	cfg.Thumbnails = ThumbnailConfig{
		Enabled:      v.GetBool("THUMBNAILS_ENABLED"),
		FFmpegPath:   v.GetString("THUMBNAILS_FFMPEG_PATH"),
		MaxDimension: v.GetInt("THUMBNAILS_MAX_DIMENSION"),
		Workers:      v.GetInt("THUMBNAILS_WORKERS"),
	}

	cfg.Cache = CacheConfig{
		ListingTTL: parseDuration(v.GetString("LISTING_CACHE_TTL"), 10*time.Second),
		UseRedis:   v.GetBool("LISTING_CACHE_USE_REDIS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.Admin = AdminConfig{
		Username:        v.GetString("ADMIN_USERNAME"),
		PasswordHash:    v.GetString("ADMIN_PASSWORD_HASH"),
		PreviewSecret:   v.GetString("ADMIN_PREVIEW_SECRET"),
		PreviewTokenTTL: parseDuration(v.GetString("ADMIN_PREVIEW_TOKEN_TTL"), 30*time.Minute),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("CALENDAR_DOOR_COUNT", 24)
	v.SetDefault("CALENDAR_DEFAULT_START_DATE", "2024-12-01")
	v.SetDefault("CALENDAR_DEFAULT_TITLE", "Advent Calendar")

	v.SetDefault("MEDIA_DATA_DIR", "./data")
	v.SetDefault("MEDIA_SUBDIR", "media")
	v.SetDefault("MEDIA_THUMBNAIL_SUBDIR", "thumbnails")
	v.SetDefault("MEDIA_MESSAGE_SUBDIR", "messages")
	v.SetDefault("MEDIA_MAX_UPLOAD_SIZE", 64*1024*1024)
	v.SetDefault("MEDIA_ALLOWED_MIME_TYPES", "image/jpeg,image/png,image/gif,image/webp,video/mp4,video/webm,audio/mpeg,audio/ogg,audio/wav")
	v.SetDefault("MEDIA_PUZZLE_PLACEHOLDER", "./assets/puzzle_placeholder.jpg")

	v.SetDefault("THUMBNAILS_ENABLED", true)
	v.SetDefault("THUMBNAILS_FFMPEG_PATH", "ffmpeg")
	v.SetDefault("THUMBNAILS_MAX_DIMENSION", 500)
	v.SetDefault("THUMBNAILS_WORKERS", 2)

	v.SetDefault("LISTING_CACHE_TTL", "10s")
	v.SetDefault("LISTING_CACHE_USE_REDIS", false)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ADMIN_USERNAME", "admin")
	// bcrypt of "changeme"; override in any real deployment
	v.SetDefault("ADMIN_PASSWORD_HASH", "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")
	v.SetDefault("ADMIN_PREVIEW_SECRET", "dev_preview_secret")
	v.SetDefault("ADMIN_PREVIEW_TOKEN_TTL", "30m")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
