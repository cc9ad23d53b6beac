package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/advent-api/internal/handler"
	"github.com/noah-isme/advent-api/internal/middleware"
	"github.com/noah-isme/advent-api/internal/service"
	"github.com/noah-isme/advent-api/pkg/config"
	"github.com/noah-isme/advent-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/advent-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/advent-api/pkg/middleware/requestid"
)

// Dependencies collects everything the router needs.
type Dependencies struct {
	Config   *config.Config
	Logger   *zap.Logger
	Metrics  *service.MetricsService
	Auth     *service.AuthService
	Doors    *handler.DoorHandler
	Polls    *handler.PollHandler
	Settings *handler.SettingsHandler
	Admin    *handler.AdminHandler
	Login    *handler.AuthHandler
}

// New assembles the gin engine with the full route table.
func New(deps Dependencies) *gin.Engine {
	if deps.Config.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(deps.Config.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	if deps.Config.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(deps.Config.APIPrefix)
	{
		api.GET("/doors", deps.Doors.List)
		api.GET("/doors/:door", deps.Doors.Get)
		api.GET("/doors/:door/media", deps.Doors.Media)
		api.GET("/doors/:door/thumbnail", deps.Doors.Thumbnail)
		api.GET("/doors/:door/puzzle-image", deps.Doors.PuzzleImage)
		api.GET("/doors/:door/poll", deps.Polls.Get)
		api.POST("/doors/:door/poll/vote", deps.Polls.Vote)
		api.GET("/settings", deps.Settings.Get)

		api.POST("/admin/login", deps.Login.Login)
		// Access control for previews rides on the signed token itself.
		api.GET("/admin/media/:token", deps.Admin.Preview)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.JWT(deps.Auth))
	{
		admin.GET("/me", deps.Login.Me)
		admin.GET("/doors", deps.Admin.Doors)
		admin.POST("/doors/:door", deps.Admin.Upload)
		admin.DELETE("/doors/:door", deps.Admin.Delete)
		admin.PUT("/settings", deps.Settings.Update)
		admin.POST("/thumbnails/clear", deps.Admin.ClearThumbnails)
	}

	return r
}
