package bootstrap

import (
	"strings"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"

	nutrihttp "nutri_server/adapter/in/http"
	"nutri_server/config"
	"nutri_server/infra/middleware"
	"nutri_server/pkg/logger"
)

// NewAPI builds the Fiber app with the full middleware stack and every
// handler registered. The returned cleanup closes all connections.
func NewAPI(cfg *config.Config) (*fiber.App, func(), error) {
	logger.Init(logger.Config{
		Level:   cfg.LogLevel,
		Service: "nutri-api",
		Pretty:  cfg.IsDevelopment(),
	})
	log := logger.Component("api")

	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize dependencies")
		return nil, nil, err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),
		ReadBufferSize:        16384,
		WriteBufferSize:       16384,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		BodyLimit:             1 * 1024 * 1024,
	})

	// Global middleware stack (order matters)
	app.Use(middleware.Recover())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// CORS: credentials require explicit origins
	allowOrigins := strings.Join(cfg.AllowedOrigins, ",")
	allowCredentials := true
	if allowOrigins == "" || allowOrigins == "*" {
		if cfg.IsProduction() {
			allowOrigins = ""
			allowCredentials = false
		} else {
			allowOrigins = "http://localhost:3000,http://localhost:5173"
		}
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Request-ID",
		ExposeHeaders:    "X-Request-ID",
		AllowCredentials: allowCredentials,
		MaxAge:           86400,
	}))

	// Health checks (no auth)
	healthHandler := nutrihttp.NewHealthHandler(deps.DB, deps.Redis)
	healthHandler.Register(app)

	// API routes (authenticated)
	api := app.Group("/api/v1")
	api.Use(middleware.JWTAuth(cfg.JWTSecret))

	nutrihttp.NewProfileHandler(deps.ProfileService).Register(api)
	nutrihttp.NewRecommendationHandler(deps.RecommendationService).Register(api)
	nutrihttp.NewTrainingHandler(deps.TrainingService).Register(api)
	nutrihttp.NewFeedbackHandler(deps.FeedbackService).Register(api)
	nutrihttp.NewProductHandler(deps.CatalogRepo, deps.JobQueue).Register(api)

	log.Info().Msg("api server initialized")
	return app, cleanup, nil
}
