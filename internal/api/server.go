package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/insightdelivered/fiscal-fox/internal/categorizer"
	"github.com/insightdelivered/fiscal-fox/internal/config"
	"github.com/insightdelivered/fiscal-fox/internal/extractor"
	"github.com/insightdelivered/fiscal-fox/internal/glossary"
	"github.com/insightdelivered/fiscal-fox/internal/parser"
)

// NewHandler wires the extraction engine and the dictionary loaders for a
// server session. Both dictionaries share the session cache c.
func NewHandler(cfg config.Config, c *cache.Cache, log zerolog.Logger, version string) *Handler {
	return &Handler{
		Engine:       parser.NewEngine(log),
		Categories:   categorizer.NewLoaderFor(c, cfg.Dictionary.Categories, cfg.Fetch.Timeout),
		Glossary:     glossary.NewLoaderFor(c, cfg.Dictionary.Glossary, cfg.Fetch.Timeout),
		FetchTimeout: cfg.Fetch.Timeout,
		AllowedHosts: cfg.Fetch.AllowedHosts,
		Fetch:        extractor.FetchPublicURL,
		Version:      version,
		StaticDir:    cfg.Server.StaticDir,
	}
}

// NewApp builds the fiber app with its middleware chain and h's routes.
func NewApp(h *Handler, cfg config.ServerConfig, log zerolog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "fiscal-fox",
		BodyLimit:             cfg.BodyLimit(),
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(RequestID(log))
	app.Use(AccessLog(log))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type," + HeaderRequestID,
	}))
	app.Use(RateLimit(rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst)))

	h.RegisterRoutes(app)
	return app
}
