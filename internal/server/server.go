package server

import (
	"log"

	"ai-qa-be/internal/bootstrap"
	"ai-qa-be/internal/config"
	"ai-qa-be/internal/pkg/serverutils"
	"ai-qa-be/internal/service"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

var errorStatuses = []serverutils.ErrorStatus{
	{Err: service.ErrTextNotFound, Status: fiber.StatusNotFound},
	{Err: service.ErrFolderNotFound, Status: fiber.StatusNotFound},
	{Err: service.ErrParentNotFound, Status: fiber.StatusBadRequest},
	{Err: service.ErrFolderCycle, Status: fiber.StatusBadRequest},
	{Err: service.ErrContentTooLarge, Status: fiber.StatusBadRequest},
	{Err: service.ErrUnsupportedProvider, Status: fiber.StatusBadRequest},
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware(errorStatuses...))

	registerRoutes(app, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("[INFO] Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	api := app.Group("/api")

	c.OAuthController.RegisterRoutes(api)

	c.FolderController.RegisterRoutes(api)
	c.TextController.RegisterRoutes(api)

	c.QAController.RegisterRoutes(api)
	c.ChatController.RegisterRoutes(api)
	c.TokenizerController.RegisterRoutes(api)

	c.QASocketHandler.RegisterRoutes(app)
}
