// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"dealfeed/internal/config"
	"dealfeed/internal/database"
	"dealfeed/internal/middleware"
	"dealfeed/internal/models"
	"dealfeed/internal/service"
	"dealfeed/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	store          storage.Storage
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	dealService    *service.DealService
	userService    *service.UserService
}

// NewServer creates a new server instance, building the storage backend
// selected by STORE_DRIVER. Demo seeding is left to the caller so it stays
// explicit in cmd and test setup.
func NewServer(cfg *config.Config) (*Server, error) {
	store, err := BuildStore(cfg)
	if err != nil {
		return nil, err
	}
	return NewServerWithDeps(cfg, store), nil
}

// BuildStore constructs the storage backend named by STORE_DRIVER.
func BuildStore(cfg *config.Config) (storage.Storage, error) {
	switch cfg.StoreDriver {
	case "sqlite":
		db, err := database.Connect(cfg.StoreDSN)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		return storage.NewGormStore(db), nil
	default:
		return storage.NewMemoryStore(), nil
	}
}

var (
	promOnce     sync.Once
	promInstance *fiberprometheus.FiberPrometheus
)

// initMetrics builds the shared Prometheus middleware. The collectors
// register globally, so this must run at most once per process.
func initMetrics() *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promInstance = fiberprometheus.New("dealfeed")
	})
	return promInstance
}

// NewServerWithDeps creates a Server using an already-initialized storage
// backend. Use this in tests.
func NewServerWithDeps(cfg *config.Config, store storage.Storage) *Server {
	prom := initMetrics()

	return &Server{
		config:         cfg,
		store:          store,
		promMiddleware: prom,
		dealService:    service.NewDealService(store),
		userService:    service.NewUserService(store),
	}
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit
	// (e.g. limiter) so browser clients still receive CORS headers on error
	// responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Stores and categories
	api.Get("/stores", s.GetStores)
	api.Get("/stores/:id", s.GetStore)
	api.Get("/categories", s.GetCategories)

	// Deals, likes, comments
	deals := api.Group("/deals")
	deals.Get("/", s.GetDeals)
	deals.Post("/", s.CreateDeal)
	// Specific /:id/:resource routes before the generic /:id route
	deals.Post("/:id/like", s.ToggleLike)
	deals.Get("/:id/comments", s.GetComments)
	deals.Post("/:id/comments", s.CreateComment)
	deals.Get("/:id", s.GetDeal)
	api.Delete("/comments/:id", s.DeleteComment)

	// Users and the follow graph
	users := api.Group("/users")
	users.Post("/", s.Signup)
	users.Post("/:username/follow", s.FollowUser)
	users.Delete("/:username/follow", s.UnfollowUser)
	users.Get("/:username/followers", s.GetFollowers)
	users.Get("/:username/following", s.GetFollowing)
	users.Get("/:username/follow-status", s.GetFollowStatus)
	users.Get("/:username", s.GetUserProfile)

	// Direct chat
	chat := api.Group("/chat")
	chat.Post("/messages/:id/read", s.MarkMessageRead)
	chat.Get("/:userId", s.GetChatMessages)
	chat.Post("/:userId", s.SendChatMessage)

	// Shopping lists
	lists := api.Group("/shopping-lists")
	lists.Get("/", s.GetShoppingLists)
	lists.Post("/", s.CreateShoppingList)
	lists.Get("/:id/items", s.GetShoppingListItems)
	lists.Post("/:id/items", s.CreateShoppingListItem)
	lists.Post("/:id/share", s.ShareShoppingList)
	lists.Get("/:id", s.GetShoppingList)
	lists.Patch("/:id", s.UpdateShoppingList)
	lists.Delete("/:id", s.DeleteShoppingList)
	api.Patch("/shopping-list-items/:id", s.UpdateShoppingListItem)
	api.Delete("/shopping-list-items/:id", s.DeleteShoppingListItem)
	api.Get("/shared-lists", s.GetSharedLists)

	// Barcode scanning (mock product lookup)
	api.Post("/barcode/scan", s.ScanBarcode)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	storeStatus := "healthy"
	if _, err := s.store.ListCategories(ctx); err != nil {
		storeStatus = "unhealthy"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if storeStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "dealfeed",
		"version": "1.0.0",
		"status":  overallStatus,
		"checks": fiber.Map{
			"store": storeStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "Grocery Deals API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
