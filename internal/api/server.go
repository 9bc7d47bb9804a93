package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"edgesync/internal/api/handlers"
	"edgesync/internal/api/middleware"
	"edgesync/internal/config"
	"edgesync/internal/logger"
	"edgesync/internal/sync"
	"edgesync/internal/transport"

	"github.com/gin-gonic/gin"
)

type Server struct {
	config *config.Config
	logger *logger.Logger
	router *gin.Engine
	server *http.Server
}

func New(cfg *config.Config, logger *logger.Logger, coordinator *sync.Coordinator, orders *sync.OrderManager) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	// Initialize handlers
	syncHandler := handlers.NewSyncHandler(coordinator, logger)
	orderHandler := handlers.NewOrderHandler(orders, logger)
	connectionHandler := handlers.NewConnectionHandler(transport.Dial, logger)

	// Health check
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Routes
	v1 := router.Group("/api/v1")
	{
		// Chunked flows
		syncRoutes := v1.Group("/sync")
		{
			syncRoutes.POST("/customers", syncHandler.Customers)
			syncRoutes.POST("/products", syncHandler.Products)
			syncRoutes.POST("/users", syncHandler.Users)
			syncRoutes.GET("/status", syncHandler.Status)
		}

		// Orders
		ordersRoutes := v1.Group("/orders")
		{
			ordersRoutes.POST("/:id/sync", orderHandler.Sync)
		}

		// Connection checks
		connection := v1.Group("/connection")
		{
			connection.POST("/test", connectionHandler.Test)
			connection.POST("/folders", connectionHandler.Folders)
		}
	}

	return &Server{
		config: cfg,
		logger: logger,
		router: router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on " + addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}

// Router exposes the Gin router for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
