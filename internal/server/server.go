package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/matthieukhl/doemart/internal/auth"
	"github.com/matthieukhl/doemart/internal/dashboard"
	"github.com/matthieukhl/doemart/internal/logger"
	"github.com/matthieukhl/doemart/internal/types"
)

type Server struct {
	router  *gin.Engine
	backend types.Backend
	store   *auth.Store
	log     *logger.Logger

	// shopkeeper follows the session identity while Run is active
	shopkeeper *dashboard.Shopkeeper

	mu    sync.Mutex
	actor uuid.UUID
	admin *dashboard.Admin
	user  *dashboard.User
}

// NewServer creates a new server instance
func NewServer(backend types.Backend, store *auth.Store, log *logger.Logger) *Server {
	log = log.WithComponent("server")

	router := gin.New()
	router.Use(gin.Recovery(), log.GinMiddleware())

	server := &Server{
		router:     router,
		backend:    backend,
		store:      store,
		log:        log,
		shopkeeper: dashboard.NewShopkeeper(backend, log, uuid.Nil),
	}

	server.setupRoutes()
	return server
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/health", s.healthCheck)
		api.GET("/session", s.session)
		api.GET("/home", s.home)

		authGroup := api.Group("/auth")
		authGroup.POST("/signin", s.signIn)
		authGroup.POST("/signup", s.signUp)
		authGroup.POST("/signout", s.signOut)

		admin := api.Group("/admin", s.gated("/admin"))
		admin.GET("", s.adminView)
		admin.POST("/profiles/:id/approve", s.decideProfile(true))
		admin.POST("/profiles/:id/reject", s.decideProfile(false))

		shopkeeper := api.Group("/shopkeeper", s.gated("/shopkeeper"))
		shopkeeper.GET("", s.shopkeeperView)
		shopkeeper.POST("/shop", s.createShop)
		shopkeeper.POST("/products", s.addProduct)

		user := api.Group("/user", s.gated("/user"))
		user.GET("", s.userView)
	}
}

// healthCheck endpoint for monitoring
func (s *Server) healthCheck(c *gin.Context) {
	if hc, ok := s.backend.(types.HealthChecker); ok {
		if err := hc.HealthCheck(c.Request.Context()); err != nil {
			s.log.Error("Health check failed", "backend", s.backend.Name(), "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "error",
				"error":  "backend unavailable",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "doemart",
		"version": "0.1.0",
		"backend": s.backend.Name(),
	})
}

// dashboards returns the admin and user views for actor, rebuilding them when the actor changes
func (s *Server) dashboards(actor uuid.UUID) (*dashboard.Admin, *dashboard.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.admin == nil || s.actor != actor {
		s.actor = actor
		s.admin = dashboard.NewAdmin(s.backend, s.log, actor)
		s.user = dashboard.NewUser(s.backend, s.log, actor)
	}
	return s.admin, s.user
}

// shopkeeperFor prefers the watched dashboard and falls back to a fresh one while Watch catches up
func (s *Server) shopkeeperFor(actor uuid.UUID) *dashboard.Shopkeeper {
	if s.shopkeeper.Actor() == actor {
		return s.shopkeeper
	}
	return dashboard.NewShopkeeper(s.backend, s.log, actor)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	go s.shopkeeper.Watch(watchCtx, s.store)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.log.Info("Starting HTTP server", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
