// Package server is the thin HTTP layer over the scraper. Its contract to
// clients is "never propagate a scrape failure": any core error is logged
// and replaced with static fallback data.
package server

import (
	"context"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jmichaud/grocerytracker/config"
	"jmichaud/grocerytracker/internal/aggregate"
	"jmichaud/grocerytracker/internal/scraper"
	"jmichaud/grocerytracker/logger"
)

// Runner is the invocation contract the scraper exposes to this layer.
type Runner interface {
	Run(ctx context.Context, creds scraper.Credentials) ([]aggregate.CategoryRecord, error)
}

// Server wires the scraper into HTTP routes.
type Server struct {
	cfg    config.Config
	runner Runner
	log    *logger.Logger

	// One in-flight scrape at a time; the cache and metadata stores assume
	// a single writer.
	runMu sync.Mutex
}

// New creates a server around a scraper runner.
func New(cfg config.Config, runner Runner) *Server {
	return &Server{
		cfg:    cfg,
		runner: runner,
		log:    logger.ForServer(),
	}
}

// Router builds the gin engine. The metrics registry may be nil.
func (s *Server) Router(registry *prometheus.Registry) *gin.Engine {
	if s.cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		corsConfig.AllowOrigins = strings.Split(origins, ",")
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	corsConfig.AllowMethods = []string{"GET", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))

	api := router.Group("/api")
	{
		api.GET("/grocery-data", s.handleGroceryData)
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if registry != nil {
		router.GET("/metrics", gin.WrapH(
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	return router
}

// handleGroceryData serves the category report, substituting the fallback
// dataset on any scraper failure.
func (s *Server) handleGroceryData(c *gin.Context) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	creds := scraper.Credentials{
		Username: s.cfg.Username,
		Password: s.cfg.Password,
	}

	records, err := s.runner.Run(c.Request.Context(), creds)
	if err != nil {
		s.log.Warn().Err(err).Msg("Scrape failed, serving fallback data")
		c.JSON(http.StatusOK, fallbackRecords)
		return
	}
	c.JSON(http.StatusOK, records)
}

// Listen serves HTTP until the context is cancelled.
func (s *Server) Listen(ctx context.Context, registry *prometheus.Registry) error {
	srv := &http.Server{
		Addr:    s.cfg.ListenAddr,
		Handler: s.Router(registry),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.log.Info().Str("addr", s.cfg.ListenAddr).Msg("HTTP server listening")

	select {
	case <-ctx.Done():
		s.log.Info().Msg("Shutting down HTTP server")
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}
