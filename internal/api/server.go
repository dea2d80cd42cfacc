package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deusflow/headlines/internal/cache"
	"github.com/deusflow/headlines/internal/logger"
	"github.com/deusflow/headlines/internal/metrics"
	"github.com/deusflow/headlines/internal/news"
	"github.com/deusflow/headlines/internal/ratelimit"
)

// ItemService is what the handlers need from news.Service.
type ItemService interface {
	Items(ctx context.Context, cat news.Category, fresh bool) (news.Result, error)
	Snapshot() map[string]cache.Entry[[]news.Item]
}

type Server struct {
	svc        ItemService
	categories []news.Category
	metrics    *metrics.Metrics
	limiter    *ratelimit.ClientLimiter
}

type Option func(*Server)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithRateLimiter throttles the category endpoints per client.
func WithRateLimiter(l *ratelimit.ClientLimiter) Option {
	return func(s *Server) {
		s.limiter = l
	}
}

func NewServer(svc ItemService, categories []news.Category, opts ...Option) *Server {
	s := &Server{
		svc:        svc,
		categories: categories,
		metrics:    metrics.Global,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router constructs a Gin engine with one GET route per category plus
// /health and /metrics.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery(), requestLogger(), cors())
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	api := r.Group("/api")
	if s.limiter != nil {
		api.Use(s.limiter.Middleware())
	}
	for _, cat := range s.categories {
		api.GET("/"+cat.Name, s.handleCategory(cat))
	}

	r.GET("/health", s.handleHealth)
	r.GET("/metrics", s.handleMetrics)
	return r
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET")
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	stats := s.metrics.GetStats()
	body := gin.H{
		"status":     "ok",
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	}
	if !s.metrics.Healthy() {
		body["status"] = "error"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleMetrics(c *gin.Context) {
	stats := s.metrics.GetStats()

	entries := gin.H{}
	for name, entry := range s.svc.Snapshot() {
		entries[name] = gin.H{
			"items":       len(entry.Value),
			"captured_at": FormatTimestamp(entry.CapturedAt),
		}
	}
	stats["cache_entries"] = entries
	c.JSON(http.StatusOK, stats)
}
