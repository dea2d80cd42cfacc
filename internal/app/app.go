package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deusflow/headlines/internal/api"
	"github.com/deusflow/headlines/internal/cache"
	"github.com/deusflow/headlines/internal/config"
	"github.com/deusflow/headlines/internal/logger"
	"github.com/deusflow/headlines/internal/metrics"
	"github.com/deusflow/headlines/internal/news"
	"github.com/deusflow/headlines/internal/ratelimit"
	"github.com/deusflow/headlines/internal/rss"
)

const shutdownTimeout = 10 * time.Second

// App wires configuration, the feed pipeline and the HTTP surface together.
type App struct {
	cfg        *config.Config
	categories []news.Category
	service    *news.Service
	limiter    *ratelimit.ClientLimiter
	server     *api.Server
}

// New builds the application from cfg. fetcher may be nil, in which case a
// gofeed-backed fetcher configured from cfg is used.
func New(cfg *config.Config, fetcher news.Fetcher) (*App, error) {
	categories, err := rss.LoadCategories(cfg.SourcesFile)
	if err != nil {
		return nil, fmt.Errorf("loading categories: %w", err)
	}

	if fetcher == nil {
		fetcher = rss.NewFetcher(cfg.UserAgent,
			rss.WithTimeout(cfg.FeedTimeout),
			rss.WithRetry(cfg.FeedRetryAttempts, cfg.FeedRetryDelay),
		)
	}

	store := cache.New[[]news.Item](cfg.CacheTTL)
	service := news.NewService(
		news.NewAggregator(fetcher, metrics.Global),
		store,
		news.WithSingleFlight(cfg.SingleFlight),
	)

	a := &App{
		cfg:        cfg,
		categories: categories,
		service:    service,
	}

	opts := []api.Option{}
	if cfg.RateLimitRPS > 0 {
		a.limiter = ratelimit.NewClientLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		opts = append(opts, api.WithRateLimiter(a.limiter))
	}
	a.server = api.NewServer(service, categories, opts...)

	return a, nil
}

func (a *App) Categories() []news.Category {
	return a.categories
}

// Category looks up a configured category by name.
func (a *App) Category(name string) (news.Category, bool) {
	for _, c := range a.categories {
		if c.Name == name {
			return c, true
		}
	}
	return news.Category{}, false
}

// Fetch runs one category request the way the HTTP handler does.
func (a *App) Fetch(ctx context.Context, name string, f news.Filter) (api.Envelope, error) {
	cat, ok := a.Category(name)
	if !ok {
		return api.Envelope{}, fmt.Errorf("unknown category %q", name)
	}

	res, err := a.service.Items(ctx, cat, f.Fresh())
	if err != nil {
		return api.Envelope{}, err
	}
	return api.NewEnvelope(res, f), nil
}

func (a *App) Handler() http.Handler {
	return a.server.Router()
}

// Serve listens on the configured port until ctx is cancelled, then shuts
// down gracefully.
func (a *App) Serve(ctx context.Context) error {
	if !a.cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:         a.cfg.Addr(),
		Handler:      a.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: a.cfg.FeedTimeout*time.Duration(a.cfg.FeedRetryAttempts) + 15*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	if a.limiter != nil {
		go a.limiter.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "categories", len(a.categories))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listening on %s: %w", srv.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
