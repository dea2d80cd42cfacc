package rss

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/deusflow/headlines/internal/logger"
	"github.com/deusflow/headlines/internal/media"
	"github.com/deusflow/headlines/internal/metrics"
	"github.com/deusflow/headlines/internal/news"
	"github.com/deusflow/headlines/internal/retry"
	"github.com/deusflow/headlines/internal/textnorm"
)

// Parser is the part of gofeed.Parser the fetcher depends on.
type Parser interface {
	ParseURLWithContext(feedURL string, ctx context.Context) (*gofeed.Feed, error)
}

// Fetcher downloads one feed and maps its entries to news items.
type Fetcher struct {
	parser  Parser
	timeout time.Duration
	retry   retry.RetryConfig
	metrics *metrics.Metrics
}

type FetcherOption func(*Fetcher)

func WithParser(p Parser) FetcherOption {
	return func(f *Fetcher) {
		f.parser = p
	}
}

func WithTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

func WithRetry(attempts int, delay time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.retry = retry.RetryConfig{MaxAttempts: attempts, Delay: delay, Backoff: true}
	}
}

func WithMetrics(m *metrics.Metrics) FetcherOption {
	return func(f *Fetcher) {
		f.metrics = m
	}
}

// NewFetcher builds a gofeed-backed fetcher. userAgent may be empty.
func NewFetcher(userAgent string, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		timeout: 15 * time.Second,
		retry:   retry.RetryConfig{MaxAttempts: 1},
		metrics: metrics.Global,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.parser == nil {
		p := gofeed.NewParser()
		p.Client = &http.Client{Timeout: f.timeout}
		if userAgent != "" {
			p.UserAgent = userAgent
		}
		f.parser = p
	}
	return f
}

// Fetch returns up to limit items from src in feed order. Any failure is
// logged and yields an empty slice.
func (f *Fetcher) Fetch(ctx context.Context, src news.Source, limit int) []news.Item {
	if limit < 1 {
		limit = 1
	}

	raw, err := f.FetchRaw(ctx, src.URL)
	if err != nil {
		f.metrics.IncrementFeedFailures()
		logger.Warn("feed fetch failed", "source", src.Name, "url", src.URL, "error", err)
		return []news.Item{}
	}

	if len(raw) > limit {
		raw = raw[:limit]
	}

	items := make([]news.Item, 0, len(raw))
	for _, r := range raw {
		items = append(items, Normalize(r, src))
	}

	f.metrics.IncrementFeedsFetched(len(items))
	logger.Debug("feed fetched", "source", src.Name, "items", len(items))
	return items
}

// FetchRaw downloads and parses feedURL, retrying per the fetcher's policy.
func (f *Fetcher) FetchRaw(ctx context.Context, feedURL string) ([]RawItem, error) {
	var feed *gofeed.Feed
	err := retry.WithRetry(ctx, f.retry, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
		defer cancel()

		parsed, err := f.parser.ParseURLWithContext(feedURL, attemptCtx)
		if err != nil {
			return err
		}
		feed = parsed
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", feedURL, err)
	}

	raw := make([]RawItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		raw = append(raw, fromGofeed(item))
	}
	return raw, nil
}

// Normalize maps one raw entry to a news item attributed to src.
func Normalize(r RawItem, src news.Source) news.Item {
	it := news.Item{
		Title:       textnorm.Normalize(r.Title),
		Description: textnorm.Normalize(r.Body()),
		URL:         r.Link,
		Date:        r.PublishedAt(),
		Source:      src.Name,
		Favicon:     src.Favicon,
	}
	if img := media.ResolveImage(r.mediaItem()); img != "" {
		it.Image = &img
	}
	return it
}
