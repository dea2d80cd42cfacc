package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/deusflow/headlines/internal/config"
	"github.com/deusflow/headlines/internal/news"
)

type staticFetcher map[string][]news.Item

func (f staticFetcher) Fetch(_ context.Context, src news.Source, limit int) []news.Item {
	items := f[src.Name]
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.yaml")
	content := `categories:
  - name: tech
    keywords: true
    sources:
      - {name: Wired, url: http://wired.invalid/feed}
      - {name: CNET, url: http://cnet.invalid/feed}
  - name: business
    default_limit: 200
    sources:
      - {name: CNBC, url: http://cnbc.invalid/feed}
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	return &config.Config{
		Port:              "0",
		SourcesFile:       path,
		FeedTimeout:       time.Second,
		FeedRetryAttempts: 1,
		CacheTTL:          config.DefaultCacheTTL,
		SingleFlight:      true,
	}
}

func date(h int) *time.Time {
	t := time.Date(2024, 1, 1, h, 0, 0, 0, time.UTC)
	return &t
}

func TestFetchRunsCategoryLogic(t *testing.T) {
	fetcher := staticFetcher{
		"Wired": {
			{Title: "Old", URL: "https://wired.com/old", Date: date(1), Source: "Wired"},
			{Title: "Dup", URL: "https://cnet.com/x?utm=1", Date: date(5), Source: "Wired"},
		},
		"CNET": {
			{Title: "New", URL: "https://cnet.com/new", Date: date(9), Source: "CNET"},
			{Title: "Dup", URL: "https://cnet.com/x", Date: date(5), Source: "CNET"},
		},
	}

	a, err := New(testConfig(t), fetcher)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	env, err := a.Fetch(context.Background(), "tech", news.Filter{Limit: 10})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if env.Total != 3 {
		t.Fatalf("expected 3 items after dedupe, got %d", env.Total)
	}
	if env.Items[0].Title != "New" || env.Items[2].Title != "Old" {
		t.Errorf("unexpected order: %v", env.Items)
	}
	if env.Items[1].Source != "Wired" {
		t.Errorf("first occurrence should win, got %q", env.Items[1].Source)
	}

	env, err = a.Fetch(context.Background(), "tech", news.Filter{Limit: 10})
	if err != nil || !env.Cached {
		t.Errorf("second fetch should be cached, err=%v cached=%v", err, env.Cached)
	}

	if _, err := a.Fetch(context.Background(), "sports", news.Filter{Limit: 10}); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestCategoryLookup(t *testing.T) {
	a, err := New(testConfig(t), staticFetcher{})
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Categories()) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(a.Categories()))
	}
	cat, ok := a.Category("business")
	if !ok || cat.DefaultLimit != 200 {
		t.Errorf("business = %+v, %v", cat, ok)
	}
}

func TestHandlerRoutesCategories(t *testing.T) {
	a, err := New(testConfig(t), staticFetcher{})
	if err != nil {
		t.Fatal(err)
	}

	for _, target := range []string{"/api/tech", "/api/business", "/health", "/metrics"} {
		w := httptest.NewRecorder()
		a.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		if w.Code != http.StatusOK {
			t.Errorf("%s: status %d", target, w.Code)
		}
	}

	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sports", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown category: status %d", w.Code)
	}
}

func TestNewRejectsBadSources(t *testing.T) {
	cfg := testConfig(t)
	cfg.SourcesFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := New(cfg, staticFetcher{}); err == nil {
		t.Fatal("expected error for missing sources file")
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	a, err := New(testConfig(t), staticFetcher{})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- a.Serve(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
