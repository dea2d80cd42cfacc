package news

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/deusflow/headlines/internal/logger"
	"github.com/deusflow/headlines/internal/metrics"
)

// ErrAggregation marks a failure of the pipeline itself rather than of a single source.
var ErrAggregation = errors.New("aggregation failed")

// Fetcher loads at most limit items from one source. Implementations absorb
// their own failures and return an empty slice instead.
type Fetcher interface {
	Fetch(ctx context.Context, src Source, limit int) []Item
}

type Aggregator struct {
	fetcher Fetcher
	metrics *metrics.Metrics
}

func NewAggregator(f Fetcher, m *metrics.Metrics) *Aggregator {
	if m == nil {
		m = metrics.Global
	}
	return &Aggregator{fetcher: f, metrics: m}
}

// Aggregate fetches every source concurrently, then deduplicates by canonical
// URL and sorts by date, newest first.
func (a *Aggregator) Aggregate(ctx context.Context, sources []Source, perSource int) (items []Item, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrAggregation, r)
		}
		a.metrics.RecordPipelineRun(time.Since(start))
		if err != nil {
			a.metrics.SetError(err.Error())
			return
		}
		a.metrics.SetLastRun()
	}()

	results := make([][]Item, len(sources))
	var g errgroup.Group
	for i, src := range sources {
		i, src := i, src
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: source %s: %v", ErrAggregation, src.Name, r)
				}
			}()
			results[i] = a.fetcher.Fetch(ctx, src, perSource)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []Item
	for _, r := range results {
		all = append(all, r...)
	}

	deduped := Dedupe(all)
	a.metrics.AddDuplicatesFiltered(len(all) - len(deduped))
	SortByDate(deduped)

	logger.Debug("aggregation finished",
		"sources", len(sources),
		"fetched", len(all),
		"kept", len(deduped),
		"duration", time.Since(start))

	return deduped, nil
}

// CanonicalKey returns origin + path for absolute URLs. ok is false when raw
// is not an absolute URL.
func CanonicalKey(raw string) (key string, ok bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}

	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port := u.Port(); port != "" && !isDefaultPort(scheme, port) {
		host += ":" + port
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return scheme + "://" + host + path, true
}

func isDefaultPort(scheme, port string) bool {
	return (scheme == "http" && port == "80") || (scheme == "https" && port == "443")
}

// Dedupe keeps the first item per canonical key. Items whose URL has no
// canonical key are always kept.
func Dedupe(items []Item) []Item {
	seen := make(map[string]struct{}, len(items))
	out := make([]Item, 0, len(items))
	for _, it := range items {
		key, ok := CanonicalKey(it.URL)
		if !ok {
			out = append(out, it)
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it)
	}
	return out
}

// SortByDate orders items newest first; undated items go last in their original order.
func SortByDate(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Date, items[j].Date
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}
