package news

import (
	"math"
	"strconv"
	"strings"
)

// Filter narrows a category's items for one request.
type Filter struct {
	Limit    int
	Sources  []string
	Keywords []string
}

// ParseFilter builds a filter from raw query values. The limit is read from its
// leading integer ("12abc" is 12, "5.5" is 5); without one it falls back to the
// category default. The result is clamped to [1, MaxLimit].
// Keywords are only honoured for categories that support them.
func ParseFilter(cat Category, limit, source, q string) Filter {
	f := Filter{
		Limit:   cat.DefaultLimit,
		Sources: SplitList(source),
	}
	if n, ok := leadingInt(limit); ok {
		f.Limit = n
	}
	f.Limit = clampLimit(f.Limit)

	if cat.Keywords {
		f.Keywords = SplitList(q)
	}
	return f
}

// leadingInt parses an optionally signed run of digits at the start of s,
// after leading whitespace. Values too large for an int saturate.
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		if s[0] == '-' {
			return math.MinInt, true
		}
		return math.MaxInt, true
	}
	return n, true
}

func clampLimit(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

// Fresh reports whether the filter needs a fresh pipeline run instead of the cache.
func (f Filter) Fresh() bool {
	return len(f.Keywords) > 0
}

// Apply filters items and returns the count after filtering along with the
// first Limit of them. Order is preserved.
func (f Filter) Apply(items []Item) (int, []Item) {
	var allowed map[string]bool
	if len(f.Sources) > 0 {
		allowed = make(map[string]bool, len(f.Sources))
		for _, s := range f.Sources {
			allowed[s] = true
		}
	}

	out := make([]Item, 0, len(items))
	for _, it := range items {
		if allowed != nil && !allowed[it.Source] {
			continue
		}
		if len(f.Keywords) > 0 && !it.Matches(f.Keywords) {
			continue
		}
		out = append(out, it)
	}

	total := len(out)
	limit := clampLimit(f.Limit)
	if len(out) > limit {
		out = out[:limit]
	}
	return total, out
}

// SplitList splits a comma-separated value, trimming entries and dropping empty ones.
func SplitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
