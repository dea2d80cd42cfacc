package rss

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/deusflow/headlines/internal/news"
)

//go:embed default_sources.yaml
var defaultSources []byte

// SourcesConfig is the YAML layout of the category file:
//
//	categories:
//	  - name: tech
//	    per_source: 6
//	    sources:
//	      - name: Wired
//	        url: https://www.wired.com/feed/rss
type SourcesConfig struct {
	Categories []CategoryConfig `yaml:"categories"`
}

type CategoryConfig struct {
	Name         string        `yaml:"name"`
	PerSource    int           `yaml:"per_source"`
	DefaultLimit int           `yaml:"default_limit"`
	Keywords     bool          `yaml:"keywords"`
	ErrorMessage string        `yaml:"error_message"`
	Sources      []news.Source `yaml:"sources"`
}

const (
	defaultPerSource    = 6
	defaultLimit        = 100
	defaultErrorMessage = "Aggregation failed"
)

// LoadCategories reads categories from path, or the built-in list when path is empty.
func LoadCategories(path string) ([]news.Category, error) {
	if path == "" {
		return ParseCategories(defaultSources)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sources file: %w", err)
	}
	return ParseCategories(data)
}

// ParseCategories decodes and validates a category file, filling in defaults.
func ParseCategories(data []byte) ([]news.Category, error) {
	var cfg SourcesConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decoding sources: %w", err)
	}
	if len(cfg.Categories) == 0 {
		return nil, fmt.Errorf("no categories configured")
	}

	seen := make(map[string]bool, len(cfg.Categories))
	categories := make([]news.Category, 0, len(cfg.Categories))
	for _, c := range cfg.Categories {
		cat, err := c.toCategory()
		if err != nil {
			return nil, err
		}
		if seen[cat.Name] {
			return nil, fmt.Errorf("duplicate category %q", cat.Name)
		}
		seen[cat.Name] = true
		categories = append(categories, cat)
	}
	return categories, nil
}

func (c CategoryConfig) toCategory() (news.Category, error) {
	name := strings.ToLower(strings.TrimSpace(c.Name))
	if name == "" {
		return news.Category{}, fmt.Errorf("category without a name")
	}

	cat := news.Category{
		Name:         name,
		PerSource:    c.PerSource,
		DefaultLimit: c.DefaultLimit,
		Keywords:     c.Keywords,
		ErrorMessage: c.ErrorMessage,
	}
	if cat.PerSource <= 0 {
		cat.PerSource = defaultPerSource
	}
	if cat.DefaultLimit <= 0 {
		cat.DefaultLimit = defaultLimit
	}
	if cat.DefaultLimit > news.MaxLimit {
		cat.DefaultLimit = news.MaxLimit
	}
	if cat.ErrorMessage == "" {
		cat.ErrorMessage = defaultErrorMessage
	}

	names := make(map[string]bool, len(c.Sources))
	for i, src := range c.Sources {
		src.Name = strings.TrimSpace(src.Name)
		src.URL = strings.TrimSpace(src.URL)
		if src.Name == "" || src.URL == "" {
			return news.Category{}, fmt.Errorf("category %s: source #%d needs a name and a url", name, i+1)
		}
		if names[src.Name] {
			return news.Category{}, fmt.Errorf("category %s: duplicate source %q", name, src.Name)
		}
		names[src.Name] = true
		cat.Sources = append(cat.Sources, src)
	}
	if len(cat.Sources) == 0 {
		return news.Category{}, fmt.Errorf("category %s has no sources", name)
	}
	return cat, nil
}
