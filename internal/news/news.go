package news

import (
	"strings"
	"time"
)

// MaxLimit is the largest number of items a single response may carry.
const MaxLimit = 200

// Source is a named remote feed.
type Source struct {
	Name    string `yaml:"name" json:"name"`
	URL     string `yaml:"url" json:"url"`
	Favicon string `yaml:"favicon,omitempty" json:"favicon,omitempty"`
}

// Item is one normalized feed entry. It has no identity beyond its URL.
type Item struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	Date        *time.Time `json:"date"`
	Source      string     `json:"source"`
	Image       *string    `json:"image"`
	Favicon     string     `json:"favicon,omitempty"`
}

// Category groups the sources served by one endpoint together with its defaults.
type Category struct {
	Name         string
	Sources      []Source
	PerSource    int  // items taken from each source
	DefaultLimit int  // response size when the client gives no limit
	Keywords     bool // whether the q filter is honoured
	ErrorMessage string
}

// SourceNames lists the category's source names in configured order.
func (c Category) SourceNames() []string {
	names := make([]string, 0, len(c.Sources))
	for _, s := range c.Sources {
		names = append(names, s.Name)
	}
	return names
}

// Matches reports whether the title or description contains any keyword, ignoring case.
func (it Item) Matches(keywords []string) bool {
	title := strings.ToLower(it.Title)
	desc := strings.ToLower(it.Description)
	for _, k := range keywords {
		k = strings.ToLower(k)
		if k == "" {
			continue
		}
		if strings.Contains(title, k) || strings.Contains(desc, k) {
			return true
		}
	}
	return false
}
