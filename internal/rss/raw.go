package rss

import (
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"

	"github.com/deusflow/headlines/internal/media"
)

// RawItem is the subset of a parsed feed entry the fetcher works with.
type RawItem struct {
	Title           string
	Link            string
	Published       string
	PublishedParsed *time.Time
	Content         string // <description> or Atom summary
	EncodedContent  string // content:encoded or Atom content
	Snippet         string // media:description, plain text
	Image           string // itunes:image
	Enclosure       *media.Ref
	MediaContent    []media.Ref
}

// fallback layouts for publish dates gofeed could not parse itself
var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
}

// fromGofeed maps a parsed entry. gofeed keeps <description> (Atom summary) in
// Description and content:encoded (Atom content) in Content; the summary is
// preferred as the body. Item.Image is not used because gofeed derives it from
// enclosures and media:content, which have their own place in the image chain.
func fromGofeed(item *gofeed.Item) RawItem {
	raw := RawItem{
		Title:           item.Title,
		Link:            item.Link,
		Published:       item.Published,
		PublishedParsed: item.PublishedParsed,
		Content:         item.Description,
		EncodedContent:  item.Content,
		Snippet:         extensionValue(item.Extensions, "media", "description"),
	}

	if item.ITunesExt != nil {
		raw.Image = strings.TrimSpace(item.ITunesExt.Image)
	}

	// RSS enclosures only carry url, length and type.
	if len(item.Enclosures) > 0 && item.Enclosures[0] != nil {
		enc := item.Enclosures[0]
		raw.Enclosure = &media.Ref{URL: enc.URL, Type: enc.Type}
	}

	raw.MediaContent = mediaContent(item.Extensions)
	return raw
}

func extensionValue(exts ext.Extensions, prefix, name string) string {
	if exts == nil {
		return ""
	}
	for _, e := range exts[prefix][name] {
		if v := strings.TrimSpace(e.Value); v != "" {
			return v
		}
	}
	return ""
}

// mediaContent collects media:content entries, including those nested in media:group.
func mediaContent(exts ext.Extensions) []media.Ref {
	if exts == nil {
		return nil
	}
	m, ok := exts["media"]
	if !ok {
		return nil
	}

	var refs []media.Ref
	for _, e := range m["content"] {
		refs = append(refs, refFromAttrs(e.Attrs))
	}
	for _, group := range m["group"] {
		for _, e := range group.Children["content"] {
			refs = append(refs, refFromAttrs(e.Attrs))
		}
	}
	return refs
}

func refFromAttrs(attrs map[string]string) media.Ref {
	return media.Ref{
		URL:    attrs["url"],
		Type:   attrs["type"],
		Medium: attrs["medium"],
	}
}

// PublishedAt returns the entry's publish time in UTC, or nil when it is
// missing or cannot be parsed.
func (r RawItem) PublishedAt() *time.Time {
	if r.PublishedParsed != nil {
		t := r.PublishedParsed.UTC()
		return &t
	}

	s := strings.TrimSpace(r.Published)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// Body returns the first present of content, encoded content and snippet.
func (r RawItem) Body() string {
	for _, s := range []string{r.Content, r.EncodedContent, r.Snippet} {
		if s != "" {
			return s
		}
	}
	return ""
}

func (r RawItem) mediaItem() media.Item {
	return media.Item{
		Image:     r.Image,
		Enclosure: r.Enclosure,
		Content:   r.MediaContent,
		Bodies:    []string{r.Content, r.EncodedContent, r.Snippet},
	}
}
