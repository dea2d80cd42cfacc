// Package media picks a representative image URL for a feed entry.
package media

import (
	"regexp"
	"strings"
)

// Ref is an enclosure or media:content reference. Medium is only meaningful
// for media:content; enclosures are matched on Type.
type Ref struct {
	URL    string
	Type   string
	Medium string
}

func (r Ref) hasImageType() bool {
	return r.URL != "" && strings.HasPrefix(strings.ToLower(r.Type), "image/")
}

func (r Ref) isImage() bool {
	return r.hasImageType() || (r.URL != "" && strings.EqualFold(r.Medium, "image"))
}

// Item holds the image-bearing fields of one raw feed entry.
type Item struct {
	Image     string
	Enclosure *Ref
	Content   []Ref
	// Bodies are HTML fragments in preference order: content, encoded content, snippet.
	Bodies []string
}

var imgSrcRe = regexp.MustCompile(`(?i)<img[^>]+src\s*=\s*["']([^"']+)["']`)

// ResolveImage returns the first image found by, in order: the direct image
// field, an enclosure typed image/*, the first image media:content entry, and
// the first <img src> in the HTML body. It returns "" when nothing matches.
func ResolveImage(it Item) string {
	if it.Image != "" {
		return it.Image
	}

	if it.Enclosure != nil && it.Enclosure.hasImageType() {
		return it.Enclosure.URL
	}

	for _, ref := range it.Content {
		if ref.isImage() {
			return ref.URL
		}
	}

	return firstImgSrc(firstBody(it.Bodies))
}

func firstBody(bodies []string) string {
	for _, b := range bodies {
		if b != "" {
			return b
		}
	}
	return ""
}

func firstImgSrc(html string) string {
	if html == "" {
		return ""
	}
	m := imgSrcRe.FindStringSubmatch(html)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}
