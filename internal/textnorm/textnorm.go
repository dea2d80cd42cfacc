// Package textnorm turns feed HTML fragments into clean single-line plain text.
package textnorm

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	tagRe = regexp.MustCompile(`<[^>]*>`)

	// "[…]", "[&hellip;]", "[...]" and the mis-decoded "[â€\u00a6]" read-more markers.
	readMoreRe = regexp.MustCompile(`(?i)\s*\[(?:\x{2026}|&hellip;|\.\.\.|â€\x{00a6})\]`)

	syndicationRe = regexp.MustCompile(`(?is)\s*The post\s+.*?appeared first on.*$`)
)

// mojibake maps UTF-8 punctuation that was decoded as Windows-1252 back to the intended rune.
var mojibake = strings.NewReplacer(
	"â€\u0153", "“",
	"â€\u009d", "”",
	"â€\u2019", "’",
	"â€\u2122", "’",
	"â€\u02dc", "‘",
	"â€\u201c", "–",
	"â€\u201d", "—",
	"â€\u00a6", "…",
	"â€\u00a0", " ",
)

// Normalize strips markup, decodes entities, collapses whitespace and removes
// feed boilerplate. It never fails; empty input yields "".
func Normalize(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}

	text := collapse(extractText(html))
	text = readMoreRe.ReplaceAllString(text, "")
	text = syndicationRe.ReplaceAllString(text, "")
	text = mojibake.Replace(text)

	return strings.TrimSpace(text)
}

func extractText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return tagRe.ReplaceAllString(html, " ")
	}
	return doc.Text()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
