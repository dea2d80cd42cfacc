package textnorm

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"blank", "   \n\t", ""},
		{"entity and read more", "<p>Hello &amp; world [&hellip;]</p>", "Hello & world"},
		{"plain ellipsis marker", "Some teaser text [...]", "Some teaser text"},
		{"unicode ellipsis marker", "Some teaser text […]", "Some teaser text"},
		{"marker case-insensitive", "Teaser [&HELLIP;]", "Teaser"},
		{"whitespace collapsed", "<div>  Multiple \n\n  spaces  </div>", "Multiple spaces"},
		{"nested tags", "<b>Bold</b> and <i>italic</i>", "Bold and italic"},
		{"syndication suffix", "Great article body. The post Great article appeared first on Example Blog.", "Great article body."},
		{"syndication suffix case-insensitive", "Body text the POST x APPEARED FIRST ON y", "Body text"},
		{"mojibake quotes", "â€\u0153quoted and itâ€\u2122s", "“quoted and it’s"},
		{"mojibake dashes", "2020â€\u201c2024 â€\u201d done", "2020–2024 — done"},
		{"mojibake ellipsis", "wait for itâ€\u00a6", "wait for it…"},
		{"mojibake read more marker", "Teaser [â€\u00a6]", "Teaser"},
		{"unmapped garbage kept", "Ã© stays", "Ã© stays"},
		{"malformed html", "<p>Unclosed <b>tag", "Unclosed tag"},
		{"plain text untouched", "No tags here", "No tags here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
