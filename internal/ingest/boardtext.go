package ingest

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

const maxBoardChars = 15000

var boardPolicy = bluemonday.UGCPolicy()

// PrepareBoardText reduces a fetched board page to plain text small enough
// for the extraction prompt: boilerplate elements are dropped, remaining
// markup is sanitized away, whitespace is collapsed and the result is
// truncated on a rune boundary.
func PrepareBoardText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return truncateRunes(normalizeSpace(boardPolicy.Sanitize(html)), maxBoardChars)
	}
	doc.Find("script, style, noscript, nav, header, footer, iframe, form").Remove()

	var b strings.Builder
	doc.Find("body").Each(func(_ int, s *goquery.Selection) {
		b.WriteString(s.Text())
		b.WriteString("\n")
	})
	text := b.String()
	if strings.TrimSpace(text) == "" {
		text = doc.Text()
	}

	// Keep table rows recognizable: board lists render as tables and the
	// extraction prompt relies on row grouping surviving.
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = normalizeSpace(boardPolicy.Sanitize(line))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return truncateRunes(strings.Join(lines, "\n"), maxBoardChars)
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
