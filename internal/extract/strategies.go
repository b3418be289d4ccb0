package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Abstract extraction is a cascade of independent strategies; the first one
// that yields non-empty text wins. Paper page templates are not uniform, so
// every strategy is best effort and a total miss just leaves the abstract
// unset.

// abstractSelectors are tried in priority order against the parsed page.
var abstractSelectors = []string{
	"div.page-header__intro",
	"div.page-header__intro--centered",
	"div.abstract-content",
	"div.abstract",
	`div[class*="abstract"]`,
	"p.abstract",
	"section.abstract",
}

var (
	reAbstractLabel = regexp.MustCompile(`(?i)^Abstract:?\s*`)
	reWhitespace    = regexp.MustCompile(`\s+`)
	// Bounded to 100-2000 chars so boilerplate mentions of the word
	// "abstract" don't produce garbage captures. RE2 caps a single repeat
	// count at 1000, so the 100-2000 bound is spelled as two repeats.
	reAbstractText = regexp.MustCompile(`(?is)Abstract:?\s*(.{100,1000}?.{0,1000}?)(?:\n\n|\r\n\r\n|JEL|Keywords|$)`)
)

// metaContent returns the trimmed content attribute of the first matching
// <meta name=...> tag, or "".
func metaContent(doc *goquery.Document, name string) string {
	sel := doc.Find(`meta[name="` + name + `"]`).First()
	content, _ := sel.Attr("content")
	return strings.TrimSpace(content)
}

// metaContents returns the trimmed content attributes of every matching
// <meta name=...> tag, preserving document order and skipping empties.
func metaContents(doc *goquery.Document, name string) []string {
	out := []string{}
	doc.Find(`meta[name="` + name + `"]`).Each(func(_ int, sel *goquery.Selection) {
		if content, ok := sel.Attr("content"); ok {
			if trimmed := strings.TrimSpace(content); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	})
	return out
}

// abstractFromSelectors walks the selector cascade and returns the first
// non-empty cleaned text.
func abstractFromSelectors(doc *goquery.Document) string {
	for _, selector := range abstractSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if text := cleanAbstract(sel.Text()); text != "" {
			return text
		}
	}
	return ""
}

// abstractFromText searches the page's visible text for an "Abstract" run
// terminated by a paragraph break or a JEL/Keywords marker.
func abstractFromText(doc *goquery.Document) string {
	container := doc.Find("main").First()
	if container.Length() == 0 {
		container = doc.Find("body").First()
	}
	if container.Length() == 0 {
		return ""
	}
	match := reAbstractText.FindStringSubmatch(container.Text())
	if match == nil {
		return ""
	}
	return strings.TrimSpace(match[1])
}

// cleanAbstract strips a leading "Abstract:" label and collapses internal
// whitespace runs to single spaces.
func cleanAbstract(text string) string {
	text = strings.TrimSpace(text)
	text = reAbstractLabel.ReplaceAllString(text, "")
	text = reWhitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
