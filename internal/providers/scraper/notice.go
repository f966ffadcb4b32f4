package scraper

import (
	"strings"

	"github.com/antchfx/htmlquery"
)

// Notice returns the human-readable message of a resolver page, such as
// the explanation it prints instead of a file table. Empty when none.
func Notice(html string) string {
	doc, err := htmlquery.Parse(strings.NewReader(html))
	if err != nil {
		return ""
	}

	node := htmlquery.FindOne(doc, "//p[normalize-space()]")
	if node == nil {
		node = htmlquery.FindOne(doc, "//body")
	}
	if node == nil {
		return ""
	}

	return TruncateText(NormalizeWhitespace(htmlquery.InnerText(node)), MaxNoticeLength)
}
