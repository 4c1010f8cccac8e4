package ingest

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FirstImage returns the src of the first <img> in an HTML fragment, or ""
func FirstImage(fragment string) string {
	if fragment == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img[src]").First().Attr("src")
	return strings.TrimSpace(src)
}
