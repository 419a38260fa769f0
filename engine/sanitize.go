package engine

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SanitizeDescription strips the markup that must not reach the persisted
// description: inline <img> tags (gallery images live in images[], not in
// prose) and anchors left empty after upstream pruning. Everything else
// (<p>, <strong>, lists, ...) passes through untouched.
func SanitizeDescription(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}

	doc.Find("img").Remove()
	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		if strings.TrimSpace(a.Text()) == "" && a.Children().Length() == 0 {
			a.Remove()
		}
	})

	out, err := doc.Find("body").Html()
	if err != nil {
		return strings.TrimSpace(html)
	}
	return strings.TrimSpace(out)
}
