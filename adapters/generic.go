package adapters

import (
	"context"
	nurl "net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/viktorsistem/katalog/models"
)

// Generic is the fallback adapter for vendors without a dedicated variant.
// It fetches with the full Chrome header fingerprint and extracts from
// conventional markup (h1, meta tags, breadcrumbs).
type Generic struct {
	opts    models.ScrapeOptions
	fetcher *fetcher

	doc      *goquery.Document
	html     string
	finalURL string
}

// NewGeneric creates the fallback adapter.
func NewGeneric(opts models.ScrapeOptions, timeout time.Duration) *Generic {
	return &Generic{opts: opts, fetcher: newFetcher(timeout)}
}

func (g *Generic) Fetch(ctx context.Context) error {
	body, finalURL, err := g.fetcher.get(ctx, g.opts.URL, chromeHeaders(g.opts.Headers))
	if err != nil {
		return err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return err
	}

	g.html = body
	g.doc = doc
	g.finalURL = finalURL
	return nil
}

func (g *Generic) ScrapeRaw() (*models.RawProduct, error) {
	if g.doc == nil {
		return nil, ErrNotFetched
	}

	return &models.RawProduct{
		Title:            g.extractTitle(),
		Description:      g.extractDescription(),
		OriginalCategory: g.extractOriginalCategory(),
		RawImageURL:      g.extractImage(),
		RawPDFURL:        g.extractPDF(),
		Specs:            map[string]string{},
		BaseURL:          g.finalURL,
	}, nil
}

func (g *Generic) extractTitle() string {
	if t := strings.TrimSpace(g.doc.Find("h1").First().Text()); t != "" {
		return t
	}
	return strings.TrimSpace(g.doc.Find("title").First().Text())
}

func (g *Generic) extractDescription() string {
	if content, ok := g.doc.Find(`meta[name="description"]`).Attr("content"); ok && content != "" {
		return content
	}

	// Unknown layouts: let readability find the main body before falling
	// back to the first paragraph.
	if pageURL, err := nurl.Parse(g.finalURL); err == nil {
		if article, err := readability.FromReader(strings.NewReader(g.html), pageURL); err == nil {
			if text := strings.TrimSpace(article.Excerpt); text != "" {
				return text
			}
		}
	}

	return strings.TrimSpace(g.doc.Find("p").First().Text())
}

func (g *Generic) extractImage() string {
	if src, ok := g.doc.Find(`meta[property="og:image"]`).Attr("content"); ok && src != "" {
		return src
	}
	src, _ := g.doc.Find("img").First().Attr("src")
	return src
}

func (g *Generic) extractPDF() string {
	href, _ := g.doc.Find(`a[href$=".pdf"]`).First().Attr("href")
	return href
}

func (g *Generic) extractOriginalCategory() string {
	if bc := strings.TrimSpace(g.doc.Find(".breadcrumb").First().Text()); bc != "" {
		return bc
	}
	return "General"
}
