package adapters

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/viktorsistem/katalog/models"
)

const eaeOrigin = "https://eaetechnology.com"

// EAE scrapes eaetechnology.com product pages. The site has no semantic
// markup at all, so extraction leans on positional selectors that mirror
// the page builder's fixed layout. When they miss, the h3 fallback usually
// still lands on the product name.
type EAE struct {
	opts    models.ScrapeOptions
	fetcher *fetcher

	doc      *goquery.Document
	finalURL string
}

// NewEAE creates the EAE adapter.
func NewEAE(opts models.ScrapeOptions, timeout time.Duration) *EAE {
	return &EAE{opts: opts, fetcher: newFetcher(timeout)}
}

func (e *EAE) Fetch(ctx context.Context) error {
	body, finalURL, err := e.fetcher.get(ctx, e.opts.URL, chromeHeaders(e.opts.Headers))
	if err != nil {
		return err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return err
	}

	e.doc = doc
	e.finalURL = finalURL
	return nil
}

func (e *EAE) ScrapeRaw() (*models.RawProduct, error) {
	if e.doc == nil {
		return nil, ErrNotFetched
	}

	images := e.extractImages()
	primary := ""
	if len(images) > 0 {
		primary = images[0]
	}

	return &models.RawProduct{
		Title:            e.extractTitle(),
		Description:      e.extractDescription(),
		OriginalCategory: "KNX Dokunmatik Panel",
		RawImageURL:      primary,
		RawImages:        images,
		Specs:            map[string]string{},
		BaseURL:          e.finalURL,
	}, nil
}

// contentRoot is the page builder's product wrapper: the 9th direct child
// div of body, two div levels down.
func (e *EAE) contentRoot() *goquery.Selection {
	return e.doc.Find("body > div").Eq(8).ChildrenFiltered("div").ChildrenFiltered("div")
}

// descriptionBlocks are the free-text sections of the layout (children 5
// through 12 of the content root). Bounds are clamped so a shorter page
// yields an empty selection instead of a panic.
func (e *EAE) descriptionBlocks() *goquery.Selection {
	children := e.contentRoot().ChildrenFiltered("div")
	end := children.Length()
	if end > 13 {
		end = 13
	}
	if end <= 5 {
		return children.Slice(0, 0)
	}
	return children.Slice(5, end)
}

func (e *EAE) extractTitle() string {
	exact := strings.TrimSpace(e.contentRoot().ChildrenFiltered("div").Eq(2).Find("h3").Text())
	if exact != "" {
		return exact
	}
	return strings.TrimSpace(e.doc.Find("h3").First().Text())
}

func (e *EAE) extractDescription() string {
	var b strings.Builder
	e.descriptionBlocks().Each(func(_ int, block *goquery.Selection) {
		clone := block.Clone()
		clone.Find("img").Remove()
		h, err := clone.Html()
		if err != nil {
			return
		}
		if h = strings.TrimSpace(h); h != "" {
			b.WriteString("<div>")
			b.WriteString(h)
			b.WriteString("</div>")
		}
	})

	if b.Len() == 0 {
		return "<p>Ürün açıklaması bulunamadı.</p>"
	}
	return b.String()
}

func (e *EAE) extractImages() []string {
	var images []string
	seen := make(map[string]struct{})

	add := func(src string) {
		if src == "" || strings.Contains(src, "base64") {
			return
		}
		if !strings.HasPrefix(src, "http") {
			src = eaeOrigin + src
		}
		if _, dup := seen[src]; dup {
			return
		}
		seen[src] = struct{}{}
		images = append(images, src)
	}

	// Main image: the anchor wrapping the zoomable product shot. Prefer the
	// anchor's full-size href over the (possibly lazy) img src.
	mainAnchor := e.contentRoot().ChildrenFiltered("div").Eq(1).
		Find("div").Eq(0).Find("div").Eq(2).Find("div > a")
	if href, ok := mainAnchor.Attr("href"); ok && href != "" {
		add(href)
	} else {
		img := mainAnchor.Find("img")
		if src, ok := img.Attr("data-src"); ok && src != "" {
			add(src)
		} else if src, ok := img.Attr("src"); ok {
			add(src)
		}
	}

	e.descriptionBlocks().Find("img").Each(func(_ int, img *goquery.Selection) {
		if src, ok := img.Attr("data-src"); ok && src != "" {
			add(src)
			return
		}
		src, _ := img.Attr("src")
		add(src)
	})

	return images
}
