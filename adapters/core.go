package adapters

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/viktorsistem/katalog/models"
)

// Core consumes already-rendered HTML handed in by the caller. Core's site
// sits behind a third-party translation widget that only fires in a real
// browser driven by the admin UI, so the rendered markup arrives from
// outside and the same extraction logic runs against a parsed document.
type Core struct {
	sourceURL string
	doc       *goquery.Document
	err       error
}

// NewCore builds the adapter from rendered HTML. Fetch is a no-op.
func NewCore(html, sourceURL string) *Core {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	return &Core{sourceURL: sourceURL, doc: doc, err: err}
}

func (c *Core) Fetch(ctx context.Context) error {
	return c.err
}

func (c *Core) ScrapeRaw() (*models.RawProduct, error) {
	if c.doc == nil {
		return nil, ErrNotFetched
	}

	images := c.extractImages()
	primary := ""
	if len(images) > 0 {
		primary = images[0]
	}

	return &models.RawProduct{
		Title:            c.extractTitle(),
		Description:      c.extractDescription(),
		OriginalCategory: "Core Akıllı Ev Sistemleri",
		RawImageURL:      primary,
		RawImages:        images,
		Specs:            map[string]string{},
		Features:         c.extractFeatures(),
		Downloads:        c.extractDownloads(),
		Videos:           c.extractVideos(),
		Variants:         c.extractVariants(),
		BaseURL:          c.sourceURL,
	}, nil
}

func (c *Core) extractTitle() string {
	if h1 := strings.TrimSpace(c.doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	if h2 := strings.TrimSpace(c.doc.Find("h2.fusion-title-heading, h2").First().Text()); h2 != "" {
		return h2
	}
	title := c.doc.Find("title").First().Text()
	if idx := strings.Index(title, "-"); idx >= 0 {
		title = title[:idx]
	}
	if title = strings.TrimSpace(title); title != "" {
		return title
	}
	return "Bilinmeyen Ürün"
}

func (c *Core) extractDescription() string {
	var parts []string
	c.doc.Find(".fusion-text p, .fusion-text").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if len(text) > 20 && !strings.Contains(text, "Specifications") && !strings.Contains(text, "Daha Fazla") {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, "\n\n")
}

func (c *Core) extractFeatures() []string {
	var features []string
	seen := make(map[string]struct{})
	c.doc.Find(".fusion-li-item-content, .fusion-checklist li, ul li").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if len(text) <= 5 || len(text) >= 150 || strings.Contains(text, "Cart") {
			return
		}
		if _, dup := seen[text]; dup {
			return
		}
		seen[text] = struct{}{}
		features = append(features, text)
	})
	return features
}

func (c *Core) extractDownloads() []models.Download {
	var downloads []models.Download
	seen := make(map[string]struct{})
	c.doc.Find(`a[href*=".pdf"]`).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || href == "" {
			return
		}
		if _, dup := seen[href]; dup {
			return
		}
		seen[href] = struct{}{}

		title := strings.Join(strings.Fields(s.Text()), " ")
		if title == "" {
			title = "Datasheet"
		}
		downloads = append(downloads, models.Download{Title: title, URL: href})
	})
	return downloads
}

func (c *Core) extractVideos() []string {
	var videos []string
	seen := make(map[string]struct{})
	c.doc.Find("iframe, video").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("src")
		if !ok || src == "" {
			src, _ = s.Attr("data-src")
		}
		if src == "" || !strings.Contains(src, "youtube.com") {
			return
		}
		// Keep a clean embed link.
		if idx := strings.Index(src, "?"); idx >= 0 {
			src = src[:idx]
		}
		if _, dup := seen[src]; dup {
			return
		}
		seen[src] = struct{}{}
		videos = append(videos, src)
	})
	return videos
}

// extractVariants is a best-effort heuristic: look for labelled finish/color
// text and split candidate names from the surrounding prose. The admin
// refines hex values later.
func (c *Core) extractVariants() []models.Variant {
	var variants []models.Variant
	c.doc.Find(".fusion-text ul li strong, .fusion-text p strong").Each(func(_ int, s *goquery.Selection) {
		label := strings.TrimSpace(s.Text())
		lower := strings.ToLower(label)
		if !strings.Contains(lower, "finish") && !strings.Contains(lower, "kaplama") && !strings.Contains(lower, "renk") {
			return
		}

		surrounding := strings.Replace(s.Parent().Text(), label, "", 1)
		group := strings.TrimSpace(strings.TrimSuffix(label, ":"))
		for _, candidate := range strings.Split(surrounding, ",") {
			name := strings.TrimSpace(strings.NewReplacer(":", "", ".", "").Replace(candidate))
			if len(name) <= 2 {
				continue
			}
			variants = append(variants, models.Variant{
				Group: group,
				Name:  name,
				Hex:   "#cccccc",
			})
		}
	})
	return variants
}

func (c *Core) extractImages() []string {
	var images []string
	seen := make(map[string]struct{})
	c.doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("data-src")
		if !ok || src == "" {
			src, _ = s.Attr("data-orig-src")
		}
		if src == "" {
			src, _ = s.Attr("src")
		}
		if src == "" || !strings.Contains(src, "uploads") || strings.Contains(src, "logo") {
			return
		}
		if _, dup := seen[src]; dup {
			return
		}
		seen[src] = struct{}{}
		images = append(images, src)
	})
	return images
}
