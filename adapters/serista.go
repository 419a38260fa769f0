package adapters

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/viktorsistem/katalog/models"
)

const seristaOrigin = "https://serista.com.tr"

// Serista scrapes serista.com.tr (WooCommerce).
//
// The Serista CDN has an anomaly: when it sees a full Chrome header
// fingerprint (Sec-Fetch-*, Accept lists, ...) it serves EAE Teknoloji's
// HTML instead of Serista's. This is almost certainly a misconfiguration on
// their side, not a contract; the workaround lives only here so it can be
// dropped without touching the other adapters. Send User-Agent and nothing
// else.
type Serista struct {
	opts    models.ScrapeOptions
	fetcher *fetcher

	doc      *goquery.Document
	finalURL string
}

// NewSerista creates the Serista adapter.
func NewSerista(opts models.ScrapeOptions, timeout time.Duration) *Serista {
	return &Serista{opts: opts, fetcher: newFetcher(timeout)}
}

func (s *Serista) Fetch(ctx context.Context) error {
	body, finalURL, err := s.fetcher.get(ctx, s.opts.URL, map[string]string{
		"User-Agent": "Mozilla/5.0",
	})
	if err != nil {
		return err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return err
	}

	s.doc = doc
	s.finalURL = finalURL
	return nil
}

func (s *Serista) ScrapeRaw() (*models.RawProduct, error) {
	if s.doc == nil {
		return nil, ErrNotFetched
	}

	images := s.extractImages()
	primary := ""
	if len(images) > 0 {
		primary = images[0]
	}

	return &models.RawProduct{
		Title:            s.extractTitle(),
		Description:      s.extractDescription(),
		OriginalCategory: s.extractOriginalCategory(),
		RawImageURL:      primary,
		RawImages:        images,
		Specs:            map[string]string{},
		BaseURL:          s.finalURL,
	}, nil
}

func (s *Serista) extractTitle() string {
	if t := strings.TrimSpace(s.doc.Find("h1.product_title").Text()); t != "" {
		return t
	}
	return strings.TrimSpace(s.doc.Find("h1").First().Text())
}

func (s *Serista) extractDescription() string {
	shortDesc := htmlOrEmpty(s.doc.Find(".woocommerce-product-details__short-description").First())
	fullDesc := htmlOrEmpty(s.doc.Find("#tab-description").First())

	switch {
	case shortDesc != "" && fullDesc != "":
		return `<div class="short-desc">` + shortDesc + `</div><div class="full-desc">` + fullDesc + `</div>`
	case fullDesc != "":
		return fullDesc
	case shortDesc != "":
		return shortDesc
	default:
		return "<p>Ürün açıklaması bulunamadı.</p>"
	}
}

// extractImages collects the product gallery plus any inline images inside
// the description tabs. Non-product assets (logos, tracking pixels) never
// live under wp uploads, so the path filter cuts them out.
func (s *Serista) extractImages() []string {
	var images []string
	seen := make(map[string]struct{})

	sel := ".woocommerce-product-gallery__image img, .wp-post-image, #slider img, figure img, " +
		"#tab-description img, .woocommerce-Tabs-panel--description img, " +
		".woocommerce-product-details__short-description img"

	s.doc.Find(sel).Each(func(_ int, img *goquery.Selection) {
		src, ok := img.Attr("data-large_image")
		if !ok || src == "" {
			src, _ = img.Attr("src")
		}
		if src == "" || !strings.Contains(src, "uploads") {
			return
		}
		if !strings.HasPrefix(src, "http") {
			src = seristaOrigin + src
		}
		if _, dup := seen[src]; dup {
			return
		}
		seen[src] = struct{}{}
		images = append(images, src)
	})

	return images
}

func (s *Serista) extractOriginalCategory() string {
	if cat := strings.TrimSpace(s.doc.Find(".posted_in a").First().Text()); cat != "" {
		return cat
	}
	if bc := strings.TrimSpace(s.doc.Find(".woocommerce-breadcrumb a").Last().Text()); bc != "" {
		return bc
	}
	return "Unknown"
}

// htmlOrEmpty returns the inner HTML of a selection, or "" when the
// selection is empty or unreadable.
func htmlOrEmpty(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	h, err := sel.Html()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(h)
}
