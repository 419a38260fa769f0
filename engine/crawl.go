package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/viktorsistem/katalog/browser"
	"github.com/viktorsistem/katalog/models"
)

const (
	productLinkSelector  = ".product-container-row .content-box-image a"
	fallbackLinkSelector = `.content-box a[href*="/urunler/"]`
	paginationSelector   = ".page-link"
)

// DetectCategoryPages opens a category listing, reads how many pages its
// pagination exposes and collects the product links of the first page. The
// query string of the input URL is dropped so the count always reflects
// page one.
func (e *Engine) DetectCategoryPages(ctx context.Context, categoryURL string, cookies []models.Cookie) (*models.PageDetection, error) {
	u, err := url.Parse(categoryURL)
	if err != nil || !u.IsAbs() {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput, fmt.Sprintf("invalid category url %q", categoryURL), err)
	}
	u.RawQuery = ""
	u.Fragment = ""

	doc, err := e.openListing(ctx, u, cookies)
	if err != nil {
		return nil, err
	}

	total := maxPageNumber(doc)
	links := productLinks(doc, u)

	slog.Info("category detected", "url", u.String(), "pages", total, "firstPageProducts", len(links))
	return &models.PageDetection{TotalPages: total, FirstPageURLs: links}, nil
}

// CollectPageURLs enumerates the page URLs of a paginated category by
// appending ?page=N for pages two and up.
func CollectPageURLs(categoryURL string, totalPages int) []string {
	u, err := url.Parse(categoryURL)
	if err != nil {
		return []string{categoryURL}
	}
	u.RawQuery = ""
	u.Fragment = ""

	pages := []string{u.String()}
	for n := 2; n <= totalPages; n++ {
		pu := *u
		pu.RawQuery = "page=" + strconv.Itoa(n)
		pages = append(pages, pu.String())
	}
	return pages
}

// CollectProductURLs opens one listing page and returns its product links.
func (e *Engine) CollectProductURLs(ctx context.Context, pageURL string, cookies []models.Cookie) ([]string, error) {
	u, err := url.Parse(pageURL)
	if err != nil || !u.IsAbs() {
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput, fmt.Sprintf("invalid page url %q", pageURL), err)
	}

	doc, err := e.openListing(ctx, u, cookies)
	if err != nil {
		return nil, err
	}
	return productLinks(doc, u), nil
}

// openListing drives a desktop page to a listing URL and returns the
// rendered document. Listings lazy-load their grid, so after navigation the
// page is scrolled a few times before the HTML is read out.
func (e *Engine) openListing(ctx context.Context, u *url.URL, cookies []models.Cookie) (*goquery.Document, error) {
	session, err := e.sessions.Session()
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInternal, "browser session unavailable", err)
	}

	page, err := session.NewPage(browser.DesktopPage(u.String(), cookies))
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeFetch, "could not open listing page", err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			slog.Warn("listing page close failed", "error", err)
		}
	}()

	page = page.Context(ctx).Timeout(e.cfg.NavTimeout)
	if err := page.Navigate(u.String()); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeFetch,
			fmt.Sprintf("listing navigation failed for %q", u.String()), err)
	}
	if err := page.WaitLoad(); err != nil {
		slog.Warn("listing load never fired, reading anyway", "url", u.String(), "error", err)
	}
	if err := page.WaitDOMStable(time.Second, 0.1); err != nil {
		slog.Warn("listing page never settled, reading anyway", "url", u.String(), "error", err)
	}

	for i := 0; i < 5; i++ {
		if _, err := page.Eval(`() => window.scrollBy(0, 600)`); err != nil {
			break
		}
		time.Sleep(300 * time.Millisecond)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeExtraction, "could not read listing page", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeExtraction, "could not parse listing page", err)
	}
	return doc, nil
}

// ScrapeCategory crawls a whole category: detect the page count, walk every
// listing page collecting product links, dedupe, then scrape each product
// through the single-URL path.
func (e *Engine) ScrapeCategory(ctx context.Context, categoryURL string, brand models.Brand, cookies []models.Cookie, categoryOverride, subCategoryOverride string) ([]models.ItemResult, error) {
	detection, err := e.DetectCategoryPages(ctx, categoryURL, cookies)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(detection.FirstPageURLs))
	var products []string
	add := func(urls []string) {
		for _, u := range urls {
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			products = append(products, u)
		}
	}

	add(detection.FirstPageURLs)
	for _, pageURL := range CollectPageURLs(categoryURL, detection.TotalPages)[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		urls, err := e.CollectProductURLs(ctx, pageURL, cookies)
		if err != nil {
			slog.Warn("category page collection failed, skipping", "page", pageURL, "error", err)
			continue
		}
		add(urls)
	}

	slog.Info("category crawl collected", "url", categoryURL, "pages", detection.TotalPages, "products", len(products))
	return e.ScrapeBulk(ctx, products, brand, categoryOverride, subCategoryOverride), nil
}

// ScrapeBulk scrapes a list of product URLs sequentially, pacing itself
// with the crawl limiter. Cancellation is honored between items; items
// already scraped keep their results. Failed items are reported, never
// retried automatically.
func (e *Engine) ScrapeBulk(ctx context.Context, urls []string, brand models.Brand, categoryOverride, subCategoryOverride string) []models.ItemResult {
	results := make([]models.ItemResult, 0, len(urls))

	for i, target := range urls {
		if err := ctx.Err(); err != nil {
			slog.Warn("bulk scrape cancelled", "done", i, "remaining", len(urls)-i)
			break
		}
		if err := e.limiter.Wait(ctx); err != nil {
			slog.Warn("bulk scrape cancelled while pacing", "done", i, "remaining", len(urls)-i)
			break
		}

		item := e.ScrapeSingleProduct(ctx, ScrapeRequest{
			URL:                 target,
			Brand:               brand,
			CategoryOverride:    categoryOverride,
			SubCategoryOverride: subCategoryOverride,
		})
		results = append(results, item)
		slog.Info("bulk item finished", "index", i+1, "total", len(urls), "url", target, "success", item.Success)
	}

	return results
}

// maxPageNumber reads the pagination widget and returns the highest page
// number it shows, defaulting to one. Non-numeric entries (the next/prev
// arrows share the same class) are skipped.
func maxPageNumber(doc *goquery.Document) int {
	total := 1
	doc.Find(paginationSelector).Each(func(_ int, s *goquery.Selection) {
		if n, err := strconv.Atoi(strings.TrimSpace(s.Text())); err == nil && n > total {
			total = n
		}
	})
	return total
}

// productLinks collects the product anchors of a listing page, in document
// order, resolved to absolute URLs and deduplicated.
func productLinks(doc *goquery.Document, base *url.URL) []string {
	sel := doc.Find(productLinkSelector)
	if sel.Length() == 0 {
		sel = doc.Find(fallbackLinkSelector)
	}

	seen := make(map[string]struct{}, sel.Length())
	var links []string
	sel.Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || href == "" {
			return
		}
		resolved, err := base.Parse(href)
		if err != nil {
			return
		}
		link := resolved.String()
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})
	return links
}
