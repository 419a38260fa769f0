// Package engine orchestrates a scrape: adapter selection, fetch, extract,
// asset resolution and download, category normalization, record assembly,
// and the upsert into the record store. No step past the public boundary
// ever raises an error to the caller; failures become result values.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/viktorsistem/katalog/adapters"
	"github.com/viktorsistem/katalog/assets"
	"github.com/viktorsistem/katalog/browser"
	"github.com/viktorsistem/katalog/catmap"
	"github.com/viktorsistem/katalog/config"
	"github.com/viktorsistem/katalog/models"
	"github.com/viktorsistem/katalog/store"
)

// AssetDownloader is the slice of assets.Downloader the engine needs.
// Narrowed to an interface so tests can fake downloads.
type AssetDownloader interface {
	Download(ctx context.Context, rawURL string, kind assets.Kind) (string, error)
}

// ScrapeRequest is the input to the single-URL contract.
type ScrapeRequest struct {
	URL                 string              `json:"url"`
	Brand               models.Brand        `json:"brand"`
	Headers             map[string]string   `json:"headers,omitempty"`
	Cookies             []models.Cookie     `json:"cookies,omitempty"`
	CategoryOverride    string              `json:"categoryOverride,omitempty"`
	SubCategoryOverride string              `json:"subCategoryOverride,omitempty"`
}

// Engine drives the scraping pipeline. Safe for concurrent use; concurrent
// scrapes share one browser session and serialize upserts per sourceURL.
type Engine struct {
	store    store.Store
	download AssetDownloader
	norm     *catmap.Normalizer
	sessions *browser.Manager
	cfg      config.ScraperConfig

	limiter *rate.Limiter
	upserts keyedMutex
}

// New creates an Engine.
func New(st store.Store, dl AssetDownloader, norm *catmap.Normalizer, sessions *browser.Manager, cfg config.ScraperConfig) *Engine {
	delay := cfg.CrawlDelay
	if delay <= 0 {
		delay = time.Second
	}
	return &Engine{
		store:    st,
		download: dl,
		norm:     norm,
		sessions: sessions,
		cfg:      cfg,
		limiter:  rate.NewLimiter(rate.Every(delay), 1),
	}
}

// Scrape runs the full pipeline for a single product URL and returns a
// structured result. It never panics and never returns an error: every
// failure mode lands in the result's message.
func (e *Engine) Scrape(ctx context.Context, req ScrapeRequest) models.ScrapeResult {
	if strings.TrimSpace(req.URL) == "" {
		return failure("url is required")
	}
	if _, err := url.ParseRequestURI(req.URL); err != nil {
		return failure(fmt.Sprintf("invalid url %q: %v", req.URL, err))
	}

	slog.Info("scrape starting", "brand", req.Brand, "url", req.URL)

	adapter, err := e.selectAdapter(req)
	if err != nil {
		return failure(err.Error())
	}

	if err := adapter.Fetch(ctx); err != nil {
		slog.Warn("scrape fetch failed", "url", req.URL, "error", err)
		if se, ok := err.(*models.ScrapeError); ok {
			return failure(se.Message)
		}
		return failure(fmt.Sprintf("fetch failed: %v", err))
	}

	raw, err := adapter.ScrapeRaw()
	if err != nil {
		return failure(fmt.Sprintf("extraction failed: %v", err))
	}

	return e.finish(ctx, req, raw)
}

// ScrapeHTML runs pipeline steps 3-8 against already-rendered markup. Used
// when the caller performed its own browser automation (e.g. to trigger a
// translation widget) and hands the resulting HTML over.
func (e *Engine) ScrapeHTML(ctx context.Context, html, sourceURL string, brand models.Brand, categoryOverride, subCategoryOverride string) models.ScrapeResult {
	if strings.TrimSpace(html) == "" {
		return failure("html is required")
	}
	if strings.TrimSpace(sourceURL) == "" {
		return failure("sourceUrl is required")
	}

	adapter := adapters.NewCore(html, sourceURL)
	if err := adapter.Fetch(ctx); err != nil {
		return failure(fmt.Sprintf("parse failed: %v", err))
	}
	raw, err := adapter.ScrapeRaw()
	if err != nil {
		return failure(fmt.Sprintf("extraction failed: %v", err))
	}

	req := ScrapeRequest{
		URL:                 sourceURL,
		Brand:               brand,
		CategoryOverride:    categoryOverride,
		SubCategoryOverride: subCategoryOverride,
	}
	return e.finish(ctx, req, raw)
}

// ScrapeSingleProduct wraps Scrape into the compact shape the bulk importer
// consumes.
func (e *Engine) ScrapeSingleProduct(ctx context.Context, req ScrapeRequest) models.ItemResult {
	result := e.Scrape(ctx, req)
	item := models.ItemResult{
		URL:     req.URL,
		Success: result.Success,
		Message: result.Message,
	}
	if result.Data != nil {
		item.Name = result.Data.Name
	}
	return item
}

// selectAdapter picks the vendor strategy. The URL pattern wins over the
// declared brand: serista.com.tr pages must use the minimal-header adapter
// no matter what brand the admin typed, or the CDN serves the wrong site.
func (e *Engine) selectAdapter(req ScrapeRequest) (adapters.Adapter, error) {
	opts := models.ScrapeOptions{
		URL:     req.URL,
		Brand:   req.Brand,
		Headers: req.Headers,
		Cookies: req.Cookies,
	}

	host := ""
	if u, err := url.Parse(req.URL); err == nil {
		host = strings.ToLower(u.Hostname())
	}

	switch {
	case strings.HasSuffix(host, "serista.com.tr"):
		return adapters.NewSerista(opts, e.cfg.FetchTimeout), nil
	case strings.HasSuffix(host, "eaetechnology.com"):
		return adapters.NewEAE(opts, e.cfg.FetchTimeout), nil
	}

	switch req.Brand {
	case "Interra":
		session, err := e.sessions.Session()
		if err != nil {
			return nil, fmt.Errorf("browser session unavailable: %w", err)
		}
		return adapters.NewInterra(opts, session, e.cfg), nil
	case "EAE":
		return adapters.NewEAE(opts, e.cfg.FetchTimeout), nil
	default:
		return adapters.NewGeneric(opts, e.cfg.FetchTimeout), nil
	}
}

// finish runs the shared tail of the pipeline: title check, asset
// resolution and download, category normalization, record build, upsert.
func (e *Engine) finish(ctx context.Context, req ScrapeRequest, raw *models.RawProduct) models.ScrapeResult {
	if strings.TrimSpace(raw.Title) == "" {
		slog.Warn("scrape extracted no title", "url", req.URL)
		return failure("product title not found: the page was reachable but its layout may have changed")
	}

	product := e.buildProduct(ctx, req, raw)

	if err := e.upsert(ctx, product); err != nil {
		perr := models.NewScrapeError(models.ErrCodePersistence, "scrape succeeded but the record was not saved", err)
		slog.Error("scrape persisted nothing", "url", req.URL, "error", perr)
		return failure(perr.Error())
	}

	slog.Info("scrape complete", "id", product.ID, "name", product.Name, "category", product.Category)
	return models.ScrapeResult{Success: true, Message: "scraped successfully", Data: product}
}

// buildProduct assembles the persisted record from raw adapter output.
// Asset downloads are individually best-effort: a dead image never sinks
// the scrape.
func (e *Engine) buildProduct(ctx context.Context, req ScrapeRequest, raw *models.RawProduct) *models.Product {
	base := e.resolveBase(raw.BaseURL, req.URL)

	imagePath := models.PlaceholderImage
	if resolved := resolveRef(base, raw.RawImageURL); resolved != "" {
		if local, err := e.download.Download(ctx, resolved, assets.KindImage); err != nil {
			slog.Warn("primary image download failed", "url", resolved, "error", err)
		} else {
			imagePath = local
		}
	}

	var gallery []string
	for _, img := range raw.RawImages {
		resolved := resolveRef(base, img)
		if resolved == "" {
			continue
		}
		local, err := e.download.Download(ctx, resolved, assets.KindImage)
		if err != nil {
			slog.Warn("gallery image download failed", "url", resolved, "error", err)
			continue
		}
		gallery = append(gallery, local)
	}

	datasheet := ""
	if resolved := resolveRef(base, raw.RawPDFURL); resolved != "" {
		if local, err := e.download.Download(ctx, resolved, assets.KindPDF); err != nil {
			slog.Warn("datasheet download failed", "url", resolved, "error", err)
		} else {
			datasheet = local
		}
	}

	var downloads []models.Download
	for _, d := range raw.Downloads {
		resolved := resolveRef(base, d.URL)
		if resolved == "" {
			continue
		}
		local, err := e.download.Download(ctx, resolved, assets.KindPDF)
		if err != nil {
			slog.Warn("document download failed", "url", resolved, "error", err)
			continue
		}
		downloads = append(downloads, models.Download{Title: d.Title, URL: local})
	}

	category := req.CategoryOverride
	if category == "" {
		category = e.norm.Normalize(req.Brand, raw.OriginalCategory)
	}

	return &models.Product{
		ID:               ProductID(req.Brand, raw.Title, req.URL),
		Brand:            req.Brand,
		Name:             raw.Title,
		Category:         category,
		SubCategory:      req.SubCategoryOverride,
		OriginalCategory: raw.OriginalCategory,
		Description:      SanitizeDescription(raw.Description),
		ImagePath:        imagePath,
		Images:           gallery,
		DatasheetPath:    datasheet,
		SourceURL:        req.URL,
		Specs:            raw.Specs,
		Features:         raw.Features,
		Downloads:        downloads,
		Videos:           raw.Videos,
		Variants:         raw.Variants,
		LastUpdated:      time.Now().UTC(),
	}
}

// upsert inserts or updates by sourceURL, preserving the id of an existing
// record. The keyed lock makes the read-modify-write atomic per URL.
func (e *Engine) upsert(ctx context.Context, product *models.Product) error {
	unlock := e.upserts.lock(product.SourceURL)
	defer unlock()

	existing, err := e.store.FindBySourceURL(ctx, product.SourceURL)
	switch {
	case err == nil:
		product.ID = existing.ID
		return e.store.Update(ctx, product)
	case err == store.ErrNotFound:
		return e.store.Insert(ctx, product)
	default:
		return err
	}
}

// resolveBase picks the origin for relative-URL resolution: the page's own
// post-redirect URL, not the caller-supplied one.
func (e *Engine) resolveBase(baseURL, requestURL string) *url.URL {
	if baseURL != "" {
		if u, err := url.Parse(baseURL); err == nil && u.IsAbs() {
			return u
		}
	}
	u, err := url.Parse(requestURL)
	if err != nil {
		return nil
	}
	return u
}

// resolveRef resolves a possibly-relative asset reference against the page
// base. Absolute URLs pass through untouched; unresolvable ones become "".
func resolveRef(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if base == nil {
		return ""
	}
	resolved, err := base.Parse(ref)
	if err != nil {
		return ""
	}
	return resolved.String()
}

func failure(message string) models.ScrapeResult {
	return models.ScrapeResult{Success: false, Message: message}
}
