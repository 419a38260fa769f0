package adapters

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"

	"github.com/viktorsistem/katalog/browser"
	"github.com/viktorsistem/katalog/config"
	"github.com/viktorsistem/katalog/models"
)

const (
	interraRoot = "https://interratechnology.com/tr"

	// productContainer is the content-ready signal: the page has hydrated
	// once this element exists.
	productContainer = "#product-show"

	// localeGateTitle identifies the interstitial Interra shows to sessions
	// without a locale cookie.
	localeGateTitle = "Select Language"
)

// interraExtractJS runs inside the rendered page. The markup is only
// meaningful after hydration, so all selector logic evaluates in the page
// context rather than against static HTML. Description candidates are
// joined and the longest non-trivial result wins, because the full text
// lives in .fr-view sections that not every product page has.
const interraExtractJS = `() => {
	const getText = (sel) => document.querySelector(sel)?.textContent?.trim() || '';

	const SELECTORS = {
		title: '#product-show > div > div > div.col-md-6.col-lg-7.order-md-0 > article > div > h1',
		category: '#product-show > div > div > div.col-md-6.col-lg-7.order-md-0 > article > div > h4 > a',
		description: '#product-show > div > div > div.col-md-6.col-lg-7.order-md-0 > div',
		imageContainer: '#product-show > div > div > div.col-md-6.col-lg-5.order-md-1.product-image-col'
	};

	const title = getText(SELECTORS.title) || document.title;
	const category = getText(SELECTORS.category);

	const descSelectors = ['.fr-view', '#product-show .fr-view', SELECTORS.description];
	let description = '';
	for (const sel of descSelectors) {
		const elements = document.querySelectorAll(sel);
		if (elements.length === 0) continue;

		const parts = Array.from(elements).map(el => {
			const clone = el.cloneNode(true);
			clone.querySelectorAll('style, script, hr, iframe, link, img').forEach(junk => junk.remove());
			return clone.innerHTML.trim();
		});

		const joined = parts
			.filter(part => part.length > 10)
			.join('<br/>')
			.replace(/^(<br\s*\/?>|\s)+/gi, '');

		if (joined.length > description.length) {
			description = joined;
		}
	}

	const imageContainer = document.querySelector(SELECTORS.imageContainer);
	const images = imageContainer
		? Array.from(imageContainer.querySelectorAll('img')).map(img => img.src)
		: [];

	const pdfs = Array.from(document.querySelectorAll('a'))
		.filter(a => a.href.toLowerCase().endsWith('.pdf'))
		.map(a => a.href);

	return {
		title,
		category,
		description,
		images,
		pdfs,
		finalUrl: window.location.href
	};
}`

// Interra scrapes interratechnology.com. The product data only exists after
// client-side rendering, and sessions without a locale cookie get parked on
// a language-selection interstitial, so this adapter drives a real page:
// mobile emulation, stealth fingerprint, a warm-up visit to the /tr root to
// pick up the session cookie, then the target URL.
type Interra struct {
	opts    models.ScrapeOptions
	session *browser.Session
	cfg     config.ScraperConfig

	raw *models.RawProduct
}

// NewInterra creates the Interra adapter on top of the shared session.
func NewInterra(opts models.ScrapeOptions, session *browser.Session, cfg config.ScraperConfig) *Interra {
	return &Interra{opts: opts, session: session, cfg: cfg}
}

func (a *Interra) Fetch(ctx context.Context) error {
	page, err := a.session.NewPage(browser.MobilePage(a.opts.URL, a.opts.Cookies))
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := page.Close(); closeErr != nil {
			slog.Warn("interra: page close failed", "error", closeErr)
		}
	}()

	p := page.Context(ctx)

	// Warm-up: the product route 302s to the gate unless a prior page on
	// the same session set the locale cookie.
	warmup := p.Timeout(a.cfg.WarmupTimeout)
	if err := warmup.Navigate(interraRoot); err != nil {
		slog.Warn("interra: warm-up navigation failed, continuing", "error", err)
	} else {
		_ = warmup.WaitDOMStable(300*time.Millisecond, 0.1)
	}

	nav := p.Timeout(a.cfg.NavTimeout)
	if err := nav.Navigate(a.opts.URL); err != nil {
		return models.NewScrapeError(models.ErrCodeFetch, "interra: navigation failed", err)
	}
	_ = nav.WaitDOMStable(300*time.Millisecond, 0.1)

	if err := a.waitForProduct(p); err != nil {
		return err
	}

	res, err := p.Eval(interraExtractJS)
	if err != nil {
		return models.NewScrapeError(models.ErrCodeExtraction, "interra: page evaluation failed", err)
	}

	v := res.Value
	images := make([]string, 0, len(v.Get("images").Arr()))
	for _, img := range v.Get("images").Arr() {
		if s := img.Str(); s != "" {
			images = append(images, s)
		}
	}
	primary := ""
	if len(images) > 0 {
		primary = images[0]
	}
	pdf := ""
	if arr := v.Get("pdfs").Arr(); len(arr) > 0 {
		pdf = arr[0].Str()
	}
	baseURL := v.Get("finalUrl").Str()
	if baseURL == "" {
		baseURL = a.opts.URL
	}

	category := strings.TrimSpace(v.Get("category").Str())
	if category == "" {
		category = "Interra Product"
	}

	a.raw = &models.RawProduct{
		Title:            strings.TrimSpace(v.Get("title").Str()),
		Description:      v.Get("description").Str(),
		OriginalCategory: category,
		RawImageURL:      primary,
		RawImages:        images,
		RawPDFURL:        pdf,
		Specs:            map[string]string{},
		BaseURL:          baseURL,
	}
	return nil
}

// waitForProduct waits for the hydrated product container. If the wait times
// out and the page is the language interstitial, it clicks the TR locale
// link and waits once more; a second miss is a hard locale-gate failure.
func (a *Interra) waitForProduct(p *rod.Page) error {
	if _, err := p.Timeout(a.cfg.SelectorTimeout).Element(productContainer); err == nil {
		return nil
	}

	title := evalString(p, `() => document.title`)
	if !strings.Contains(title, localeGateTitle) {
		return models.NewScrapeError(models.ErrCodeFetch,
			"interra: product container never appeared (layout change?)", nil)
	}

	slog.Info("interra: language gate detected, attempting bypass", "url", a.opts.URL)
	if _, err := p.Eval(`() => {
		const link = document.querySelector('a[href*="/tr"]');
		if (link) link.click();
	}`); err != nil {
		return models.NewScrapeError(models.ErrCodeLocaleGate,
			"interra: language gate bypass click failed", err)
	}

	if _, err := p.Timeout(a.cfg.SelectorTimeout).Element(productContainer); err != nil {
		return models.NewScrapeError(models.ErrCodeLocaleGate,
			"interra: still stuck on language selection after bypass", err)
	}
	return nil
}

func (a *Interra) ScrapeRaw() (*models.RawProduct, error) {
	if a.raw == nil {
		return nil, ErrNotFetched
	}
	return a.raw, nil
}

// evalString evaluates a JS expression, swallowing errors (used for optional
// metadata only).
func evalString(p *rod.Page, js string) string {
	res, err := p.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}
