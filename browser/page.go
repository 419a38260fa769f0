package browser

import (
	"fmt"
	"log/slog"
	"net/url"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/viktorsistem/katalog/models"
)

// DesktopUA is the spoofed user agent for desktop page loads.
const DesktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// MobileUA is the spoofed user agent for mobile emulation. Interra serves a
// simpler, gate-free layout to phones.
const MobileUA = "Mozilla/5.0 (iPhone; CPU iPhone OS 15_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.0 Mobile/15E148 Safari/604.1"

// PageOptions configures a fresh page before any navigation.
type PageOptions struct {
	UserAgent string
	Width     int
	Height    int
	Mobile    bool
	Touch     bool

	// Cookies are installed before navigation. A cookie without a domain
	// defaults to the host of TargetURL.
	Cookies   []models.Cookie
	TargetURL string

	Headers map[string]string
}

// DesktopPage returns PageOptions for a standard desktop viewport.
func DesktopPage(targetURL string, cookies []models.Cookie) PageOptions {
	return PageOptions{
		UserAgent: DesktopUA,
		Width:     1280,
		Height:    900,
		Cookies:   cookies,
		TargetURL: targetURL,
	}
}

// MobilePage returns PageOptions emulating a phone with touch input.
func MobilePage(targetURL string, cookies []models.Cookie) PageOptions {
	return PageOptions{
		UserAgent: MobileUA,
		Width:     390,
		Height:    844,
		Mobile:    true,
		Touch:     true,
		Cookies:   cookies,
		TargetURL: targetURL,
	}
}

// NewPage creates and configures a fresh page. Stealth JS and all emulation
// overrides are installed before the caller navigates, which is the only
// order in which they take effect. The caller must Close the page on every
// exit path.
func (s *Session) NewPage(opts PageOptions) (*rod.Page, error) {
	page, err := s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("browser: create page: %w", err)
	}

	ok := false
	defer func() {
		if !ok {
			_ = page.Close()
		}
	}()

	// Mask navigator.webdriver and friends. Must run before navigation.
	if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
		slog.Warn("stealth injection failed, proceeding without stealth", "error", err)
	}

	if opts.UserAgent != "" {
		if err := (proto.EmulationSetUserAgentOverride{
			UserAgent: opts.UserAgent,
		}).Call(page); err != nil {
			return nil, fmt.Errorf("browser: set user agent: %w", err)
		}
	}

	if opts.Width > 0 && opts.Height > 0 {
		if err := (proto.EmulationSetDeviceMetricsOverride{
			Width:             opts.Width,
			Height:            opts.Height,
			DeviceScaleFactor: 1,
			Mobile:            opts.Mobile,
		}).Call(page); err != nil {
			return nil, fmt.Errorf("browser: set viewport: %w", err)
		}
	}

	if opts.Touch {
		if err := (proto.EmulationSetTouchEmulationEnabled{
			Enabled: true,
		}).Call(page); err != nil {
			slog.Warn("touch emulation failed", "error", err)
		}
	}

	for _, c := range opts.Cookies {
		domain := c.Domain
		if domain == "" {
			if u, parseErr := url.Parse(opts.TargetURL); parseErr == nil {
				domain = u.Hostname()
			}
		}
		_, err := proto.NetworkSetCookie{
			Name:   c.Name,
			Value:  c.Value,
			Domain: domain,
			Path:   "/",
		}.Call(page)
		if err != nil {
			slog.Warn("cookie injection failed", "cookie", c.Name, "error", err)
		}
	}

	if len(opts.Headers) > 0 {
		if err := (proto.NetworkSetExtraHTTPHeaders{
			Headers: toHeadersMap(opts.Headers),
		}).Call(page); err != nil {
			slog.Warn("extra headers failed", "error", err)
		}
	}

	ok = true
	return page, nil
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
