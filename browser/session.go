// Package browser owns the shared headless-browser session. Launching a
// Chrome process per scrape is prohibitively slow for bulk runs, so one
// instance is created lazily and reused for the life of the process; each
// caller gets its own configured page.
package browser

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"

	"github.com/viktorsistem/katalog/config"
)

// Manager lazily launches and hands out the process-wide browser session.
// Safe for concurrent use.
type Manager struct {
	cfg config.BrowserConfig

	mu      sync.Mutex
	session *Session
}

// Session wraps a connected rod browser.
type Session struct {
	browser *rod.Browser
}

// NewManager creates a Manager. The browser is not launched until the first
// Session call.
func NewManager(cfg config.BrowserConfig) *Manager {
	return &Manager{cfg: cfg}
}

// Session returns the shared session, launching the browser on first use.
func (m *Manager) Session() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		return m.session, nil
	}

	l := launcher.New().
		Headless(m.cfg.Headless).
		NoSandbox(m.cfg.NoSandbox)

	if m.cfg.BrowserBin != "" {
		l = l.Bin(m.cfg.BrowserBin)
	}
	if m.cfg.DefaultProxy != "" {
		l = l.Proxy(m.cfg.DefaultProxy)
	}

	// Stealth flags: hide the automation fingerprint and strip the
	// background throttling that skews waits.
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("browser: launch: %w", err)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("browser: connect: %w", err)
	}

	m.session = &Session{browser: b}
	return m.session, nil
}

// Close kills the browser process if one was launched. Call on graceful
// shutdown to prevent zombie Chrome processes.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return
	}
	slog.Info("browser session shutting down")
	if err := m.session.browser.Close(); err != nil {
		slog.Warn("browser close failed", "error", err)
	}
	m.session = nil
}
