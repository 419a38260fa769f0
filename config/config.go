package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Browser BrowserConfig
	Scraper ScraperConfig
	Assets  AssetsConfig
	Store   StoreConfig
	Log     LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"

	// APIKeys protects the admin endpoints. Empty means open access.
	APIKeys []string

	// RequestsPerSecond and Burst tune the per-client rate limiter.
	RequestsPerSecond float64 // default: 5
	Burst             int     // default: 10
}

// BrowserConfig controls the shared Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// DefaultProxy is the proxy URL for all browser traffic.
	DefaultProxy string
}

// ScraperConfig controls pipeline behavior.
type ScraperConfig struct {
	// NavTimeout is the max time for a single page navigation.
	NavTimeout time.Duration // default: 60s

	// WarmupTimeout bounds the warm-up navigation browser adapters do
	// before hitting the target URL.
	WarmupTimeout time.Duration // default: 30s

	// SelectorTimeout bounds every wait-for-selector.
	SelectorTimeout time.Duration // default: 15s

	// FetchTimeout bounds a direct (non-browser) page fetch.
	FetchTimeout time.Duration // default: 30s

	// CrawlDelay is the politeness pause between bulk-crawl items.
	CrawlDelay time.Duration // default: 1s
}

// AssetsConfig controls local asset storage.
type AssetsConfig struct {
	// UploadDir is the root directory for downloaded media.
	// Images land in UploadDir/products, documents in UploadDir/docs.
	UploadDir string // default: "public/uploads"

	// DownloadTimeout bounds a single asset download.
	DownloadTimeout time.Duration // default: 30s
}

// StoreConfig selects and configures the record store.
type StoreConfig struct {
	// Driver is "file" or "postgres".
	Driver string // default: "file"

	// Path is the JSON file location for the file driver.
	Path string // default: "data/products.json"

	// DSN is the connection string for the postgres driver.
	DSN string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              envOr("KATALOG_HOST", "0.0.0.0"),
			Port:              envIntOr("KATALOG_PORT", 8080),
			Mode:              envOr("KATALOG_MODE", "release"),
			APIKeys:           envListOr("KATALOG_API_KEYS", nil),
			RequestsPerSecond: envFloatOr("KATALOG_RATE_RPS", 5),
			Burst:             envIntOr("KATALOG_RATE_BURST", 10),
		},
		Browser: BrowserConfig{
			Headless:     envBoolOr("KATALOG_HEADLESS", true),
			NoSandbox:    envBoolOr("KATALOG_NO_SANDBOX", false),
			BrowserBin:   os.Getenv("KATALOG_BROWSER_BIN"),
			DefaultProxy: os.Getenv("KATALOG_PROXY"),
		},
		Scraper: ScraperConfig{
			NavTimeout:      envDurationOr("KATALOG_NAV_TIMEOUT", 60*time.Second),
			WarmupTimeout:   envDurationOr("KATALOG_WARMUP_TIMEOUT", 30*time.Second),
			SelectorTimeout: envDurationOr("KATALOG_SELECTOR_TIMEOUT", 15*time.Second),
			FetchTimeout:    envDurationOr("KATALOG_FETCH_TIMEOUT", 30*time.Second),
			CrawlDelay:      envDurationOr("KATALOG_CRAWL_DELAY", time.Second),
		},
		Assets: AssetsConfig{
			UploadDir:       envOr("KATALOG_UPLOAD_DIR", "public/uploads"),
			DownloadTimeout: envDurationOr("KATALOG_DOWNLOAD_TIMEOUT", 30*time.Second),
		},
		Store: StoreConfig{
			Driver: envOr("KATALOG_STORE_DRIVER", "file"),
			Path:   envOr("KATALOG_STORE_PATH", "data/products.json"),
			DSN:    os.Getenv("KATALOG_STORE_DSN"),
		},
		Log: LogConfig{
			Level:  envOr("KATALOG_LOG_LEVEL", "info"),
			Format: envOr("KATALOG_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envListOr(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return fallback
}
