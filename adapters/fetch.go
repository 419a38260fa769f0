package adapters

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	tls "github.com/refraction-networking/utls"
	"golang.org/x/net/html/charset"

	"github.com/viktorsistem/katalog/models"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

const maxPageSize = 10 << 20

// chromeH1Spec is the Chrome ClientHello with ALPN pinned to http/1.1 so
// the server never negotiates HTTP/2, which http.Transport cannot drive
// over a utls connection.
var chromeH1Spec tls.ClientHelloSpec

func init() {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return
	}
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	chromeH1Spec = spec
}

// fetcher performs direct HTTP GETs with a Chrome TLS fingerprint. Shared by
// every adapter that does not need a rendered page.
type fetcher struct {
	client *http.Client
}

func newFetcher(timeout time.Duration) *fetcher {
	transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			dialer := &net.Dialer{Timeout: 10 * time.Second}
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			host, _, _ := net.SplitHostPort(addr)
			tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
			if err := tlsConn.ApplyPreset(&chromeH1Spec); err != nil {
				conn.Close()
				return nil, fmt.Errorf("adapters: apply tls spec: %w", err)
			}
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				conn.Close()
				return nil, err
			}
			return tlsConn, nil
		},
		ForceAttemptHTTP2: false,
	}
	return &fetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}
}

// get fetches targetURL with the given headers and returns the body plus
// the final URL after redirects.
func (f *fetcher) get(ctx context.Context, targetURL string, headers map[string]string) (body string, finalURL string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return "", "", fmt.Errorf("adapters: build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", "", models.NewScrapeError(models.ErrCodeTimeout,
				"request timed out: "+targetURL, err)
		}
		return "", "", fmt.Errorf("adapters: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", "", fmt.Errorf("adapters: HTTP %d for %s", resp.StatusCode, targetURL)
	}

	// Vendor sites are not reliably UTF-8 (Turkish pages still ship
	// windows-1254 now and then); decode before goquery sees the bytes.
	reader, err := charset.NewReader(io.LimitReader(resp.Body, maxPageSize), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", "", fmt.Errorf("adapters: detect charset: %w", err)
	}
	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", "", fmt.Errorf("adapters: read body: %w", err)
	}

	return string(raw), resp.Request.URL.String(), nil
}

// chromeHeaders is the full desktop-Chrome header fingerprint used by the
// standard HTML adapters. Caller-supplied headers override the defaults.
func chromeHeaders(custom map[string]string) map[string]string {
	h := map[string]string{
		"User-Agent":                chromeUA,
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7",
		"Accept-Language":           "tr-TR,tr;q=0.9,en-US;q=0.8,en;q=0.7",
		"Cache-Control":             "no-cache",
		"Pragma":                    "no-cache",
		"Upgrade-Insecure-Requests": "1",
		"Sec-Ch-Ua":                 `"Chromium";v="131", "Not(A:Brand";v="24", "Google Chrome";v="131"`,
		"Sec-Ch-Ua-Mobile":          "?0",
		"Sec-Ch-Ua-Platform":        `"Windows"`,
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "none",
		"Sec-Fetch-User":            "?1",
	}
	for k, v := range custom {
		h[k] = v
	}
	return h
}
