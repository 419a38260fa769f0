// Package assets downloads remote product media (images, datasheets) into
// local content storage so the catalog never hot-links vendor CDNs.
package assets

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	tls "github.com/refraction-networking/utls"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// maxAssetSize caps a single download (some vendors link full install
// manuals as "datasheets").
const maxAssetSize = 50 << 20

// Kind selects the Accept header and the default file extension.
type Kind string

const (
	KindImage Kind = "image"
	KindPDF   Kind = "pdf"
)

// Downloader fetches remote assets with browser-like headers and persists
// them under a per-kind subdirectory. Safe for concurrent use.
type Downloader struct {
	baseDir string
	client  *http.Client
}

// New creates a Downloader rooted at baseDir. Images are stored under
// baseDir/products, documents under baseDir/docs; the returned references
// are web paths of the form /uploads/products/<name>.
func New(baseDir string, timeout time.Duration) *Downloader {
	transport := &http.Transport{
		DialTLSContext: dialTLSChrome,
	}
	return &Downloader{
		baseDir: baseDir,
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}
}

// Download fetches an absolute URL and writes it to local storage, returning
// a path-like reference suitable for serving. The caller is responsible for
// resolving relative URLs first. A failed download is an error, never a
// panic; callers treat it as non-fatal.
func (d *Downloader) Download(ctx context.Context, rawURL string, kind Kind) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() {
		return "", fmt.Errorf("assets: not an absolute url: %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("assets: build request: %w", err)
	}
	req.Header.Set("User-Agent", chromeUA)
	// Vendor CDNs commonly reject hot-linked requests without a matching
	// referer, so point it at the asset's own origin.
	req.Header.Set("Referer", u.Scheme+"://"+u.Host)
	if kind == KindPDF {
		req.Header.Set("Accept", "application/pdf")
	} else {
		req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/svg+xml,image/*,*/*;q=0.8")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("assets: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("assets: HTTP %d for %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetSize))
	if err != nil {
		return "", fmt.Errorf("assets: read body: %w", err)
	}

	ext := path.Ext(u.Path)
	if ext == "" {
		if kind == KindPDF {
			ext = ".pdf"
		} else {
			ext = ".jpg"
		}
	}

	folder := "products"
	if kind == KindPDF {
		folder = "docs"
	}

	dir := filepath.Join(d.baseDir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("assets: create dir: %w", err)
	}

	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(dir, name), body, 0o644); err != nil {
		return "", fmt.Errorf("assets: write file: %w", err)
	}

	return "/uploads/" + folder + "/" + name, nil
}

// chromeH1Spec is a Chrome-like TLS ClientHello with ALPN forced to http/1.1
// only, because Go's http.Transport cannot drive HTTP/2 over a utls
// connection. Computed once and reused for every connection.
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

// dialTLSChrome establishes a TLS connection with a Chrome ClientHello so
// TLS-fingerprinting CDNs see a real browser.
func dialTLSChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	rawConn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls.UClient(rawConn, &tls.Config{ServerName: host}, tls.HelloCustom)
	if err := tlsConn.ApplyPreset(&chromeH1Spec); err != nil {
		rawConn.Close()
		return nil, fmt.Errorf("assets: apply tls spec: %w", err)
	}
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, err
	}
	return tlsConn, nil
}
