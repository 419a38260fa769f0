package adapters

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viktorsistem/katalog/models"
)

const seristaFixture = `<!doctype html>
<html><body>
<nav class="woocommerce-breadcrumb"><a href="/">Anasayfa</a><a href="/kategori/anahtarlar">Anahtarlar</a></nav>
<h1 class="product_title">Mona Ikili Anahtar</h1>
<div class="woocommerce-product-gallery__image">
  <img data-large_image="/wp-content/uploads/2024/mona-front.jpg" src="/wp-content/uploads/2024/mona-front-300.jpg">
</div>
<figure><img src="https://cdn.serista.com.tr/wp-content/uploads/2024/mona-side.jpg"></figure>
<img src="/assets/logo.png">
<div class="woocommerce-product-details__short-description"><p>Kisa aciklama.</p></div>
<div id="tab-description"><p>Uzun aciklama.</p><img src="/wp-content/uploads/2024/mona-detail.jpg"></div>
<span class="posted_in">Kategori: <a href="/kategori/anahtarlar">Anahtar & Priz</a></span>
</body></html>`

func TestSerista_SendsOnlyMinimalHeaders(t *testing.T) {
	var gotUA string
	var sawChromeHints bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		if r.Header.Get("Sec-Ch-Ua") != "" || r.Header.Get("Sec-Fetch-Mode") != "" {
			sawChromeHints = true
		}
		fmt.Fprint(w, seristaFixture)
	}))
	defer srv.Close()

	s := NewSerista(models.ScrapeOptions{URL: srv.URL + "/urun/mona"}, 5*time.Second)
	require.NoError(t, s.Fetch(context.Background()))

	// The CDN serves a different site's HTML when it sees the full Chrome
	// fingerprint; the whole point of this adapter is the bare request.
	assert.Equal(t, "Mozilla/5.0", gotUA)
	assert.False(t, sawChromeHints, "no Sec-* headers may be sent to this host")
}

func TestSerista_Extraction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, seristaFixture)
	}))
	defer srv.Close()

	s := NewSerista(models.ScrapeOptions{URL: srv.URL + "/urun/mona"}, 5*time.Second)
	require.NoError(t, s.Fetch(context.Background()))

	raw, err := s.ScrapeRaw()
	require.NoError(t, err)

	assert.Equal(t, "Mona Ikili Anahtar", raw.Title)
	assert.Equal(t, "Anahtar & Priz", raw.OriginalCategory)

	assert.Contains(t, raw.Description, `<div class="short-desc">`)
	assert.Contains(t, raw.Description, "Kisa aciklama.")
	assert.Contains(t, raw.Description, `<div class="full-desc">`)
	assert.Contains(t, raw.Description, "Uzun aciklama.")

	// Gallery first, then description images; logo filtered out; relative
	// wp paths pinned to the production origin.
	require.Len(t, raw.RawImages, 3)
	assert.Equal(t, "https://serista.com.tr/wp-content/uploads/2024/mona-front.jpg", raw.RawImages[0])
	assert.Equal(t, raw.RawImages[0], raw.RawImageURL)
	assert.NotContains(t, raw.RawImages, srv.URL+"/assets/logo.png")
}

func TestSerista_DescriptionFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><h1 class="product_title">Bare Product</h1></body></html>`)
	}))
	defer srv.Close()

	s := NewSerista(models.ScrapeOptions{URL: srv.URL + "/urun/bare"}, 5*time.Second)
	require.NoError(t, s.Fetch(context.Background()))

	raw, err := s.ScrapeRaw()
	require.NoError(t, err)
	assert.Equal(t, "<p>Ürün açıklaması bulunamadı.</p>", raw.Description)
	assert.Equal(t, "Unknown", raw.OriginalCategory)
}

func TestSerista_ScrapeRawBeforeFetch(t *testing.T) {
	s := NewSerista(models.ScrapeOptions{URL: "https://serista.com.tr/urun/x"}, time.Second)
	_, err := s.ScrapeRaw()
	assert.ErrorIs(t, err, ErrNotFetched)
}
