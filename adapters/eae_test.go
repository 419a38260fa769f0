package adapters

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viktorsistem/katalog/models"
)

// eaeFixture mirrors the page builder's fixed layout: the product wrapper is
// the 9th direct child div of body, two div levels down, and its children
// sit at known positions.
func eaeFixture() string {
	var b strings.Builder
	b.WriteString("<!doctype html><html><body>")
	for i := 0; i < 8; i++ {
		b.WriteString("<div></div>")
	}
	b.WriteString(`<div><div><div>`)
	// child 0
	b.WriteString(`<div></div>`)
	// child 1: main product shot behind a zoom anchor
	b.WriteString(`<div><div><div></div><div></div><div><div><a href="/uploads/products/panel-main.jpg"><img src="data:image/png;base64,AAAA"></a></div></div></div></div>`)
	// child 2: title
	b.WriteString(`<div><h3>Glass Panel X</h3></div>`)
	// children 3-4
	b.WriteString(`<div></div><div></div>`)
	// children 5-6: description blocks
	b.WriteString(`<div><p>Kapasitif cam yuzey.</p><img src="/uploads/d1.jpg"></div>`)
	b.WriteString(`<div><p>KNX TP baglanti.</p></div>`)
	// children 7-13
	for i := 0; i < 7; i++ {
		b.WriteString("<div></div>")
	}
	b.WriteString(`</div></div></div>`)
	b.WriteString("</body></html>")
	return b.String()
}

func TestEAE_Extraction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, eaeFixture())
	}))
	defer srv.Close()

	e := NewEAE(models.ScrapeOptions{URL: srv.URL + "/en/products/glass-panel-x"}, 5*time.Second)
	require.NoError(t, e.Fetch(context.Background()))

	raw, err := e.ScrapeRaw()
	require.NoError(t, err)

	assert.Equal(t, "Glass Panel X", raw.Title)
	assert.Equal(t, "KNX Dokunmatik Panel", raw.OriginalCategory)

	assert.Contains(t, raw.Description, "Kapasitif cam yuzey.")
	assert.Contains(t, raw.Description, "KNX TP baglanti.")
	assert.NotContains(t, raw.Description, "<img", "images are stripped from description blocks")

	// Anchor href first, then description images; relative paths pinned to
	// the production origin, base64 placeholders dropped.
	require.Len(t, raw.RawImages, 2)
	assert.Equal(t, "https://eaetechnology.com/uploads/products/panel-main.jpg", raw.RawImages[0])
	assert.Equal(t, "https://eaetechnology.com/uploads/d1.jpg", raw.RawImages[1])
	assert.Equal(t, raw.RawImages[0], raw.RawImageURL)
}

func TestEAE_TitleFallbackOnUnexpectedLayout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><div><h3>Mona Rotary Dimmer</h3></div></body></html>`)
	}))
	defer srv.Close()

	e := NewEAE(models.ScrapeOptions{URL: srv.URL + "/p/mona"}, 5*time.Second)
	require.NoError(t, e.Fetch(context.Background()))

	raw, err := e.ScrapeRaw()
	require.NoError(t, err)
	assert.Equal(t, "Mona Rotary Dimmer", raw.Title)
	assert.Equal(t, "<p>Ürün açıklaması bulunamadı.</p>", raw.Description)
	assert.Empty(t, raw.RawImages)
}
