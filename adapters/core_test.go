package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const coreFixture = `<!doctype html>
<html><head><title>Core Touch 10 - Core Akilli Ev</title></head><body>
<h2 class="fusion-title-heading">Core Touch 10</h2>
<div class="fusion-text">
  <p>A central smart home controller with a ten inch capacitive display.</p>
  <p>Specifications</p>
  <p>short</p>
  <p><strong>Finish:</strong> Matte Black, Brushed Silver, White.</p>
</div>
<ul class="fusion-checklist">
  <li>Zigbee and KNX support</li>
  <li>Zigbee and KNX support</li>
  <li>ok</li>
  <li>Add to Cart</li>
</ul>
<a href="/wp-content/uploads/core-touch-10.pdf">Core Touch 10
  Datasheet</a>
<a href="/wp-content/uploads/core-touch-10.pdf">duplicate</a>
<a href="/wp-content/uploads/mounting.pdf"></a>
<iframe src="https://www.youtube.com/embed/abc123?rel=0&autoplay=1"></iframe>
<iframe src="https://player.vimeo.com/video/999"></iframe>
<img data-src="/wp-content/uploads/ct10-front.jpg" src="data:image/gif;base64,R0">
<img src="/wp-content/uploads/ct10-side.jpg">
<img src="/wp-content/uploads/site-logo.png">
<img src="/themes/decoration.jpg">
</body></html>`

func TestCore_Extraction(t *testing.T) {
	c := NewCore(coreFixture, "https://corecomfort.example/products/touch-10")
	require.NoError(t, c.Fetch(context.Background()))

	raw, err := c.ScrapeRaw()
	require.NoError(t, err)

	assert.Equal(t, "Core Touch 10", raw.Title)
	assert.Equal(t, "Core Akıllı Ev Sistemleri", raw.OriginalCategory)
	assert.Equal(t, "https://corecomfort.example/products/touch-10", raw.BaseURL)

	// Boilerplate ("Specifications", short fragments) is filtered out.
	assert.Contains(t, raw.Description, "central smart home controller")
	assert.NotContains(t, raw.Description, "Specifications")

	// Features: deduplicated, length-bounded, cart noise removed.
	assert.Contains(t, raw.Features, "Zigbee and KNX support")
	assert.NotContains(t, raw.Features, "ok")
	assert.NotContains(t, raw.Features, "Add to Cart")

	// Downloads: deduplicated by URL, whitespace collapsed, default title.
	require.Len(t, raw.Downloads, 2)
	assert.Equal(t, "Core Touch 10 Datasheet", raw.Downloads[0].Title)
	assert.Equal(t, "/wp-content/uploads/core-touch-10.pdf", raw.Downloads[0].URL)
	assert.Equal(t, "Datasheet", raw.Downloads[1].Title)

	// Videos: youtube only, query stripped.
	assert.Equal(t, []string{"https://www.youtube.com/embed/abc123"}, raw.Videos)

	// Images: data-src preferred, uploads-only, logos excluded.
	require.Len(t, raw.RawImages, 2)
	assert.Equal(t, "/wp-content/uploads/ct10-front.jpg", raw.RawImages[0])
	assert.Equal(t, "/wp-content/uploads/ct10-side.jpg", raw.RawImages[1])
	assert.Equal(t, raw.RawImages[0], raw.RawImageURL)
}

func TestCore_Variants(t *testing.T) {
	c := NewCore(coreFixture, "https://corecomfort.example/products/touch-10")
	raw, err := c.ScrapeRaw()
	require.NoError(t, err)

	require.NotEmpty(t, raw.Variants)
	groups := map[string]bool{}
	names := map[string]bool{}
	for _, v := range raw.Variants {
		groups[v.Group] = true
		names[v.Name] = true
	}
	assert.True(t, groups["Finish"])
	assert.True(t, names["Matte Black"])
	assert.True(t, names["Brushed Silver"])
	assert.True(t, names["White"])
}

func TestCore_TitleFallbackChain(t *testing.T) {
	c := NewCore(`<html><head><title>Touch Panel - Core</title></head><body></body></html>`, "https://x.example/p")
	raw, err := c.ScrapeRaw()
	require.NoError(t, err)
	assert.Equal(t, "Touch Panel", raw.Title)

	c = NewCore(`<html><head><title></title></head><body></body></html>`, "https://x.example/p")
	raw, err = c.ScrapeRaw()
	require.NoError(t, err)
	assert.Equal(t, "Bilinmeyen Ürün", raw.Title)
}
