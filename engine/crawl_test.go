package engine

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listingPage mirrors the vendor category layout: a pagination widget whose
// entries include non-numeric arrows, and a lazy-loaded product grid with a
// duplicated anchor.
const listingPage = `<!DOCTYPE html>
<html><body>
<div class="product-container-row">
  <div class="content-box-image"><a href="/urunler/dokunmatik-panel-a">Panel A</a></div>
  <div class="content-box-image"><a href="/urunler/dokunmatik-panel-b">Panel B</a></div>
  <div class="content-box-image"><a href="/urunler/dokunmatik-panel-a">Panel A again</a></div>
</div>
<ul class="pagination">
  <li><a class="page-link" href="?page=1">1</a></li>
  <li><a class="page-link" href="?page=2">2</a></li>
  <li><a class="page-link" href="?page=3">3</a></li>
  <li><a class="page-link" href="?page=2">&raquo;</a></li>
</ul>
</body></html>`

func listingDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestListingSelectors(t *testing.T) {
	doc := listingDoc(t, listingPage)
	base, err := url.Parse("https://vendor.example/urunler/paneller")
	require.NoError(t, err)

	assert.Equal(t, 3, maxPageNumber(doc))
	assert.Equal(t, []string{
		"https://vendor.example/urunler/dokunmatik-panel-a",
		"https://vendor.example/urunler/dokunmatik-panel-b",
	}, productLinks(doc, base), "relative hrefs must resolve against the listing URL, deduplicated, in document order")
}

func TestProductLinks_FallbackSelector(t *testing.T) {
	doc := listingDoc(t, `<div class="content-box">
		<a href="/urunler/roleler/role-16a">Role</a>
		<a href="/hakkimizda">Hakkımızda</a>
	</div>`)
	base, err := url.Parse("https://vendor.example/urunler/roleler")
	require.NoError(t, err)

	got := productLinks(doc, base)
	assert.Equal(t, []string{"https://vendor.example/urunler/roleler/role-16a"}, got,
		"without the grid markup only /urunler/ anchors inside content boxes count")
}

func TestListingSelectors_EmptyDocument(t *testing.T) {
	doc := listingDoc(t, `<html><body><p>still loading</p></body></html>`)
	base, err := url.Parse("https://vendor.example/urunler/paneller")
	require.NoError(t, err)

	assert.Equal(t, 1, maxPageNumber(doc), "a page without pagination is a single page")
	assert.Empty(t, productLinks(doc, base))
}

func TestCollectPageURLs(t *testing.T) {
	got := CollectPageURLs("https://vendor.example/urunler/paneller?page=4#grid", 3)
	want := []string{
		"https://vendor.example/urunler/paneller",
		"https://vendor.example/urunler/paneller?page=2",
		"https://vendor.example/urunler/paneller?page=3",
	}
	assert.Equal(t, want, got)
}

func TestCollectPageURLs_SinglePage(t *testing.T) {
	got := CollectPageURLs("https://vendor.example/urunler/paneller", 1)
	assert.Equal(t, []string{"https://vendor.example/urunler/paneller"}, got)
}

func TestScrapeBulk_MixedResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/p/bad" {
			http.Error(w, "gone", http.StatusNotFound)
			return
		}
		fmt.Fprint(w, productPage)
	}))
	defer srv.Close()

	st := newMemStore()
	eng := testEngine(st, &fakeDownloader{})

	urls := []string{srv.URL + "/p/one", srv.URL + "/p/bad", srv.URL + "/p/two"}
	results := eng.ScrapeBulk(context.Background(), urls, "Acme", "", "")

	require.Len(t, results, 3)
	assert.True(t, results[0].Success, results[0].Message)
	assert.False(t, results[1].Success, "the 404 item must fail without stopping the run")
	assert.True(t, results[2].Success, results[2].Message)
	assert.Equal(t, urls[0], results[0].URL)
	assert.Equal(t, 2, st.inserts)
}

func TestScrapeBulk_HonorsCancellation(t *testing.T) {
	eng := testEngine(newMemStore(), &fakeDownloader{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := eng.ScrapeBulk(ctx, []string{"https://x.example/1", "https://x.example/2"}, "Acme", "", "")
	assert.Empty(t, results, "a cancelled context must stop the run before the first item")
}
