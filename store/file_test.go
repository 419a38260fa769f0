package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viktorsistem/katalog/models"
)

func sampleProduct(id, sourceURL string) *models.Product {
	return &models.Product{
		ID:          id,
		Brand:       "Interra",
		Name:        "Smart Panel",
		Category:    "Akıllı Bina Otomasyonu",
		SourceURL:   sourceURL,
		Specs:       map[string]string{"display": `4"`},
		LastUpdated: time.Now().UTC(),
	}
}

func TestFileStore_InsertAndFind(t *testing.T) {
	st, err := NewFileStore(filepath.Join(t.TempDir(), "data", "products.json"))
	require.NoError(t, err)
	ctx := context.Background()

	p := sampleProduct("interra-smart-panel-abcd", "https://interratechnology.com/p/1")
	require.NoError(t, st.Insert(ctx, p))

	got, err := st.FindBySourceURL(ctx, p.SourceURL)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.Specs, got.Specs)

	_, err = st.FindBySourceURL(ctx, "https://interratechnology.com/p/unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_DuplicateIDRejected(t *testing.T) {
	st, err := NewFileStore(filepath.Join(t.TempDir(), "products.json"))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, st.Insert(ctx, sampleProduct("dup-id", "https://a.example/1")))
	err = st.Insert(ctx, sampleProduct("dup-id", "https://a.example/2"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestFileStore_Update(t *testing.T) {
	st, err := NewFileStore(filepath.Join(t.TempDir(), "products.json"))
	require.NoError(t, err)
	ctx := context.Background()

	p := sampleProduct("panel-1", "https://a.example/1")
	require.NoError(t, st.Insert(ctx, p))

	p.Name = "Smart Panel v2"
	require.NoError(t, st.Update(ctx, p))

	got, err := st.FindBySourceURL(ctx, p.SourceURL)
	require.NoError(t, err)
	assert.Equal(t, "Smart Panel v2", got.Name)

	err = st.Update(ctx, sampleProduct("never-inserted", "https://a.example/9"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_FindByBrand(t *testing.T) {
	st, err := NewFileStore(filepath.Join(t.TempDir(), "products.json"))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, st.Insert(ctx, sampleProduct("p1", "https://a.example/1")))
	eae := sampleProduct("p2", "https://b.example/1")
	eae.Brand = "EAE"
	require.NoError(t, st.Insert(ctx, eae))

	got, err := st.FindByBrand(ctx, "Interra")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ID)

	got, err = st.FindByBrand(ctx, "Legrand")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	ctx := context.Background()

	st, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, st.Insert(ctx, sampleProduct("p1", "https://a.example/1")))
	require.NoError(t, st.Close())

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	got, err := reopened.FindBySourceURL(ctx, "https://a.example/1")
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)
}
