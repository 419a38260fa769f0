package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/viktorsistem/katalog/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id                TEXT PRIMARY KEY,
	brand             TEXT NOT NULL,
	name              TEXT NOT NULL,
	category          TEXT NOT NULL,
	sub_category      TEXT NOT NULL DEFAULT '',
	original_category TEXT NOT NULL DEFAULT '',
	description       TEXT NOT NULL DEFAULT '',
	image_path        TEXT NOT NULL DEFAULT '',
	images            JSONB NOT NULL DEFAULT '[]',
	datasheet_path    TEXT NOT NULL DEFAULT '',
	source_url        TEXT NOT NULL UNIQUE,
	specs             JSONB NOT NULL DEFAULT '{}',
	features          JSONB NOT NULL DEFAULT '[]',
	downloads         JSONB NOT NULL DEFAULT '[]',
	videos            JSONB NOT NULL DEFAULT '[]',
	variants          JSONB NOT NULL DEFAULT '[]',
	last_updated      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS products_brand_idx ON products (brand);
`

// PostgresStore persists the catalog in Postgres. The collection-valued
// fields ride in JSONB columns since nothing queries inside them.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects and bootstraps the schema.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: bootstrap schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

const selectColumns = `id, brand, name, category, sub_category, original_category,
	description, image_path, images, datasheet_path, source_url, specs,
	features, downloads, videos, variants, last_updated`

func (s *PostgresStore) FindBySourceURL(ctx context.Context, sourceURL string) (*models.Product, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+selectColumns+` FROM products WHERE source_url = $1`, sourceURL)
	return scanProduct(row)
}

func (s *PostgresStore) FindByBrand(ctx context.Context, brand models.Brand) ([]models.Product, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+selectColumns+` FROM products WHERE brand = $1 ORDER BY name`, brand)
	if err != nil {
		return nil, fmt.Errorf("store: query by brand: %w", err)
	}
	defer rows.Close()

	var out []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Insert(ctx context.Context, p *models.Product) error {
	return s.exec(ctx, p, `
		INSERT INTO products (id, brand, name, category, sub_category,
			original_category, description, image_path, images, datasheet_path,
			source_url, specs, features, downloads, videos, variants, last_updated)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`)
}

func (s *PostgresStore) Update(ctx context.Context, p *models.Product) error {
	return s.exec(ctx, p, `
		UPDATE products SET brand=$2, name=$3, category=$4, sub_category=$5,
			original_category=$6, description=$7, image_path=$8, images=$9,
			datasheet_path=$10, source_url=$11, specs=$12, features=$13,
			downloads=$14, videos=$15, variants=$16, last_updated=$17
		WHERE id=$1`)
}

func (s *PostgresStore) exec(ctx context.Context, p *models.Product, query string) error {
	images, specs, features, downloads, videos, variants, err := marshalFields(p)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, query,
		p.ID, p.Brand, p.Name, p.Category, p.SubCategory, p.OriginalCategory,
		p.Description, p.ImagePath, images, p.DatasheetPath, p.SourceURL,
		specs, features, downloads, videos, variants, p.LastUpdated)
	if err != nil {
		return fmt.Errorf("store: write product %s: %w", p.ID, err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	var images, specs, features, downloads, videos, variants []byte

	err := row.Scan(&p.ID, &p.Brand, &p.Name, &p.Category, &p.SubCategory,
		&p.OriginalCategory, &p.Description, &p.ImagePath, &images,
		&p.DatasheetPath, &p.SourceURL, &specs, &features, &downloads,
		&videos, &variants, &p.LastUpdated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: scan product: %w", err)
	}

	for _, pair := range []struct {
		raw []byte
		dst any
	}{
		{images, &p.Images},
		{specs, &p.Specs},
		{features, &p.Features},
		{downloads, &p.Downloads},
		{videos, &p.Videos},
		{variants, &p.Variants},
	} {
		if len(pair.raw) > 0 {
			if err := json.Unmarshal(pair.raw, pair.dst); err != nil {
				return nil, fmt.Errorf("store: decode product %s: %w", p.ID, err)
			}
		}
	}
	return &p, nil
}

func marshalFields(p *models.Product) (images, specs, features, downloads, videos, variants []byte, err error) {
	marshal := func(v any) []byte {
		if err != nil {
			return nil
		}
		var raw []byte
		raw, err = json.Marshal(v)
		return raw
	}
	images = marshal(orEmptySlice(p.Images))
	specs = marshal(orEmptyMap(p.Specs))
	features = marshal(orEmptySlice(p.Features))
	downloads = marshal(orEmptyDownloads(p.Downloads))
	videos = marshal(orEmptySlice(p.Videos))
	variants = marshal(orEmptyVariants(p.Variants))
	if err != nil {
		err = fmt.Errorf("store: marshal product %s: %w", p.ID, err)
	}
	return
}

func orEmptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orEmptyMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func orEmptyDownloads(d []models.Download) []models.Download {
	if d == nil {
		return []models.Download{}
	}
	return d
}

func orEmptyVariants(v []models.Variant) []models.Variant {
	if v == nil {
		return []models.Variant{}
	}
	return v
}
