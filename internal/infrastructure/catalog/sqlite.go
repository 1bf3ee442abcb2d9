package catalog

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/trendly/backend/internal/domain"
)

var productSchema = []string{`
CREATE TABLE IF NOT EXISTS products (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	category       TEXT NOT NULL,
	description    TEXT NOT NULL DEFAULT '',
	price          REAL,
	brand          TEXT NOT NULL DEFAULT '',
	image_url      TEXT NOT NULL DEFAULT '',
	stock_quantity INTEGER,
	is_active      INTEGER
)`,
	`CREATE INDEX IF NOT EXISTS idx_products_category ON products (category)`,
}

// SQLiteCatalog reads the internal catalog from a SQLite database
type SQLiteCatalog struct {
	db *sql.DB
}

// NewSQLiteCatalog opens the SQLite database at dsn
func NewSQLiteCatalog(ctx context.Context, dsn string) (*SQLiteCatalog, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", dsn)
	}

	// One connection keeps in-memory databases shared and writes serialized
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to ping db")
	}

	return &SQLiteCatalog{db: db}, nil
}

// Migrate creates the products table if it does not exist
func (c *SQLiteCatalog) Migrate(ctx context.Context) error {
	for _, stmt := range productSchema {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to migrate products table")
		}
	}
	return nil
}

// Seed inserts or replaces products in a single transaction
func (c *SQLiteCatalog) Seed(ctx context.Context, products []domain.Product) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO products
			(id, name, category, description, price, brand, image_url, stock_quantity, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "failed to prepare product insert")
	}
	defer stmt.Close()

	for _, p := range products {
		if _, err := stmt.ExecContext(ctx,
			p.ID, p.Name, p.Category, p.Description,
			nullFloat(p.Price), p.Brand, p.ImageURL,
			nullInt(p.StockQuantity), nullBool(p.IsActive),
		); err != nil {
			return errors.Wrapf(err, "failed to insert product %s", p.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit seed")
	}
	return nil
}

// ListProducts returns every product in insertion order
func (c *SQLiteCatalog) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, name, category, description, price, brand, image_url, stock_quantity, is_active
		FROM products
		ORDER BY rowid ASC`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query products")
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var (
			p        domain.Product
			price    sql.NullFloat64
			stock    sql.NullInt64
			isActive sql.NullBool
		)
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Category, &p.Description,
			&price, &p.Brand, &p.ImageURL, &stock, &isActive,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan product")
		}

		if price.Valid {
			p.Price = &price.Float64
		}
		if stock.Valid {
			quantity := int(stock.Int64)
			p.StockQuantity = &quantity
		}
		if isActive.Valid {
			p.IsActive = &isActive.Bool
		}

		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate products")
	}

	return products, nil
}

// Close closes the database
func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullBool(v *bool) sql.NullBool {
	if v == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *v, Valid: true}
}
