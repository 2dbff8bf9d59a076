// Package catalog is a read-only product lookup backed by SQLite.
package catalog

import (
	"context"
	"database/sql"
	"embed"
	"errors"

	"github.com/fjod/go_cart/cartd/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	pkgerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

var ErrProductNotFound = errors.New("product not found")

type Catalog struct {
	db *sql.DB
}

func Open(dsn string) (*Catalog, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to open database")
	}
	// one connection keeps ":memory:" databases shared across queries
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, pkgerrors.Wrap(err, "failed to ping database")
	}

	return &Catalog{db: db}, nil
}

func (c *Catalog) Close() error {
	return c.db.Close()
}

// Migrate applies the embedded schema and seed migrations.
func (c *Catalog) Migrate() error {
	driver, err := sqlite.WithInstance(c.db, &sqlite.Config{})
	if err != nil {
		return pkgerrors.Wrap(err, "could not create migration driver")
	}

	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return pkgerrors.Wrap(err, "could not open migration source")
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return pkgerrors.Wrap(err, "could not create migrate instance")
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return pkgerrors.Wrap(err, "could not run migrations")
	}

	return nil
}

func (c *Catalog) Product(ctx context.Context, id string) (domain.Product, error) {
	query := `
		SELECT id, name, price, image_url
		FROM products
		WHERE id = ?
	`

	p, err := scanProduct(c.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, pkgerrors.Wrapf(err, "failed to get product %q", id)
	}
	return p, nil
}

func (c *Catalog) List(ctx context.Context) ([]domain.Product, error) {
	query := `
		SELECT id, name, price, image_url
		FROM products
		ORDER BY name
	`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to query products")
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "failed to scan product")
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, pkgerrors.Wrap(err, "row iteration error")
	}

	return products, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (domain.Product, error) {
	var (
		p     domain.Product
		price string
	)
	if err := row.Scan(&p.ID, &p.Name, &price, &p.Image); err != nil {
		return domain.Product{}, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return domain.Product{}, pkgerrors.Wrapf(err, "invalid price for %q", p.ID)
	}
	p.Price = d
	return p, nil
}
