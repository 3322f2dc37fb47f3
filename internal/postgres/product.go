package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lcastillo/botilleria/internal/domain"
)

// ProductRepo provides CRUD over the products table.
type ProductRepo struct {
	pool *pgxpool.Pool
}

// NewProductRepo creates a product repository.
func NewProductRepo(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

const productColumns = `id, name, description, category, price_cents, wholesale_price_cents,
	wholesale_min_qty, stock, image_url, active, display_order, created_at, updated_at`

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.PriceCents,
		&p.WholesalePriceCents, &p.WholesaleMinQty, &p.Stock, &p.ImageURL,
		&p.Active, &p.DisplayOrder, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns products ordered by display_order then creation time.
// When onlyActive is set, inactive products are filtered out (storefront view).
func (r *ProductRepo) List(ctx context.Context, onlyActive bool) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	if onlyActive {
		query += ` WHERE active`
	}
	query += ` ORDER BY display_order, created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, domain.Internal(err, "product.list", "failed to list products")
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, domain.Internal(err, "product.list", "failed to scan product")
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "product.list", "failed to read products")
	}

	return products, nil
}

// Get retrieves one product by ID.
func (r *ProductRepo) Get(ctx context.Context, id string) (*domain.Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	p, err := scanProduct(row)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrProductNotFound
		}
		return nil, domain.Internal(err, "product.get", "failed to get product")
	}
	return p, nil
}

// Create inserts a new product.
func (r *ProductRepo) Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO products (id, name, description, category, price_cents, wholesale_price_cents,
			wholesale_min_qty, stock, image_url, active, display_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
		RETURNING `+productColumns,
		uuid.NewString(), in.Name, in.Description, in.Category, in.PriceCents,
		in.WholesalePriceCents, in.WholesaleMinQty, in.Stock, in.ImageURL,
		in.Active, in.DisplayOrder, now)

	p, err := scanProduct(row)
	if err != nil {
		return nil, domain.Internal(err, "product.create", "failed to create product")
	}
	return p, nil
}

// Update replaces the mutable fields of a product.
func (r *ProductRepo) Update(ctx context.Context, id string, in domain.ProductInput) (*domain.Product, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE products
		SET name = $2, description = $3, category = $4, price_cents = $5,
			wholesale_price_cents = $6, wholesale_min_qty = $7, stock = $8,
			image_url = $9, active = $10, display_order = $11, updated_at = now()
		WHERE id = $1
		RETURNING `+productColumns,
		id, in.Name, in.Description, in.Category, in.PriceCents,
		in.WholesalePriceCents, in.WholesaleMinQty, in.Stock, in.ImageURL,
		in.Active, in.DisplayOrder)

	p, err := scanProduct(row)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrProductNotFound
		}
		return nil, domain.Internal(err, "product.update", "failed to update product")
	}
	return p, nil
}

// SetActive toggles storefront visibility.
func (r *ProductRepo) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return domain.Internal(err, "product.set_active", "failed to toggle product")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// Delete removes a product.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return domain.Internal(err, "product.delete", "failed to delete product")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}
