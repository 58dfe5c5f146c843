package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/product-catalog/internal/model"
	"github.com/tuanvumaihuynh/product-catalog/internal/storage/db"
	"github.com/tuanvumaihuynh/product-catalog/pkg/optional"
)

const productColumns = `id, name, price, image_url`

type productRow struct {
	ID       int64          `db:"id"`
	Name     string         `db:"name"`
	Price    pgtype.Numeric `db:"price"`
	ImageURL *string        `db:"image_url"`
}

func (r productRow) toModel() (model.Product, error) {
	if !r.Price.Valid || r.Price.NaN || r.Price.InfinityModifier != pgtype.Finite {
		return model.Product{}, fmt.Errorf("product %d has a non-finite price", r.ID)
	}

	return model.Product{
		ID:       r.ID,
		Name:     r.Name,
		Price:    decimal.NewFromBigInt(r.Price.Int, r.Price.Exp),
		ImageURL: r.ImageURL,
	}, nil
}

var _ ProductRepository = (*productRepository)(nil)

type productRepository struct {
	db db.DB
}

// NewProductRepository returns a ProductRepository backed by Postgres.
func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{
		db: db,
	}
}

func (r productRepository) WithDB(db db.DB) *productRepository {
	return &productRepository{
		db: db,
	}
}

func (r productRepository) WithTx(ctx context.Context, txFunc func(ProductRepository) error) error {
	return r.db.WithTx(ctx, func(tx db.DB) error {
		return txFunc(r.WithDB(tx))
	})
}

func (r productRepository) ListAllProducts(ctx context.Context) ([]model.Product, error) {
	products, err := r.queryProducts(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`, nil)
	if err != nil {
		return nil, fmt.Errorf("list all products: %w", err)
	}

	return products, nil
}

func (r productRepository) GetProductByID(ctx context.Context, id int64) (optional.Optional[model.Product], error) {
	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = @id`, pgx.NamedArgs{
		"id": id,
	})
	if err != nil {
		return optional.None[model.Product](), fmt.Errorf("get product by id: %w", err)
	}

	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return optional.None[model.Product](), nil
		}
		return optional.None[model.Product](), fmt.Errorf("collect product: %w", err)
	}

	product, err := row.toModel()
	if err != nil {
		return optional.None[model.Product](), fmt.Errorf("convert product row: %w", err)
	}

	return optional.Some(product), nil
}

func (r productRepository) SaveProduct(ctx context.Context, product model.Product) (model.Product, error) {
	args := pgx.NamedArgs{
		"name":      product.Name,
		"price":     product.Price.String(),
		"image_url": product.ImageURL,
	}

	query := `
		INSERT INTO products (name, price, image_url)
		VALUES (@name, @price, @image_url)
		RETURNING ` + productColumns
	if product.IsPersisted() {
		args["id"] = product.ID
		query = `
			UPDATE products
			SET
				name      = @name,
				price     = @price,
				image_url = @image_url
			WHERE id = @id
			RETURNING ` + productColumns
	}

	rows, err := r.db.Query(ctx, query, args)
	if err != nil {
		return model.Product{}, fmt.Errorf("save product: %w", err)
	}

	row, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, ErrProductNotFound
		}
		return model.Product{}, fmt.Errorf("save product: %w", err)
	}

	saved, err := row.toModel()
	if err != nil {
		return model.Product{}, fmt.Errorf("convert product row: %w", err)
	}

	return saved, nil
}

func (r productRepository) DeleteProductByID(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = @id`, pgx.NamedArgs{
		"id": id,
	})
	if err != nil {
		return false, fmt.Errorf("delete product: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r productRepository) ProductExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = @id)`, pgx.NamedArgs{
		"id": id,
	}).Scan(&exists); err != nil {
		return false, fmt.Errorf("product exists: %w", err)
	}

	return exists, nil
}

func (r productRepository) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}

	return count, nil
}

func (r productRepository) FindProductsByNameContaining(ctx context.Context, name string) ([]model.Product, error) {
	products, err := r.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE name ILIKE '%' || @pattern || '%' ESCAPE '\'
		ORDER BY id`,
		pgx.NamedArgs{
			"pattern": escapeLike(name),
		})
	if err != nil {
		return nil, fmt.Errorf("find products by name: %w", err)
	}

	return products, nil
}

func (r productRepository) FindProductsByPriceBetween(ctx context.Context, min, max decimal.Decimal) ([]model.Product, error) {
	products, err := r.queryProducts(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE price BETWEEN @min AND @max
		ORDER BY id`,
		pgx.NamedArgs{
			"min": min.String(),
			"max": max.String(),
		})
	if err != nil {
		return nil, fmt.Errorf("find products by price: %w", err)
	}

	return products, nil
}

func (r productRepository) queryProducts(ctx context.Context, query string, args pgx.NamedArgs) ([]model.Product, error) {
	var queryArgs []any
	if args != nil {
		queryArgs = append(queryArgs, args)
	}

	rows, err := r.db.Query(ctx, query, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	productRows, err := pgx.CollectRows(rows, pgx.RowToStructByName[productRow])
	if err != nil {
		return nil, fmt.Errorf("collect rows: %w", err)
	}

	products := make([]model.Product, 0, len(productRows))
	for _, row := range productRows {
		product, err := row.toModel()
		if err != nil {
			return nil, fmt.Errorf("convert product row: %w", err)
		}
		products = append(products, product)
	}

	return products, nil
}
