package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/product-catalog/internal/model"
	"github.com/tuanvumaihuynh/product-catalog/pkg/optional"
)

// ErrProductNotFound is returned when an update targets an id with no row.
var ErrProductNotFound = errors.New("product not found")

type ProductRepository interface {
	// WithTx runs txFunc with a repository bound to a single transaction.
	// The transaction is rolled back when txFunc returns an error.
	WithTx(ctx context.Context, txFunc func(ProductRepository) error) error

	ListAllProducts(ctx context.Context) ([]model.Product, error)
	GetProductByID(ctx context.Context, id int64) (optional.Optional[model.Product], error)

	// SaveProduct inserts the product when its id is zero and otherwise
	// overwrites every column of the row with that id. It returns the stored
	// product, or ErrProductNotFound if the id has no row.
	SaveProduct(ctx context.Context, product model.Product) (model.Product, error)

	// DeleteProductByID reports whether a row was removed.
	DeleteProductByID(ctx context.Context, id int64) (bool, error)
	ProductExistsByID(ctx context.Context, id int64) (bool, error)
	CountProducts(ctx context.Context) (int64, error)

	// FindProductsByNameContaining matches name as a literal, case-insensitive substring.
	FindProductsByNameContaining(ctx context.Context, name string) ([]model.Product, error)

	// FindProductsByPriceBetween returns products priced in [min, max].
	FindProductsByPriceBetween(ctx context.Context, min, max decimal.Decimal) ([]model.Product, error)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike escapes LIKE wildcards so s matches literally with ESCAPE '\'.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
