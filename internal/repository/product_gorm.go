package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tuanvumaihuynh/product-catalog/internal/model"
	"github.com/tuanvumaihuynh/product-catalog/internal/storage/sqlite"
	"github.com/tuanvumaihuynh/product-catalog/pkg/optional"
)

var _ ProductRepository = (*gormProductRepository)(nil)

type gormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository returns a ProductRepository backed by GORM.
func NewGormProductRepository(db *gorm.DB) ProductRepository {
	return &gormProductRepository{
		db: db,
	}
}

func (r gormProductRepository) WithTx(ctx context.Context, txFunc func(ProductRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return txFunc(&gormProductRepository{db: tx})
	})
}

func (r gormProductRepository) ListAllProducts(ctx context.Context) ([]model.Product, error) {
	var rows []sqlite.Product
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list all products: %w", err)
	}

	return gormRowsToModels(rows), nil
}

func (r gormProductRepository) GetProductByID(ctx context.Context, id int64) (optional.Optional[model.Product], error) {
	var row sqlite.Product
	if err := r.db.WithContext(ctx).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return optional.None[model.Product](), nil
		}
		return optional.None[model.Product](), fmt.Errorf("get product by id: %w", err)
	}

	return optional.Some(gormRowToModel(row)), nil
}

func (r gormProductRepository) SaveProduct(ctx context.Context, product model.Product) (model.Product, error) {
	if !product.IsPersisted() {
		row := sqlite.Product{
			Name:     product.Name,
			Price:    product.Price,
			ImageURL: product.ImageURL,
		}
		if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
			return model.Product{}, fmt.Errorf("insert product: %w", err)
		}

		return gormRowToModel(row), nil
	}

	// A map keeps zero values such as a nil image_url in the update.
	res := r.db.WithContext(ctx).
		Model(&sqlite.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"name":      product.Name,
			"price":     product.Price,
			"image_url": product.ImageURL,
		})
	if res.Error != nil {
		return model.Product{}, fmt.Errorf("update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return model.Product{}, ErrProductNotFound
	}

	return product, nil
}

func (r gormProductRepository) DeleteProductByID(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&sqlite.Product{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("delete product: %w", res.Error)
	}

	return res.RowsAffected > 0, nil
}

func (r gormProductRepository) ProductExistsByID(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&sqlite.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("product exists: %w", err)
	}

	return count > 0, nil
}

func (r gormProductRepository) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&sqlite.Product{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}

	return count, nil
}

func (r gormProductRepository) FindProductsByNameContaining(ctx context.Context, name string) ([]model.Product, error) {
	pattern := "%" + escapeLike(strings.ToLower(name)) + "%"

	var rows []sqlite.Product
	if err := r.db.WithContext(ctx).
		Where(sqlite.LowerFunc+`(name) LIKE ? ESCAPE '\'`, pattern).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find products by name: %w", err)
	}

	return gormRowsToModels(rows), nil
}

func (r gormProductRepository) FindProductsByPriceBetween(ctx context.Context, min, max decimal.Decimal) ([]model.Product, error) {
	var rows []sqlite.Product
	if err := r.db.WithContext(ctx).
		Where(sqlite.DecimalCmpFunc+"(price, ?) >= 0 AND "+sqlite.DecimalCmpFunc+"(price, ?) <= 0", min.String(), max.String()).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find products by price: %w", err)
	}

	return gormRowsToModels(rows), nil
}

func gormRowToModel(row sqlite.Product) model.Product {
	return model.Product{
		ID:       row.ID,
		Name:     row.Name,
		Price:    row.Price,
		ImageURL: row.ImageURL,
	}
}

func gormRowsToModels(rows []sqlite.Product) []model.Product {
	products := make([]model.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, gormRowToModel(row))
	}
	return products
}
