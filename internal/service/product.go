package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/product-catalog/internal/apperr"
	"github.com/tuanvumaihuynh/product-catalog/internal/model"
	"github.com/tuanvumaihuynh/product-catalog/internal/repository"
	"github.com/tuanvumaihuynh/product-catalog/pkg/optional"
	"github.com/tuanvumaihuynh/product-catalog/pkg/ptr"
	"github.com/tuanvumaihuynh/product-catalog/pkg/validator"
)

// SaveProductParams carries a product to insert (ID nil) or overwrite.
// Nil fields are treated as absent.
type SaveProductParams struct {
	ID       *int64
	Name     *string `field:"nombre" validate:"omitempty,max=255"`
	Price    *decimal.Decimal
	ImageURL *string `field:"imagenUrl" validate:"omitempty,max=500"`
}

type ProductService interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	FindProductByID(ctx context.Context, id *int64) (optional.Optional[model.Product], error)
	SaveProduct(ctx context.Context, params *SaveProductParams) (model.Product, error)
	DeleteProductByID(ctx context.Context, id *int64) (bool, error)
	ProductExistsByID(ctx context.Context, id *int64) (bool, error)
	CountProducts(ctx context.Context) (int64, error)
	FindProductsByNameContaining(ctx context.Context, name *string) ([]model.Product, error)
	FindProductsByPriceBetween(ctx context.Context, min, max *decimal.Decimal) ([]model.Product, error)
}

type productService struct {
	productRepo repository.ProductRepository
	validator   validator.Validator
}

func NewProductService(
	productRepo repository.ProductRepository,
	validator validator.Validator,
) ProductService {
	return &productService{
		productRepo: productRepo,
		validator:   validator,
	}
}

func (s *productService) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.ListAllProducts(ctx)
	if err != nil {
		return nil, apperr.InternalErr.WrapParent(fmt.Errorf("product repository list all products: %w", err))
	}

	return products, nil
}

func (s *productService) FindProductByID(ctx context.Context, id *int64) (optional.Optional[model.Product], error) {
	if id == nil {
		return optional.None[model.Product](), apperr.ErrProductIDRequired
	}

	product, err := s.productRepo.GetProductByID(ctx, *id)
	if err != nil {
		return optional.None[model.Product](), apperr.InternalErr.WrapParent(fmt.Errorf("product repository get product by id: %w", err))
	}

	return product, nil
}

func (s *productService) SaveProduct(ctx context.Context, params *SaveProductParams) (model.Product, error) {
	if params == nil {
		return model.Product{}, apperr.ErrProductRequired
	}
	if params.Name == nil || strings.TrimSpace(*params.Name) == "" {
		return model.Product{}, apperr.ErrProductNameRequired
	}
	if params.Price == nil || params.Price.IsNegative() {
		return model.Product{}, apperr.ErrProductPriceInvalid
	}
	if err := s.validator.Validate(params); err != nil {
		if validator.IsValidationError(err) {
			return model.Product{}, apperr.ValidationErr.WrapParent(err)
		}
		return model.Product{}, apperr.InternalErr.WrapParent(fmt.Errorf("validate product: %w", err))
	}

	// A present id always means overwrite; ids below 1 never name a stored row.
	if params.ID != nil && *params.ID <= 0 {
		return model.Product{}, apperr.ErrProductNotFound
	}

	product := model.Product{
		ID:       ptr.Deref(params.ID),
		Name:     *params.Name,
		Price:    *params.Price,
		ImageURL: params.ImageURL,
	}

	var saved model.Product
	if err := s.productRepo.WithTx(ctx, func(repo repository.ProductRepository) error {
		var err error
		saved, err = repo.SaveProduct(ctx, product)
		return err
	}); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return model.Product{}, apperr.ErrProductNotFound.WrapParent(err)
		}
		return model.Product{}, apperr.InternalErr.WrapParent(fmt.Errorf("product repository save product: %w", err))
	}

	return saved, nil
}

func (s *productService) DeleteProductByID(ctx context.Context, id *int64) (bool, error) {
	if id == nil {
		return false, apperr.ErrProductIDRequired
	}

	var deleted bool
	if err := s.productRepo.WithTx(ctx, func(repo repository.ProductRepository) error {
		var err error
		deleted, err = repo.DeleteProductByID(ctx, *id)
		return err
	}); err != nil {
		return false, apperr.InternalErr.WrapParent(fmt.Errorf("product repository delete product by id: %w", err))
	}

	return deleted, nil
}

func (s *productService) ProductExistsByID(ctx context.Context, id *int64) (bool, error) {
	if id == nil {
		return false, nil
	}

	exists, err := s.productRepo.ProductExistsByID(ctx, *id)
	if err != nil {
		return false, apperr.InternalErr.WrapParent(fmt.Errorf("product repository product exists by id: %w", err))
	}

	return exists, nil
}

func (s *productService) CountProducts(ctx context.Context) (int64, error) {
	count, err := s.productRepo.CountProducts(ctx)
	if err != nil {
		return 0, apperr.InternalErr.WrapParent(fmt.Errorf("product repository count products: %w", err))
	}

	return count, nil
}

func (s *productService) FindProductsByNameContaining(ctx context.Context, name *string) ([]model.Product, error) {
	if name == nil || strings.TrimSpace(*name) == "" {
		return []model.Product{}, nil
	}

	products, err := s.productRepo.FindProductsByNameContaining(ctx, strings.TrimSpace(*name))
	if err != nil {
		return nil, apperr.InternalErr.WrapParent(fmt.Errorf("product repository find products by name: %w", err))
	}

	return products, nil
}

func (s *productService) FindProductsByPriceBetween(ctx context.Context, min, max *decimal.Decimal) ([]model.Product, error) {
	if min == nil || max == nil {
		return nil, apperr.ErrPriceRangeRequired
	}
	if min.IsNegative() || max.IsNegative() {
		return nil, apperr.ErrPriceRangeNegative
	}
	if min.GreaterThan(*max) {
		return nil, apperr.ErrPriceRangeInverted
	}

	products, err := s.productRepo.FindProductsByPriceBetween(ctx, *min, *max)
	if err != nil {
		return nil, apperr.InternalErr.WrapParent(fmt.Errorf("product repository find products by price: %w", err))
	}

	return products, nil
}
