package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/product-catalog/internal/apperr"
	"github.com/tuanvumaihuynh/product-catalog/internal/model"
	"github.com/tuanvumaihuynh/product-catalog/internal/repository"
	"github.com/tuanvumaihuynh/product-catalog/internal/service"
	"github.com/tuanvumaihuynh/product-catalog/pkg/optional"
	"github.com/tuanvumaihuynh/product-catalog/pkg/ptr"
	"github.com/tuanvumaihuynh/product-catalog/pkg/validator"
)

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) WithTx(ctx context.Context, txFunc func(repository.ProductRepository) error) error {
	m.Called(ctx)
	return txFunc(m)
}

func (m *mockProductRepository) ListAllProducts(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *mockProductRepository) GetProductByID(ctx context.Context, id int64) (optional.Optional[model.Product], error) {
	args := m.Called(ctx, id)
	return args.Get(0).(optional.Optional[model.Product]), args.Error(1)
}

func (m *mockProductRepository) SaveProduct(ctx context.Context, product model.Product) (model.Product, error) {
	args := m.Called(ctx, product)
	return args.Get(0).(model.Product), args.Error(1)
}

func (m *mockProductRepository) DeleteProductByID(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockProductRepository) ProductExistsByID(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockProductRepository) CountProducts(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockProductRepository) FindProductsByNameContaining(ctx context.Context, name string) ([]model.Product, error) {
	args := m.Called(ctx, name)
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *mockProductRepository) FindProductsByPriceBetween(ctx context.Context, min, max decimal.Decimal) ([]model.Product, error) {
	args := m.Called(ctx, min, max)
	return args.Get(0).([]model.Product), args.Error(1)
}

func newService() (service.ProductService, *mockProductRepository) {
	repo := new(mockProductRepository)
	return service.NewProductService(repo, validator.NewDefaultValidator()), repo
}

var errStore = errors.New("connection refused")

func TestListProducts(t *testing.T) {
	ctx := context.Background()

	t.Run("Should return all products", func(t *testing.T) {
		svc, repo := newService()
		want := []model.Product{{ID: 1, Name: "Laptop", Price: decimal.NewFromInt(999)}}
		repo.On("ListAllProducts", ctx).Return(want, nil)

		got, err := svc.ListProducts(ctx)

		require.NoError(t, err)
		assert.Equal(t, want, got)
		repo.AssertExpectations(t)
	})

	t.Run("Should translate store failure to internal error", func(t *testing.T) {
		svc, repo := newService()
		repo.On("ListAllProducts", ctx).Return([]model.Product(nil), errStore)

		_, err := svc.ListProducts(ctx)

		assert.ErrorIs(t, err, apperr.InternalErr)
		assert.ErrorIs(t, err, errStore)
		assert.False(t, apperr.IsInvalidArgument(err))
	})
}

func TestFindProductByID(t *testing.T) {
	ctx := context.Background()

	t.Run("Should reject nil id", func(t *testing.T) {
		svc, repo := newService()

		_, err := svc.FindProductByID(ctx, nil)

		assert.ErrorIs(t, err, apperr.ErrProductIDRequired)
		assert.True(t, apperr.IsInvalidArgument(err))
		repo.AssertNotCalled(t, "GetProductByID", mock.Anything, mock.Anything)
	})

	t.Run("Should return present product", func(t *testing.T) {
		svc, repo := newService()
		p := model.Product{ID: 7, Name: "Mouse", Price: decimal.NewFromInt(25)}
		repo.On("GetProductByID", ctx, int64(7)).Return(optional.Some(p), nil)

		got, err := svc.FindProductByID(ctx, ptr.New(int64(7)))

		require.NoError(t, err)
		found, ok := got.Get()
		require.True(t, ok)
		assert.True(t, p.Equal(found))
	})

	t.Run("Should return absent product without error", func(t *testing.T) {
		svc, repo := newService()
		repo.On("GetProductByID", ctx, int64(8)).Return(optional.None[model.Product](), nil)

		got, err := svc.FindProductByID(ctx, ptr.New(int64(8)))

		require.NoError(t, err)
		assert.False(t, got.IsPresent())
	})
}

func TestSaveProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("Should insert product without id", func(t *testing.T) {
		svc, repo := newService()
		in := model.Product{Name: "Widget", Price: decimal.RequireFromString("9.99")}
		out := in
		out.ID = 1
		repo.On("WithTx", ctx).Return()
		repo.On("SaveProduct", ctx, in).Return(out, nil)

		got, err := svc.SaveProduct(ctx, &service.SaveProductParams{
			Name:  ptr.New("Widget"),
			Price: ptr.New(decimal.RequireFromString("9.99")),
		})

		require.NoError(t, err)
		assert.Equal(t, int64(1), got.ID)
		assert.Nil(t, got.ImageURL)
		repo.AssertExpectations(t)
	})

	t.Run("Should overwrite product with id", func(t *testing.T) {
		svc, repo := newService()
		in := model.Product{ID: 3, Name: "Widget", Price: decimal.Zero, ImageURL: ptr.New("https://img/w.png")}
		repo.On("WithTx", ctx).Return()
		repo.On("SaveProduct", ctx, in).Return(in, nil)

		got, err := svc.SaveProduct(ctx, &service.SaveProductParams{
			ID:       ptr.New(int64(3)),
			Name:     ptr.New("Widget"),
			Price:    ptr.New(decimal.Zero),
			ImageURL: ptr.New("https://img/w.png"),
		})

		require.NoError(t, err)
		assert.Equal(t, in, got)
	})

	invalid := []struct {
		name    string
		params  *service.SaveProductParams
		wantErr error
	}{
		{
			name:    "nil product",
			params:  nil,
			wantErr: apperr.ErrProductRequired,
		},
		{
			name:    "missing name",
			params:  &service.SaveProductParams{Price: ptr.New(decimal.NewFromInt(1))},
			wantErr: apperr.ErrProductNameRequired,
		},
		{
			name:    "blank name",
			params:  &service.SaveProductParams{Name: ptr.New("   "), Price: ptr.New(decimal.NewFromInt(1))},
			wantErr: apperr.ErrProductNameRequired,
		},
		{
			name:    "missing price",
			params:  &service.SaveProductParams{Name: ptr.New("Widget")},
			wantErr: apperr.ErrProductPriceInvalid,
		},
		{
			name:    "negative price",
			params:  &service.SaveProductParams{Name: ptr.New("Widget"), Price: ptr.New(decimal.RequireFromString("-0.01"))},
			wantErr: apperr.ErrProductPriceInvalid,
		},
		{
			name:    "name too long",
			params:  &service.SaveProductParams{Name: ptr.New(strings.Repeat("n", 256)), Price: ptr.New(decimal.NewFromInt(1))},
			wantErr: apperr.ValidationErr,
		},
		{
			name: "image url too long",
			params: &service.SaveProductParams{
				Name:     ptr.New("Widget"),
				Price:    ptr.New(decimal.NewFromInt(1)),
				ImageURL: ptr.New(strings.Repeat("u", 501)),
			},
			wantErr: apperr.ValidationErr,
		},
	}

	for _, tt := range invalid {
		t.Run("Should reject "+tt.name, func(t *testing.T) {
			svc, repo := newService()

			_, err := svc.SaveProduct(ctx, tt.params)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, apperr.IsInvalidArgument(err))
			repo.AssertNotCalled(t, "SaveProduct", mock.Anything, mock.Anything)
		})
	}

	t.Run("Should accept boundary lengths", func(t *testing.T) {
		svc, repo := newService()
		repo.On("WithTx", ctx).Return()
		repo.On("SaveProduct", ctx, mock.Anything).Return(model.Product{ID: 1}, nil)

		_, err := svc.SaveProduct(ctx, &service.SaveProductParams{
			Name:     ptr.New(strings.Repeat("n", 255)),
			Price:    ptr.New(decimal.Zero),
			ImageURL: ptr.New(strings.Repeat("u", 500)),
		})

		require.NoError(t, err)
	})

	t.Run("Should map missing row to not found", func(t *testing.T) {
		svc, repo := newService()
		repo.On("WithTx", ctx).Return()
		repo.On("SaveProduct", ctx, mock.Anything).Return(model.Product{}, repository.ErrProductNotFound)

		_, err := svc.SaveProduct(ctx, &service.SaveProductParams{
			ID:    ptr.New(int64(999)),
			Name:  ptr.New("Widget"),
			Price: ptr.New(decimal.NewFromInt(1)),
		})

		assert.True(t, apperr.IsNotFound(err))
		assert.False(t, apperr.IsInvalidArgument(err))
	})

	for _, id := range []int64{0, -3} {
		t.Run(fmt.Sprintf("Should treat id %d as overwrite of a missing product", id), func(t *testing.T) {
			svc, repo := newService()

			_, err := svc.SaveProduct(ctx, &service.SaveProductParams{
				ID:    ptr.New(id),
				Name:  ptr.New("Widget"),
				Price: ptr.New(decimal.NewFromInt(1)),
			})

			assert.ErrorIs(t, err, apperr.ErrProductNotFound)
			repo.AssertNotCalled(t, "SaveProduct", mock.Anything, mock.Anything)
		})
	}

	t.Run("Should translate store failure to internal error", func(t *testing.T) {
		svc, repo := newService()
		repo.On("WithTx", ctx).Return()
		repo.On("SaveProduct", ctx, mock.Anything).Return(model.Product{}, errStore)

		_, err := svc.SaveProduct(ctx, &service.SaveProductParams{
			Name:  ptr.New("Widget"),
			Price: ptr.New(decimal.NewFromInt(1)),
		})

		assert.ErrorIs(t, err, apperr.InternalErr)
	})
}

func TestDeleteProductByID(t *testing.T) {
	ctx := context.Background()

	t.Run("Should reject nil id", func(t *testing.T) {
		svc, _ := newService()

		_, err := svc.DeleteProductByID(ctx, nil)

		assert.ErrorIs(t, err, apperr.ErrProductIDRequired)
	})

	t.Run("Should report removed row", func(t *testing.T) {
		svc, repo := newService()
		repo.On("WithTx", ctx).Return()
		repo.On("DeleteProductByID", ctx, int64(4)).Return(true, nil)

		deleted, err := svc.DeleteProductByID(ctx, ptr.New(int64(4)))

		require.NoError(t, err)
		assert.True(t, deleted)
	})

	t.Run("Should report missing row without error", func(t *testing.T) {
		svc, repo := newService()
		repo.On("WithTx", ctx).Return()
		repo.On("DeleteProductByID", ctx, int64(5)).Return(false, nil)

		deleted, err := svc.DeleteProductByID(ctx, ptr.New(int64(5)))

		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestProductExistsByID(t *testing.T) {
	ctx := context.Background()

	t.Run("Should return false for nil id", func(t *testing.T) {
		svc, repo := newService()

		exists, err := svc.ProductExistsByID(ctx, nil)

		require.NoError(t, err)
		assert.False(t, exists)
		repo.AssertNotCalled(t, "ProductExistsByID", mock.Anything, mock.Anything)
	})

	t.Run("Should forward to repository", func(t *testing.T) {
		svc, repo := newService()
		repo.On("ProductExistsByID", ctx, int64(2)).Return(true, nil)

		exists, err := svc.ProductExistsByID(ctx, ptr.New(int64(2)))

		require.NoError(t, err)
		assert.True(t, exists)
	})
}

func TestCountProducts(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService()
	repo.On("CountProducts", ctx).Return(int64(3), nil)

	count, err := svc.CountProducts(ctx)

	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestFindProductsByNameContaining(t *testing.T) {
	ctx := context.Background()

	for _, name := range []*string{nil, ptr.New(""), ptr.New("  ")} {
		svc, repo := newService()

		got, err := svc.FindProductsByNameContaining(ctx, name)

		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
		repo.AssertNotCalled(t, "FindProductsByNameContaining", mock.Anything, mock.Anything)
	}

	t.Run("Should search trimmed name", func(t *testing.T) {
		svc, repo := newService()
		want := []model.Product{{ID: 1, Name: "Laptop"}}
		repo.On("FindProductsByNameContaining", ctx, "lap").Return(want, nil)

		got, err := svc.FindProductsByNameContaining(ctx, ptr.New("  lap "))

		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}

func TestFindProductsByPriceBetween(t *testing.T) {
	ctx := context.Background()
	d := func(s string) *decimal.Decimal { return ptr.New(decimal.RequireFromString(s)) }

	invalid := []struct {
		name     string
		min, max *decimal.Decimal
		wantErr  error
	}{
		{name: "missing min", max: d("10"), wantErr: apperr.ErrPriceRangeRequired},
		{name: "missing max", min: d("1"), wantErr: apperr.ErrPriceRangeRequired},
		{name: "negative min", min: d("-1"), max: d("10"), wantErr: apperr.ErrPriceRangeNegative},
		{name: "negative max", min: d("0"), max: d("-10"), wantErr: apperr.ErrPriceRangeNegative},
		{name: "inverted range", min: d("10"), max: d("5"), wantErr: apperr.ErrPriceRangeInverted},
	}

	for _, tt := range invalid {
		t.Run("Should reject "+tt.name, func(t *testing.T) {
			svc, _ := newService()

			_, err := svc.FindProductsByPriceBetween(ctx, tt.min, tt.max)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, apperr.IsInvalidArgument(err))
		})
	}

	t.Run("Should accept equal bounds", func(t *testing.T) {
		svc, repo := newService()
		bound := d("5")
		want := []model.Product{{ID: 1, Name: "Mid", Price: *bound}}
		repo.On("FindProductsByPriceBetween", ctx, *bound, *bound).Return(want, nil)

		got, err := svc.FindProductsByPriceBetween(ctx, bound, bound)

		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}
