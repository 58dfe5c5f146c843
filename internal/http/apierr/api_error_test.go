package apierr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/product-catalog/internal/apperr"
	"github.com/tuanvumaihuynh/product-catalog/internal/http/apierr"
	"github.com/tuanvumaihuynh/product-catalog/pkg/ptr"
	"github.com/tuanvumaihuynh/product-catalog/pkg/validator"
)

type body struct {
	Name *string `field:"nombre" validate:"omitempty,max=3"`
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "invalid argument",
			err:        fmt.Errorf("handler: %w", apperr.ErrPriceRangeInverted),
			wantStatus: http.StatusBadRequest,
			wantCode:   apperr.PriceRangeInvertedCode,
		},
		{
			name:       "not found",
			err:        apperr.ErrProductNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   apperr.ProductNotFoundCode,
		},
		{
			name:       "internal",
			err:        apperr.InternalErr.WrapParent(errors.New("db down")),
			wantStatus: http.StatusInternalServerError,
			wantCode:   apperr.InternalErrorCode,
		},
		{
			name:       "store unavailable",
			err:        apperr.StoreUnavailableErr,
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   apperr.StoreUnavailableCode,
		},
		{
			name:       "unknown error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL",
		},
	}

	for _, tt := range tests {
		t.Run("Should map "+tt.name, func(t *testing.T) {
			res := apierr.New(tt.err)

			assert.Equal(t, tt.wantStatus, res.StatusCode)
			assert.Equal(t, tt.wantCode, res.Code)
			assert.Nil(t, res.Details)
		})
	}

	t.Run("Should expose validation details", func(t *testing.T) {
		verr := validator.NewDefaultValidator().Validate(body{Name: ptr.New("abcd")})
		require.Error(t, verr)

		res := apierr.New(apperr.ValidationErr.WrapParent(verr))

		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.Equal(t, apperr.ValidationErrorCode, res.Code)
		require.NotNil(t, res.Details)
		require.Len(t, *res.Details, 1)
		assert.Equal(t, "nombre", (*res.Details)[0].Field)
		assert.Equal(t, "must be at most 3 characters long", (*res.Details)[0].Message)
	})
}
