package apperr

import (
	"errors"

	"github.com/tuanvumaihuynh/product-catalog/pkg/zerror"
)

const (
	ProductIDRequiredCode    = "PRODUCT_ID_REQUIRED"
	ProductRequiredCode      = "PRODUCT_REQUIRED"
	ProductNameRequiredCode  = "PRODUCT_NAME_REQUIRED"
	ProductPriceInvalidCode  = "PRODUCT_PRICE_INVALID"
	PriceRangeRequiredCode   = "PRICE_RANGE_REQUIRED"
	PriceRangeNegativeCode   = "PRICE_RANGE_NEGATIVE"
	PriceRangeInvertedCode   = "PRICE_RANGE_INVERTED"
	SearchNameRequiredCode   = "SEARCH_NAME_REQUIRED"
	MalformedIDCode          = "MALFORMED_ID"
	MalformedRequestBodyCode = "MALFORMED_REQUEST_BODY"
	MalformedPriceCode       = "MALFORMED_PRICE"
	MalformedQueryCode       = "MALFORMED_QUERY"

	ValidationErrorCode  = "VALIDATION_FAILED"
	ProductNotFoundCode  = "PRODUCT_NOT_FOUND"
	InternalErrorCode    = "INTERNAL"
	StoreUnavailableCode = "STORE_UNAVAILABLE"
)

var (
	ValidationErr = zerror.NewValidationFailed(ValidationErrorCode, "validation error")

	ErrProductIDRequired    = zerror.NewBadRequest(ProductIDRequiredCode, "product id must not be null")
	ErrProductRequired      = zerror.NewBadRequest(ProductRequiredCode, "product must not be null")
	ErrProductNameRequired  = zerror.NewBadRequest(ProductNameRequiredCode, "product name must not be blank")
	ErrProductPriceInvalid  = zerror.NewBadRequest(ProductPriceInvalidCode, "product price must be present and not negative")
	ErrPriceRangeRequired   = zerror.NewBadRequest(PriceRangeRequiredCode, "price range bounds must not be null")
	ErrPriceRangeNegative   = zerror.NewBadRequest(PriceRangeNegativeCode, "price range bounds must not be negative")
	ErrPriceRangeInverted   = zerror.NewBadRequest(PriceRangeInvertedCode, "minimum price must not be greater than maximum price")
	ErrSearchNameRequired   = zerror.NewBadRequest(SearchNameRequiredCode, "search name must not be blank")
	ErrMalformedID          = zerror.NewBadRequest(MalformedIDCode, "product id is malformed")
	ErrMalformedRequestBody = zerror.NewBadRequest(MalformedRequestBodyCode, "request body is malformed")
	ErrMalformedPrice       = zerror.NewBadRequest(MalformedPriceCode, "price must be a decimal number")
	ErrMalformedQuery       = zerror.NewBadRequest(MalformedQueryCode, "query parameter is malformed")

	ErrProductNotFound = zerror.NewNotFound(ProductNotFoundCode, "product not found")

	InternalErr         = zerror.NewInternalServerError(InternalErrorCode, "an unexpected error occurred")
	StoreUnavailableErr = zerror.NewServiceUnavailable(StoreUnavailableCode, "store is unavailable")
)

// IsInvalidArgument reports whether err is a client input error.
func IsInvalidArgument(err error) bool {
	var zErr zerror.ZError
	if !errors.As(err, &zErr) {
		return false
	}
	return zErr.Status() == zerror.StatusBadRequest || zErr.Status() == zerror.StatusValidationFailed
}

// IsNotFound reports whether err marks a missing product.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound)
}
