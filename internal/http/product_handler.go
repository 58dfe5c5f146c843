package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/product-catalog/internal/apperr"
	"github.com/tuanvumaihuynh/product-catalog/internal/model"
	"github.com/tuanvumaihuynh/product-catalog/internal/service"
	"github.com/tuanvumaihuynh/product-catalog/pkg/ptr"
)

const maxBodyBytes = 1 << 20

type productRequest struct {
	ID       *int64           `json:"id"`
	Name     *string          `json:"nombre"`
	Price    *decimal.Decimal `json:"precio"`
	ImageURL *string          `json:"imagenUrl"`
}

type productResponse struct {
	ID       int64         `json:"id"`
	Name     string        `json:"nombre"`
	Price    decimalNumber `json:"precio"`
	ImageURL *string       `json:"imagenUrl"`
}

// decimalNumber renders a decimal as a bare JSON number.
type decimalNumber decimal.Decimal

func (d decimalNumber) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(d).String()), nil
}

func toProductResponse(p model.Product) productResponse {
	return productResponse{
		ID:       p.ID,
		Name:     p.Name,
		Price:    decimalNumber(p.Price),
		ImageURL: p.ImageURL,
	}
}

func toProductResponses(products []model.Product) []productResponse {
	items := make([]productResponse, 0, len(products))
	for _, p := range products {
		items = append(items, toProductResponse(p))
	}
	return items
}

type productHandler struct {
	logger     *slog.Logger
	productSvc service.ProductService
}

func newProductHandler(logger *slog.Logger, productSvc service.ProductService) *productHandler {
	return &productHandler{
		logger:     logger,
		productSvc: productSvc,
	}
}

func (h *productHandler) ListProducts(w http.ResponseWriter, r *http.Request) error {
	products, err := h.productSvc.ListProducts(r.Context())
	if err != nil {
		return fmt.Errorf("product service list products: %w", err)
	}

	h.writeJSON(w, r, http.StatusOK, toProductResponses(products))
	return nil
}

func (h *productHandler) GetProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := productIDParam(r)
	if err != nil {
		return err
	}

	found, err := h.productSvc.FindProductByID(r.Context(), &id)
	if err != nil {
		return fmt.Errorf("product service find product by id: %w", err)
	}

	product, ok := found.Get()
	if !ok {
		return apperr.ErrProductNotFound
	}

	h.writeJSON(w, r, http.StatusOK, toProductResponse(product))
	return nil
}

// CreateProduct always inserts; an id in the body is ignored.
func (h *productHandler) CreateProduct(w http.ResponseWriter, r *http.Request) error {
	params, err := decodeProductRequest(w, r)
	if err != nil {
		return err
	}
	if params != nil {
		params.ID = nil
	}

	product, err := h.productSvc.SaveProduct(r.Context(), params)
	if err != nil {
		return fmt.Errorf("product service save product: %w", err)
	}

	h.writeJSON(w, r, http.StatusCreated, toProductResponse(product))
	return nil
}

// UpdateProduct overwrites the product at the path id, which takes precedence
// over any id in the body.
func (h *productHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := productIDParam(r)
	if err != nil {
		return err
	}

	params, err := decodeProductRequest(w, r)
	if err != nil {
		return err
	}

	exists, err := h.productSvc.ProductExistsByID(r.Context(), &id)
	if err != nil {
		return fmt.Errorf("product service product exists by id: %w", err)
	}
	if !exists {
		return apperr.ErrProductNotFound
	}

	if params != nil {
		params.ID = ptr.New(id)
	}

	product, err := h.productSvc.SaveProduct(r.Context(), params)
	if err != nil {
		return fmt.Errorf("product service save product: %w", err)
	}

	h.writeJSON(w, r, http.StatusOK, toProductResponse(product))
	return nil
}

func (h *productHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := productIDParam(r)
	if err != nil {
		return err
	}

	deleted, err := h.productSvc.DeleteProductByID(r.Context(), &id)
	if err != nil {
		return fmt.Errorf("product service delete product by id: %w", err)
	}
	if !deleted {
		return apperr.ErrProductNotFound
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *productHandler) SearchProductsByName(w http.ResponseWriter, r *http.Request) error {
	var name *string
	if err := runtime.BindQueryParameter("form", true, false, "nombre", r.URL.Query(), &name); err != nil {
		return apperr.ErrMalformedQuery.WrapParent(err)
	}
	if name == nil || strings.TrimSpace(*name) == "" {
		return apperr.ErrSearchNameRequired
	}

	products, err := h.productSvc.FindProductsByNameContaining(r.Context(), name)
	if err != nil {
		return fmt.Errorf("product service find products by name: %w", err)
	}

	h.writeJSON(w, r, http.StatusOK, toProductResponses(products))
	return nil
}

func (h *productHandler) SearchProductsByPrice(w http.ResponseWriter, r *http.Request) error {
	minPrice, err := priceQueryParam(r, "precioMinimo")
	if err != nil {
		return err
	}
	maxPrice, err := priceQueryParam(r, "precioMaximo")
	if err != nil {
		return err
	}

	products, err := h.productSvc.FindProductsByPriceBetween(r.Context(), minPrice, maxPrice)
	if err != nil {
		return fmt.Errorf("product service find products by price: %w", err)
	}

	h.writeJSON(w, r, http.StatusOK, toProductResponses(products))
	return nil
}

func (h *productHandler) CountProducts(w http.ResponseWriter, r *http.Request) error {
	count, err := h.productSvc.CountProducts(r.Context())
	if err != nil {
		return fmt.Errorf("product service count products: %w", err)
	}

	h.writeJSON(w, r, http.StatusOK, count)
	return nil
}

func (h *productHandler) ProductExists(w http.ResponseWriter, r *http.Request) error {
	id, err := productIDParam(r)
	if err != nil {
		return err
	}

	exists, err := h.productSvc.ProductExistsByID(r.Context(), &id)
	if err != nil {
		return fmt.Errorf("product service product exists by id: %w", err)
	}

	h.writeJSON(w, r, http.StatusOK, exists)
	return nil
}

func (h *productHandler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.ErrorContext(r.Context(), "error encoding response", slog.Any("error", err))
	}
}

func productIDParam(r *http.Request) (int64, error) {
	var id int64
	if err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	}); err != nil {
		return 0, apperr.ErrMalformedID.WrapParent(err)
	}

	return id, nil
}

// priceQueryParam returns nil when the parameter is absent.
func priceQueryParam(r *http.Request, name string) (*decimal.Decimal, error) {
	var raw *string
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &raw); err != nil {
		return nil, apperr.ErrMalformedQuery.WrapParent(err)
	}
	if raw == nil {
		return nil, nil
	}

	price, err := decimal.NewFromString(strings.TrimSpace(*raw))
	if err != nil {
		return nil, apperr.ErrMalformedPrice.WrapParent(fmt.Errorf("parse %s: %w", name, err))
	}

	return &price, nil
}

// decodeProductRequest returns nil params for an empty or null body.
func decodeProductRequest(w http.ResponseWriter, r *http.Request) (*service.SaveProductParams, error) {
	var body *productRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		return nil, apperr.ErrMalformedRequestBody.WrapParent(err)
	}
	if body == nil {
		return nil, nil
	}

	return &service.SaveProductParams{
		ID:       body.ID,
		Name:     body.Name,
		Price:    body.Price,
		ImageURL: body.ImageURL,
	}, nil
}
