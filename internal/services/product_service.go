package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"tienda/internal/api"
	"tienda/internal/models"

	"github.com/go-playground/validator/v10"
)

// ErrProductNotFound is returned when the backend has no product for the
// requested id.
var ErrProductNotFound = errors.New("product not found")

// ProductService handles catalog browsing and management.
type ProductService struct {
	client   api.Doer
	validate *validator.Validate
}

// NewProductService creates a new ProductService.
func NewProductService(client api.Doer) *ProductService {
	return &ProductService{
		client:   client,
		validate: validator.New(),
	}
}

// List retrieves the whole catalog.
func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := s.client.Do(ctx, http.MethodGet, "/productos", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Get retrieves a single product by its id.
func (s *ProductService) Get(ctx context.Context, id int) (*models.Product, error) {
	var product models.Product
	err := s.client.Do(ctx, http.MethodGet, fmt.Sprintf("/productos/%d", id), nil, &product)
	if err != nil {
		if api.IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// Create validates the payload and creates a new catalog entry. The
// backend-assigned fields are written back into product.
func (s *ProductService) Create(ctx context.Context, product *models.Product) error {
	if err := s.validate.Struct(product); err != nil {
		return fmt.Errorf("invalid product: %w", err)
	}
	if err := s.client.Do(ctx, http.MethodPost, "/productos/crear", product, product); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update validates the payload and updates an existing catalog entry.
func (s *ProductService) Update(ctx context.Context, product *models.Product) error {
	if product.ID == 0 {
		return fmt.Errorf("a product id is required for update")
	}
	if err := s.validate.Struct(product); err != nil {
		return fmt.Errorf("invalid product: %w", err)
	}
	path := fmt.Sprintf("/productos/actualizar/%d", product.ID)
	if err := s.client.Do(ctx, http.MethodPut, path, product, product); err != nil {
		return fmt.Errorf("failed to update product %d: %w", product.ID, err)
	}
	return nil
}

// Delete removes a product. A referential-integrity rejection from the
// backend (the product appears in existing orders) is translated into a
// friendly message instead of the raw error.
func (s *ProductService) Delete(ctx context.Context, id int) error {
	err := s.client.Do(ctx, http.MethodDelete, fmt.Sprintf("/productos/eliminar/%d", id), nil, nil)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
			return fmt.Errorf("product %d cannot be deleted: it has orders associated with it", id)
		}
		if api.IsNotFound(err) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product %d: %w", id, err)
	}
	return nil
}
