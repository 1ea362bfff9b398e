package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"tienda/internal/api"
	"tienda/internal/models"
)

var (
	// ErrOrderNotFound is terminal for the view that asked: the caller goes
	// back to a listing instead of retrying.
	ErrOrderNotFound = errors.New("order not found")
	// ErrAlreadyDispatched rejects a second dispatch of the same order.
	ErrAlreadyDispatched = errors.New("order is already dispatched")
)

// OrderService handles order listing and the dispatch transition.
type OrderService struct {
	client api.Doer
}

// NewOrderService creates a new OrderService.
func NewOrderService(client api.Doer) *OrderService {
	return &OrderService{client: client}
}

// List retrieves all orders, most recent first.
func (s *OrderService) List(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := s.client.Do(ctx, http.MethodGet, "/pedidos", nil, &orders); err != nil {
		return nil, err
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].Date.After(orders[j].Date)
	})
	return orders, nil
}

// Get retrieves a single order by its id.
func (s *OrderService) Get(ctx context.Context, id int) (*models.Order, error) {
	var order models.Order
	err := s.client.Do(ctx, http.MethodGet, fmt.Sprintf("/pedidos/obtener/%d", id), nil, &order)
	if err != nil {
		if api.IsNotFound(err) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

// Dispatch moves a pending order to DESPACHADO. The transition is one-way;
// dispatching an order that is already dispatched returns
// ErrAlreadyDispatched without touching the backend. Asking the user for
// confirmation first is the caller's job.
func (s *OrderService) Dispatch(ctx context.Context, id int) (*models.Order, error) {
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == models.OrderStatusDispatched {
		return nil, ErrAlreadyDispatched
	}

	// The backend expects the bare status string as the body.
	path := fmt.Sprintf("/pedidos/actualizar-estado/%d", id)
	if err := s.client.Do(ctx, http.MethodPut, path, models.OrderStatusDispatched, nil); err != nil {
		return nil, fmt.Errorf("failed to dispatch order %d: %w", id, err)
	}

	order.Status = models.OrderStatusDispatched
	return order, nil
}
