package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"tienda/internal/api"
	"tienda/internal/cart"
	"tienda/internal/models"
	"tienda/internal/session"
	"tienda/pkg/notify"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// guestCustomer is the customer reference used when nobody is logged in.
const guestCustomer = "Invitado"

// Validation failures that block a submission before any network call.
var (
	ErrMissingAddress   = errors.New("a delivery address is required")
	ErrNoShippingMethod = errors.New("a shipping method must be selected")
	ErrEmptyCart        = errors.New("the cart is empty")
)

// fallbackShippingMethods substitutes the remote list when it cannot be
// fetched, so checkout stays usable. Pickup is free.
var fallbackShippingMethods = []models.ShippingMethod{
	{ID: 1, Name: "Retiro en tienda", Price: 0},
	{ID: 2, Name: "Envío a domicilio", Price: 3990, EstimatedTime: "3 a 5 días hábiles"},
	{ID: 3, Name: "Envío express", Price: 7990, EstimatedTime: "24 horas"},
}

// CheckoutInput is what the user must provide before an order can be
// submitted.
type CheckoutInput struct {
	Address          string `validate:"required"`
	ShippingMethodID int    `validate:"required,gt=0"`
}

// CheckoutService composes the cart, a shipping choice and a delivery
// address into an order submission.
type CheckoutService struct {
	client   api.Doer
	cart     *cart.Cart
	sessions *session.Store
	events   notify.Publisher
	validate *validator.Validate
}

// NewCheckoutService creates a new CheckoutService. events may be nil when
// order-created publishing is not configured.
func NewCheckoutService(client api.Doer, c *cart.Cart, sessions *session.Store, events notify.Publisher) *CheckoutService {
	return &CheckoutService{
		client:   client,
		cart:     c,
		sessions: sessions,
		events:   events,
		validate: validator.New(),
	}
}

// Cart returns the cart this checkout operates on.
func (s *CheckoutService) Cart() *cart.Cart {
	return s.cart
}

// ShippingMethods fetches the available delivery options. A fetch failure
// downgrades to the fixed local list instead of blocking checkout; this is
// the only error the client recovers silently.
func (s *CheckoutService) ShippingMethods(ctx context.Context) []models.ShippingMethod {
	var methods []models.ShippingMethod
	if err := s.client.Do(ctx, http.MethodGet, "/envios", nil, &methods); err != nil {
		log.Printf("Warning: could not load shipping methods, using local defaults: %v", err)
		return fallbackShippingMethods
	}
	return methods
}

// DisplayTotal is the checkout preview: cart subtotal plus the selected
// method's price, or the bare subtotal while nothing is selected. The
// authoritative total is assigned by the backend at creation time.
func (s *CheckoutService) DisplayTotal(methods []models.ShippingMethod, selectedID int) float64 {
	total := s.cart.Total()
	for _, m := range methods {
		if m.ID == selectedID {
			total += m.Price
			break
		}
	}
	return total
}

// Submit validates the input, expands the cart into per-unit product
// references and creates the order. The cart is cleared only after the
// backend confirms; any failure leaves it intact so the user can retry.
func (s *CheckoutService) Submit(ctx context.Context, input CheckoutInput) (*models.Order, error) {
	input.Address = strings.TrimSpace(input.Address)
	if err := s.validate.Struct(input); err != nil {
		return nil, checkoutValidationError(err)
	}
	if s.cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	request := models.OrderRequest{
		CustomerName:    s.customerName(),
		CustomerAddress: input.Address,
		Products:        s.cart.UnitRefs(),
		ShippingMethod:  models.ShippingRef{ID: input.ShippingMethodID},
	}

	var created models.Order
	if err := s.client.Do(ctx, http.MethodPost, "/pedidos/crear", request, &created); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.cart.Clear()
	s.publishOrderCreated(created)
	return &created, nil
}

func (s *CheckoutService) customerName() string {
	if user := s.sessions.Current(); user != nil {
		return user.Username
	}
	return guestCustomer
}

func (s *CheckoutService) publishOrderCreated(order models.Order) {
	if s.events == nil {
		return
	}
	event := map[string]interface{}{
		"eventId":  uuid.New().String(),
		"pedidoId": order.ID,
		"cliente":  order.CustomerName,
		"total":    order.Total,
	}
	if err := s.events.PublishOrderCreated(event); err != nil {
		log.Printf("Warning: failed to publish order created event for order %d: %v", order.ID, err)
	}
}

// checkoutValidationError maps validator output onto the user-facing
// sentinel errors.
func checkoutValidationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, e := range verrs {
			switch e.Field() {
			case "Address":
				return ErrMissingAddress
			case "ShippingMethodID":
				return ErrNoShippingMethod
			}
		}
	}
	return err
}
