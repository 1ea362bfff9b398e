package cli

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"tienda/internal/api"
	"tienda/internal/cart"
	"tienda/internal/services"
	"tienda/internal/session"
	"tienda/pkg/notify"
)

// Config is everything the CLI needs to reach the backend.
type Config struct {
	APIURL    string
	SessionDB string
	AMQPURL   string
}

// App wires the remote client, the local session and the services the
// commands operate on.
type App struct {
	Sessions *session.Store
	Cart     *cart.Cart
	Auth     *services.AuthService
	Products *services.ProductService
	Checkout *services.CheckoutService
	Orders   *services.OrderService
	Invoices *services.InvoiceService

	events notify.Publisher
}

func newApp(cfg Config) (*App, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.SessionDB), 0o755); err != nil {
		return nil, fmt.Errorf("failed to prepare session directory: %w", err)
	}
	sessions, err := session.Open(cfg.SessionDB)
	if err != nil {
		return nil, err
	}

	// Order events are optional: a missing broker must never block shopping.
	var events notify.Publisher
	if cfg.AMQPURL != "" {
		client, err := notify.NewClient(cfg.AMQPURL)
		if err != nil {
			log.Printf("Warning: order events disabled: %v", err)
		} else {
			events = client
		}
	}

	client := api.NewClient(cfg.APIURL, sessions.Token)
	c := cart.New()
	orders := services.NewOrderService(client)

	return &App{
		Sessions: sessions,
		Cart:     c,
		Auth:     services.NewAuthService(client, sessions),
		Products: services.NewProductService(client),
		Checkout: services.NewCheckoutService(client, c, sessions, events),
		Orders:   orders,
		Invoices: services.NewInvoiceService(client, orders),
		events:   events,
	}, nil
}

// Close releases the broker connection, if one was established.
func (a *App) Close() error {
	if a.events != nil {
		return a.events.Close()
	}
	return nil
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "tienda-session.db"
	}
	return filepath.Join(home, ".tienda", "session.db")
}
