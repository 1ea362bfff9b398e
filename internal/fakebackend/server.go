// Package fakebackend runs an in-process stand-in for the remote storefront
// API so integration tests can exercise the real HTTP client end to end.
// Paths, payload shapes and error bodies mirror the production backend:
// Spanish endpoints, bearer-token auth, per-unit stock decrements on order
// creation and invoices stored without denormalized product rows.
package fakebackend

import (
	"fmt"
	"net"
	"time"

	"tienda/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type productRecord struct {
	ID          int `gorm:"primaryKey"`
	Name        string
	Description string
	Price       float64
	Stock       int
}

type userRecord struct {
	ID       int    `gorm:"primaryKey"`
	Username string `gorm:"uniqueIndex"`
	Email    string `gorm:"uniqueIndex"`
	Password string // stored as-is; this backend only ever runs in tests
}

type shippingRecord struct {
	ID            int `gorm:"primaryKey"`
	Name          string
	Price         float64
	EstimatedTime string
}

type orderRecord struct {
	ID              int `gorm:"primaryKey"`
	CustomerName    string
	CustomerAddress string
	ShippingID      int
	Total           float64
	Date            time.Time
	Status          string
}

// orderUnitRecord is one purchased unit, with the product display fields
// snapshotted at order time.
type orderUnitRecord struct {
	ID          int `gorm:"primaryKey"`
	OrderID     int `gorm:"index"`
	ProductID   int
	Name        string
	Description string
	Price       float64
}

type invoiceRecord struct {
	ID              int `gorm:"primaryKey"`
	Number          string
	IssuedAt        time.Time
	CustomerName    string
	CustomerAddress string
	OrderID         int `gorm:"uniqueIndex"`
	Net             float64
	Tax             float64
	TotalPaid       float64
}

// Server is the in-process backend.
type Server struct {
	app    *fiber.App
	db     *gorm.DB
	url    string
	secret []byte
}

// New starts the backend on a random localhost port with an isolated
// in-memory database and the default shipping methods seeded.
func New() (*Server, error) {
	// A named shared-memory database keeps GORM's pooled connections on the
	// same data while isolating concurrently running servers.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}

	err = db.AutoMigrate(
		&productRecord{},
		&userRecord{},
		&shippingRecord{},
		&orderRecord{},
		&orderUnitRecord{},
		&invoiceRecord{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	methods := []shippingRecord{
		{Name: "Retiro en tienda", Price: 0},
		{Name: "Envío a domicilio", Price: 3990, EstimatedTime: "3 a 5 días hábiles"},
		{Name: "Envío express", Price: 7990, EstimatedTime: "24 horas"},
	}
	if err := db.Create(&methods).Error; err != nil {
		return nil, fmt.Errorf("failed to seed shipping methods: %w", err)
	}

	s := &Server{
		db:     db,
		secret: []byte(uuid.NewString()),
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Post("/usuarios/registrar", s.handleRegister)
	app.Post("/usuarios/login", s.handleLogin)

	protected := app.Group("", s.authRequired)
	protected.Get("/productos", s.handleListProducts)
	protected.Get("/productos/:id", s.handleGetProduct)
	protected.Post("/productos/crear", s.handleCreateProduct)
	protected.Put("/productos/actualizar/:id", s.handleUpdateProduct)
	protected.Delete("/productos/eliminar/:id", s.handleDeleteProduct)
	protected.Get("/envios", s.handleListShippingMethods)
	protected.Post("/pedidos/crear", s.handleCreateOrder)
	protected.Get("/pedidos", s.handleListOrders)
	protected.Get("/pedidos/obtener/:id", s.handleGetOrder)
	protected.Put("/pedidos/actualizar-estado/:id", s.handleUpdateOrderStatus)
	protected.Get("/facturas", s.handleListInvoices)
	protected.Post("/facturas/generar", s.handleGenerateInvoice)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %w", err)
	}
	s.app = app
	s.url = "http://" + ln.Addr().String()

	go app.Listener(ln) //nolint:errcheck // shut down via Close

	return s, nil
}

// URL is the base URL to point an api.Client at.
func (s *Server) URL() string {
	return s.url
}

// Close shuts the server down.
func (s *Server) Close() error {
	return s.app.Shutdown()
}

// SeedProduct inserts a product directly, bypassing auth. Test setup helper.
func (s *Server) SeedProduct(p models.Product) (int, error) {
	rec := productRecord{Name: p.Name, Description: p.Description, Price: p.Price, Stock: p.Stock}
	if err := s.db.Create(&rec).Error; err != nil {
		return 0, err
	}
	return rec.ID, nil
}

// ProductStock reports the current stock of a product, for assertions on
// per-unit decrements.
func (s *Server) ProductStock(id int) (int, error) {
	var rec productRecord
	if err := s.db.First(&rec, "id = ?", id).Error; err != nil {
		return 0, err
	}
	return rec.Stock, nil
}

// InvoiceCount reports how many invoices exist, for idempotency assertions.
func (s *Server) InvoiceCount() (int, error) {
	var count int64
	if err := s.db.Model(&invoiceRecord{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}
