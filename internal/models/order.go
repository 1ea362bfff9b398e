package models

import "time"

// Order status values as the backend serializes them. The transition is
// one-way: PENDIENTE -> DESPACHADO.
const (
	OrderStatusPending    = "PENDIENTE"
	OrderStatusDispatched = "DESPACHADO"
)

// Order is a placed order as returned by the backend. Products carries one
// entry per purchased unit: a quantity-2 cart line arrives as two identical
// entries.
type Order struct {
	ID              int             `json:"id"`
	CustomerName    string          `json:"nombreCliente"`
	CustomerAddress string          `json:"direccionCliente"`
	Products        []Product       `json:"productos"`
	ShippingMethod  *ShippingMethod `json:"metodoEnvio,omitempty"`
	Total           float64         `json:"total"`
	Date            time.Time       `json:"fecha"`
	Status          string          `json:"estado"`
}

// OrderRequest is the creation payload sent to POST /pedidos/crear.
// Total, date and initial status are assigned by the backend.
type OrderRequest struct {
	CustomerName    string       `json:"nombreCliente"`
	CustomerAddress string       `json:"direccionCliente"`
	Products        []ProductRef `json:"productos"`
	ShippingMethod  ShippingRef  `json:"metodoEnvio"`
}
