package models

import "time"

// Invoice is the billing document derived from an order. The backend may
// store it without denormalized product rows, in which case Products comes
// back empty and has to be filled in from the originating order for display.
// Invariant: Net + Tax == TotalPaid.
type Invoice struct {
	ID              int             `json:"id"`
	Number          string          `json:"numeroFactura"`
	IssuedAt        time.Time       `json:"fechaEmision"`
	CustomerName    string          `json:"nombreCliente"`
	CustomerAddress string          `json:"direccionCliente"`
	OrderID         int             `json:"pedidoId"`
	Products        []Product       `json:"productos,omitempty"`
	ShippingMethod  *ShippingMethod `json:"metodoEnvio,omitempty"`
	Net             float64         `json:"montoNeto"`
	Tax             float64         `json:"montoIva"`
	TotalPaid       float64         `json:"totalPagado"`
}
