package models

// ShippingMethod is one delivery option offered at checkout.
type ShippingMethod struct {
	ID            int     `json:"id"`
	Name          string  `json:"nombre"`
	Price         float64 `json:"precio"`
	EstimatedTime string  `json:"tiempoEstimado,omitempty"`
}

// ShippingRef references a shipping method by id in order creation payloads.
type ShippingRef struct {
	ID int `json:"id"`
}
