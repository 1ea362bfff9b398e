package models

// Product is a catalog entry as served by the backend. Wire field names
// follow the backend's Spanish API.
type Product struct {
	ID          int     `json:"id"`
	Name        string  `json:"nombre" validate:"required,min=3,max=100"`
	Description string  `json:"descripcion" validate:"omitempty,max=500"`
	Price       float64 `json:"precio" validate:"required,gt=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
}

// ProductRef is the id-only reference used in order creation payloads.
// An order carries one ref per purchased unit so the backend can decrement
// stock once per unit.
type ProductRef struct {
	ID int `json:"id"`
}

// Ref returns the id-only reference for this product.
func (p Product) Ref() ProductRef {
	return ProductRef{ID: p.ID}
}
