// Package cart holds the line items selected during one browsing session.
// The cart lives in memory only: it is lost when the process exits, and it
// is cleared exactly once after a successful order submission.
package cart

import (
	"sync"

	"tienda/internal/models"
)

// Line is one product-and-quantity pairing, with a snapshot of the
// product's display fields taken when it was first added.
type Line struct {
	ProductID int
	Name      string
	Price     float64
	Quantity  int
}

// Subtotal is price times quantity for this line.
func (l Line) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

// Cart is the aggregation engine. At most one line exists per product id;
// adding an already-present product merges into that line. Insertion order
// is preserved for display.
type Cart struct {
	mu    sync.Mutex
	lines []Line
}

// New creates an empty cart.
func New() *Cart {
	return &Cart{}
}

// Add puts one unit of the product in the cart. If a line for the product
// already exists its quantity is incremented instead of inserting a
// duplicate; otherwise a new line with quantity 1 is appended.
func (c *Cart) Add(p models.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.lines {
		if c.lines[i].ProductID == p.ID {
			c.lines[i].Quantity++
			return
		}
	}
	c.lines = append(c.lines, Line{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  1,
	})
}

// Remove drops the whole line for the product, whatever quantity it
// accumulated. There is no decrement-by-one operation.
func (c *Cart) Remove(productID int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.lines[:0]
	for _, l := range c.lines {
		if l.ProductID != productID {
			kept = append(kept, l)
		}
	}
	c.lines = kept
}

// Total recomputes the cart total on every call.
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total float64
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

// Lines returns a copy of the lines in first-add order.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()

	lines := make([]Line, len(c.lines))
	copy(lines, c.lines)
	return lines
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines) == 0
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
}

// UnitRefs expands every line into one id-only reference per unit, the
// shape the backend expects so it can decrement stock once per unit: a
// quantity-2 line for product 5 becomes [{5}, {5}].
func (c *Cart) UnitRefs() []models.ProductRef {
	c.mu.Lock()
	defer c.mu.Unlock()

	var refs []models.ProductRef
	for _, l := range c.lines {
		for i := 0; i < l.Quantity; i++ {
			refs = append(refs, models.ProductRef{ID: l.ProductID})
		}
	}
	return refs
}
