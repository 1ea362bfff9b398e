package services

import (
	"context"
	"fmt"
	"math"
	"net/http"

	"tienda/internal/api"
	"tienda/internal/models"
)

// taxRate is the flat IVA applied when an invoice arrives without an
// explicit net/tax breakdown.
const taxRate = 0.19

// InvoiceLine is one displayable invoice row after grouping the per-unit
// product entries.
type InvoiceLine struct {
	ProductID   int
	Name        string
	Description string
	UnitPrice   float64
	Quantity    int
	LineTotal   float64
}

// InvoiceService locates or generates the invoice for an order and prepares
// it for display.
type InvoiceService struct {
	client api.Doer
	orders *OrderService
}

// NewInvoiceService creates a new InvoiceService.
func NewInvoiceService(client api.Doer, orders *OrderService) *InvoiceService {
	return &InvoiceService{client: client, orders: orders}
}

// Resolve produces the displayable invoice for an order: it finds an
// existing invoice or asks the backend to generate one, back-fills line
// items from the originating order when the stored invoice carries none
// (a read-time enrichment, never persisted), groups the per-unit entries
// into display rows and derives the net/IVA breakdown when the backend did
// not split it. A missing order surfaces as ErrOrderNotFound, terminal for
// the invoice view.
func (s *InvoiceService) Resolve(ctx context.Context, orderID int) (*models.Invoice, []InvoiceLine, error) {
	invoice, err := s.findOrGenerate(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	if len(invoice.Products) == 0 {
		order, err := s.orders.Get(ctx, orderID)
		if err != nil {
			return nil, nil, err
		}
		invoice.Products = order.Products
		if invoice.ShippingMethod == nil {
			invoice.ShippingMethod = order.ShippingMethod
		}
	}

	if invoice.Net == 0 && invoice.Tax == 0 && invoice.TotalPaid != 0 {
		invoice.Net, invoice.Tax = DeriveTax(invoice.TotalPaid)
	}

	return invoice, GroupLines(invoice.Products), nil
}

// findOrGenerate looks the invoice up among all known invoices and falls
// back to generating one from the order. Generation is idempotent on the
// backend, so repeated resolutions of the same order yield the same invoice.
func (s *InvoiceService) findOrGenerate(ctx context.Context, orderID int) (*models.Invoice, error) {
	var invoices []models.Invoice
	if err := s.client.Do(ctx, http.MethodGet, "/facturas", nil, &invoices); err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	for i := range invoices {
		if invoices[i].OrderID == orderID {
			return &invoices[i], nil
		}
	}

	order, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	var invoice models.Invoice
	if err := s.client.Do(ctx, http.MethodPost, "/facturas/generar", order, &invoice); err != nil {
		return nil, fmt.Errorf("failed to generate invoice for order %d: %w", orderID, err)
	}
	return &invoice, nil
}

// GroupLines collapses per-unit product entries into one row per product
// id, preserving first-seen order. Quantity is the number of entries for
// the id and the line total the sum of their unit prices.
func GroupLines(products []models.Product) []InvoiceLine {
	index := make(map[int]int)
	var lines []InvoiceLine
	for _, p := range products {
		if i, ok := index[p.ID]; ok {
			lines[i].Quantity++
			lines[i].LineTotal += p.Price
			continue
		}
		index[p.ID] = len(lines)
		lines = append(lines, InvoiceLine{
			ProductID:   p.ID,
			Name:        p.Name,
			Description: p.Description,
			UnitPrice:   p.Price,
			Quantity:    1,
			LineTotal:   p.Price,
		})
	}
	return lines
}

// DeriveTax splits a gross total into net and IVA at the flat 19% rate.
// The net is rounded and the tax taken as the remainder, so the two always
// add back to the exact total.
func DeriveTax(total float64) (net, tax float64) {
	net = math.Round(total / (1 + taxRate))
	tax = total - net
	return net, tax
}
