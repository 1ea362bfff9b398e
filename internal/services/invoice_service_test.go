package services_test

import (
	"context"
	"net/http"
	"testing"

	"tienda/internal/api"
	"tienda/internal/models"
	"tienda/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDeriveTax(t *testing.T) {
	cases := []struct {
		total float64
		net   float64
		tax   float64
	}{
		{total: 25000, net: 21008, tax: 3992},
		{total: 1190, net: 1000, tax: 190},
		{total: 0, net: 0, tax: 0},
		{total: 100, net: 84, tax: 16},
	}

	for _, tc := range cases {
		net, tax := services.DeriveTax(tc.total)
		assert.Equal(t, tc.net, net, "net for total %v", tc.total)
		assert.Equal(t, tc.tax, tax, "tax for total %v", tc.total)
		assert.Equal(t, tc.total, net+tax, "net + tax must reconstruct the total exactly")
	}
}

func TestGroupLines(t *testing.T) {
	products := []models.Product{
		{ID: 5, Name: "Teclado", Price: 1000},
		{ID: 5, Name: "Teclado", Price: 1000},
		{ID: 5, Name: "Teclado", Price: 1000},
	}

	lines := services.GroupLines(products)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, 3000.0, lines[0].LineTotal)
	assert.Equal(t, 1000.0, lines[0].UnitPrice)
}

func TestGroupLines_PreservesFirstSeenOrder(t *testing.T) {
	products := []models.Product{
		{ID: 2, Name: "Mouse", Price: 12000},
		{ID: 1, Name: "Notebook", Price: 450000},
		{ID: 2, Name: "Mouse", Price: 12000},
	}

	lines := services.GroupLines(products)
	require.Len(t, lines, 2)
	assert.Equal(t, 2, lines[0].ProductID)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, 1, lines[1].ProductID)
}

func TestInvoiceService_ResolveFindsExistingInvoice(t *testing.T) {
	remote := new(mockRemote)
	invoices := services.NewInvoiceService(remote, services.NewOrderService(remote))

	remote.On("Do", mock.Anything, http.MethodGet, "/facturas", nil, mock.Anything).
		Run(respondWith(func(out interface{}) {
			*out.(*[]models.Invoice) = []models.Invoice{
				{ID: 1, Number: "F-000001", OrderID: 50, Net: 84034, Tax: 15966, TotalPaid: 100000,
					Products: []models.Product{{ID: 5, Name: "Teclado", Price: 50000}, {ID: 5, Name: "Teclado", Price: 50000}}},
				{ID: 2, Number: "F-000002", OrderID: 51, TotalPaid: 25000},
			}
		})).
		Return(nil).Once()

	invoice, lines, err := invoices.Resolve(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, "F-000001", invoice.Number)
	assert.Equal(t, 84034.0, invoice.Net, "remote breakdown is trusted when present")
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, 100000.0, lines[0].LineTotal)

	// Only the invoice listing was needed.
	remote.AssertNumberOfCalls(t, "Do", 1)
}

func TestInvoiceService_ResolveGeneratesWhenMissing(t *testing.T) {
	remote := new(mockRemote)
	invoices := services.NewInvoiceService(remote, services.NewOrderService(remote))

	order := models.Order{
		ID:     60,
		Status: models.OrderStatusPending,
		Products: []models.Product{
			{ID: 5, Name: "Teclado", Price: 1000},
			{ID: 5, Name: "Teclado", Price: 1000},
			{ID: 5, Name: "Teclado", Price: 1000},
		},
		ShippingMethod: &models.ShippingMethod{ID: 2, Name: "Envío a domicilio", Price: 3990},
	}

	remote.On("Do", mock.Anything, http.MethodGet, "/facturas", nil, mock.Anything).
		Return(nil).Once()
	remote.On("Do", mock.Anything, http.MethodGet, "/pedidos/obtener/60", nil, mock.Anything).
		Run(respondWith(func(out interface{}) {
			*out.(*models.Order) = order
		})).
		Return(nil).Twice() // once to generate, once to back-fill
	remote.On("Do", mock.Anything, http.MethodPost, "/facturas/generar", mock.Anything, mock.Anything).
		Run(respondWith(func(out interface{}) {
			// The backend stores invoices without denormalized products and
			// without an explicit breakdown.
			*out.(*models.Invoice) = models.Invoice{ID: 9, Number: "F-000009", OrderID: 60, TotalPaid: 25000}
		})).
		Return(nil).Once()

	invoice, lines, err := invoices.Resolve(context.Background(), 60)
	require.NoError(t, err)

	// Back-filled from the order for display.
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, 3000.0, lines[0].LineTotal)
	require.NotNil(t, invoice.ShippingMethod)
	assert.Equal(t, 2, invoice.ShippingMethod.ID)

	// Derived breakdown reconstructs the total exactly.
	assert.Equal(t, 21008.0, invoice.Net)
	assert.Equal(t, 3992.0, invoice.Tax)
	assert.Equal(t, invoice.TotalPaid, invoice.Net+invoice.Tax)
	remote.AssertExpectations(t)
}

func TestInvoiceService_ResolveMissingOrderIsTerminal(t *testing.T) {
	remote := new(mockRemote)
	invoices := services.NewInvoiceService(remote, services.NewOrderService(remote))

	remote.On("Do", mock.Anything, http.MethodGet, "/facturas", nil, mock.Anything).
		Return(nil).Once()
	remote.On("Do", mock.Anything, http.MethodGet, "/pedidos/obtener/99", nil, mock.Anything).
		Return(&api.Error{Status: http.StatusNotFound, Message: "Pedido no encontrado"}).Once()

	_, _, err := invoices.Resolve(context.Background(), 99)
	assert.ErrorIs(t, err, services.ErrOrderNotFound)
	remote.AssertNotCalled(t, "Do", mock.Anything, http.MethodPost, "/facturas/generar", mock.Anything, mock.Anything)
}
