package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tienda/internal/api"
	"tienda/internal/cart"
	"tienda/internal/fakebackend"
	"tienda/internal/models"
	"tienda/internal/services"
	"tienda/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capture stdout during cobra execution
func captureOutput(f func() error) (string, error) {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := f()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String(), err
}

// newTestApp wires the commands against an in-process backend with a
// logged-in user, bypassing PersistentPreRunE.
func newTestApp(t *testing.T) *fakebackend.Server {
	t.Helper()

	backend, err := fakebackend.New()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	sessions, err := session.Open(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)

	client := api.NewClient(backend.URL(), sessions.Token)
	c := cart.New()
	orders := services.NewOrderService(client)
	app = &App{
		Sessions: sessions,
		Cart:     c,
		Auth:     services.NewAuthService(client, sessions),
		Products: services.NewProductService(client),
		Checkout: services.NewCheckoutService(client, c, sessions, nil),
		Orders:   orders,
		Invoices: services.NewInvoiceService(client, orders),
	}
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		app = nil
	})

	ctx := context.Background()
	_, err = app.Auth.Register(ctx, models.User{Username: "ana", Email: "ana@example.com", Password: "secreta123"})
	require.NoError(t, err)
	_, err = app.Auth.Login(ctx, "ana", "secreta123")
	require.NoError(t, err)

	return backend
}

func run(args ...string) (string, error) {
	return captureOutput(func() error {
		rootCmd.SetArgs(args)
		return rootCmd.Execute()
	})
}

func TestWhoamiShowsLoggedInUser(t *testing.T) {
	newTestApp(t)

	out, err := run("whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "ana <ana@example.com>")
}

func TestLogoutThenWhoami(t *testing.T) {
	newTestApp(t)

	out, err := run("logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out.")

	out, err = run("whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in.")
}

func TestProductCommands(t *testing.T) {
	newTestApp(t)

	out, err := run("products", "add",
		"--name", "Teclado mecánico",
		"--description", "switches rojos",
		"--price", "35000",
		"--stock", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "created with id 1")

	out, err = run("products", "edit", "1", "--price", "32990")
	require.NoError(t, err)
	assert.Contains(t, out, "Product 1 updated.")

	out, err = run("products", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Teclado mecánico")
	assert.Contains(t, out, "32990")
	assert.Contains(t, out, "switches rojos")

	out, err = run("products", "rm", "--force", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Product removed.")

	out, err = run("products", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "The catalog is empty.")
}

func TestShopSessionPlacesOrder(t *testing.T) {
	backend := newTestApp(t)

	id, err := backend.SeedProduct(models.Product{Name: "Mouse", Price: 12000, Stock: 5})
	require.NoError(t, err)

	script := strings.Join([]string{
		"list",
		fmt.Sprintf("add %d", id),
		fmt.Sprintf("add %d", id),
		"cart",
		"checkout",
		"2", // Envío a domicilio
		"Av. Siempre Viva 123",
		"y",
	}, "\n") + "\n"

	out, err := captureOutput(func() error {
		return runShop(bufio.NewReader(strings.NewReader(script)))
	})
	require.NoError(t, err)
	assert.Contains(t, out, "2x Mouse")
	assert.Contains(t, out, "placed for $27990")

	stock, err := backend.ProductStock(id)
	require.NoError(t, err)
	assert.Equal(t, 3, stock)
	assert.True(t, app.Cart.IsEmpty())
}

func TestShopSessionDecliningConfirmationKeepsCart(t *testing.T) {
	backend := newTestApp(t)

	id, err := backend.SeedProduct(models.Product{Name: "Mouse", Price: 12000, Stock: 5})
	require.NoError(t, err)

	script := fmt.Sprintf("add %d\ncheckout\n1\nCalle Falsa 742\nn\nquit\n", id)
	out, err := captureOutput(func() error {
		return runShop(bufio.NewReader(strings.NewReader(script)))
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Order not placed.")
	assert.Len(t, app.Cart.Lines(), 1)

	stock, err := backend.ProductStock(id)
	require.NoError(t, err)
	assert.Equal(t, 5, stock)
}

func TestDispatchAndInvoiceCommands(t *testing.T) {
	backend := newTestApp(t)

	id, err := backend.SeedProduct(models.Product{Name: "Teclado", Price: 1000, Stock: 10})
	require.NoError(t, err)

	script := fmt.Sprintf("add %d\nadd %d\nadd %d\ncheckout\n1\nCalle Falsa 742\ny\n", id, id, id)
	_, err = captureOutput(func() error {
		return runShop(bufio.NewReader(strings.NewReader(script)))
	})
	require.NoError(t, err)

	out, err := run("orders", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "PENDIENTE")

	out, err = run("orders", "dispatch", "--force", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Order #1 is now DESPACHADO.")

	out, err = run("orders", "dispatch", "--force", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "already dispatched")

	out, err = run("invoice", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Invoice F-000001")
	assert.Contains(t, out, "3x Teclado")
	assert.Contains(t, out, "Net:")
	assert.Contains(t, out, "IVA:")

	// resolving again reuses the stored invoice
	again, err := run("invoice", "1")
	require.NoError(t, err)
	assert.Contains(t, again, "Invoice F-000001")
}
