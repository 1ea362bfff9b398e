package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"tienda/internal/services"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "shop",
		Short: "Interactive shopping session",
		Long: `Browse the catalog, fill a cart and place an order.

Commands inside the session:
  list            show the catalog
  add <id>        add one unit of a product to the cart
  remove <id>     remove a product from the cart entirely
  cart            show the cart contents and total
  checkout        choose shipping, confirm and place the order
  quit            leave without ordering`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShop(bufio.NewReader(os.Stdin))
		},
	})
}

func runShop(in *bufio.Reader) error {
	ctx := context.Background()
	fmt.Println("Type 'list' to browse, 'add <id>' to shop, 'checkout' when done.")

	for {
		fmt.Print("shop> ")
		line, err := in.ReadString('\n')
		if err != nil {
			return nil
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "exit":
			return nil

		case "list":
			products, err := app.Products.List(ctx)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			for _, p := range products {
				fmt.Printf("%4d | %-30s | $%10.0f | stock %d\n", p.ID, p.Name, p.Price, p.Stock)
			}

		case "add":
			if len(fields) != 2 {
				fmt.Println("usage: add <id>")
				continue
			}
			id, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Printf("invalid product id %q\n", fields[1])
				continue
			}
			product, err := app.Products.Get(ctx, id)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			app.Cart.Add(*product)
			fmt.Printf("Added %s. Cart total: $%.0f\n", product.Name, app.Cart.Total())

		case "remove":
			if len(fields) != 2 {
				fmt.Println("usage: remove <id>")
				continue
			}
			id, err := strconv.Atoi(fields[1])
			if err != nil {
				fmt.Printf("invalid product id %q\n", fields[1])
				continue
			}
			app.Cart.Remove(id)
			fmt.Printf("Removed. Cart total: $%.0f\n", app.Cart.Total())

		case "cart":
			printCart()

		case "checkout":
			done, err := runCheckout(ctx, in)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			if done {
				return nil
			}

		default:
			fmt.Printf("unknown command %q\n", fields[0])
		}
	}
}

func printCart() {
	lines := app.Cart.Lines()
	if len(lines) == 0 {
		fmt.Println("The cart is empty.")
		return
	}
	for _, l := range lines {
		fmt.Printf("  %dx %-30s $%10.0f  $%10.0f\n", l.Quantity, l.Name, l.Price, l.Subtotal())
	}
	fmt.Printf("  Total: $%.0f\n", app.Cart.Total())
}

// runCheckout walks the user through shipping selection and confirmation.
// It reports whether an order was placed.
func runCheckout(ctx context.Context, in *bufio.Reader) (bool, error) {
	if app.Cart.IsEmpty() {
		fmt.Println("The cart is empty.")
		return false, nil
	}
	printCart()

	methods := app.Checkout.ShippingMethods(ctx)
	fmt.Println("\nShipping methods:")
	for _, m := range methods {
		if m.EstimatedTime != "" {
			fmt.Printf("  %d) %-25s $%8.0f  (%s)\n", m.ID, m.Name, m.Price, m.EstimatedTime)
		} else {
			fmt.Printf("  %d) %-25s $%8.0f\n", m.ID, m.Name, m.Price)
		}
	}

	fmt.Print("Shipping method: ")
	choice, err := in.ReadString('\n')
	if err != nil {
		return false, err
	}
	methodID, err := strconv.Atoi(strings.TrimSpace(choice))
	if err != nil {
		return false, fmt.Errorf("invalid shipping method %q", strings.TrimSpace(choice))
	}

	fmt.Print("Delivery address: ")
	address, err := in.ReadString('\n')
	if err != nil {
		return false, err
	}

	fmt.Printf("Total to pay: $%.0f. Confirm? (y/N): ", app.Checkout.DisplayTotal(methods, methodID))
	resp, err := in.ReadString('\n')
	if err != nil {
		return false, err
	}
	if r := strings.TrimSpace(resp); r != "y" && r != "Y" {
		fmt.Println("Order not placed.")
		return false, nil
	}

	order, err := app.Checkout.Submit(ctx, services.CheckoutInput{
		Address:          strings.TrimSpace(address),
		ShippingMethodID: methodID,
	})
	if err != nil {
		return false, err
	}
	fmt.Printf("Order #%d placed for $%.0f. Thank you!\n", order.ID, order.Total)
	return true, nil
}
