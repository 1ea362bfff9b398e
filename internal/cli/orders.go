package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"tienda/internal/services"

	"github.com/spf13/cobra"
)

func init() {
	ordersCmd := &cobra.Command{
		Use:   "orders",
		Short: "Review and dispatch orders",
	}
	rootCmd.AddCommand(ordersCmd)

	ordersCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List orders, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			orders, err := app.Orders.List(context.Background())
			if err != nil {
				return err
			}
			if len(orders) == 0 {
				fmt.Println("No orders yet.")
				return nil
			}
			for _, o := range orders {
				shipping := "-"
				if o.ShippingMethod != nil {
					shipping = o.ShippingMethod.Name
				}
				fmt.Printf("#%-4d %s  %-10s  $%10.0f  %s (%s)\n",
					o.ID, o.Date.Format("2006-01-02 15:04"), o.Status, o.Total, o.CustomerName, shipping)
			}
			return nil
		},
	})

	var force bool
	dispatchCmd := &cobra.Command{
		Use:   "dispatch <id>",
		Short: "Mark a pending order as dispatched",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid order id %q", args[0])
			}
			if !force && !confirm(fmt.Sprintf("Dispatch order #%d?", id)) {
				fmt.Println("Aborted.")
				return nil
			}
			order, err := app.Orders.Dispatch(context.Background(), id)
			if err != nil {
				if errors.Is(err, services.ErrAlreadyDispatched) {
					fmt.Printf("Order #%d was already dispatched.\n", id)
					return nil
				}
				return err
			}
			fmt.Printf("Order #%d is now %s.\n", order.ID, order.Status)
			return nil
		},
	}
	dispatchCmd.Flags().BoolVar(&force, "force", false, "skip confirmation")
	ordersCmd.AddCommand(dispatchCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "invoice <order-id>",
		Short: "Show the invoice for an order, generating it if needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid order id %q", args[0])
			}
			invoice, lines, err := app.Invoices.Resolve(context.Background(), id)
			if err != nil {
				return err
			}

			fmt.Printf("Invoice %s  (order #%d, issued %s)\n",
				invoice.Number, invoice.OrderID, invoice.IssuedAt.Format("2006-01-02"))
			fmt.Printf("Customer: %s, %s\n\n", invoice.CustomerName, invoice.CustomerAddress)
			for _, line := range lines {
				fmt.Printf("  %dx %-30s $%10.0f  $%10.0f\n",
					line.Quantity, line.Name, line.UnitPrice, line.LineTotal)
			}
			if invoice.ShippingMethod != nil {
				fmt.Printf("  Shipping: %-27s $%10.0f\n",
					invoice.ShippingMethod.Name, invoice.ShippingMethod.Price)
			}
			fmt.Printf("\n  Net:   $%10.0f\n  IVA:   $%10.0f\n  Total: $%10.0f\n",
				invoice.Net, invoice.Tax, invoice.TotalPaid)
			return nil
		},
	})
}
