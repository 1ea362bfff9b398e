package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"tienda/internal/models"
	"tienda/internal/services"

	"github.com/spf13/cobra"
)

func init() {
	productsCmd := &cobra.Command{
		Use:   "products",
		Short: "Manage the product catalog",
	}
	rootCmd.AddCommand(productsCmd)

	productsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all products",
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := app.Products.List(context.Background())
			if err != nil {
				return err
			}
			if len(products) == 0 {
				fmt.Println("The catalog is empty.")
				return nil
			}
			for _, p := range products {
				fmt.Printf("%4d | %-30s | $%10.0f | stock %d\n", p.ID, p.Name, p.Price, p.Stock)
				if p.Description != "" {
					fmt.Printf("       %s\n", p.Description)
				}
			}
			return nil
		},
	})

	// add
	var name, description string
	var price float64
	var stock int
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a product to the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			product := models.Product{
				Name:        name,
				Description: description,
				Price:       price,
				Stock:       stock,
			}
			if err := app.Products.Create(context.Background(), &product); err != nil {
				return err
			}
			fmt.Printf("Product %q created with id %d.\n", product.Name, product.ID)
			return nil
		},
	}
	addCmd.Flags().StringVar(&name, "name", "", "product name")
	addCmd.Flags().StringVar(&description, "description", "", "product description")
	addCmd.Flags().Float64Var(&price, "price", 0, "unit price")
	addCmd.Flags().IntVar(&stock, "stock", 0, "units in stock")
	productsCmd.AddCommand(addCmd)

	// edit: only flags the user passed are changed
	var eName, eDescription string
	var ePrice float64
	var eStock int
	editCmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid product id %q", args[0])
			}
			product, err := app.Products.Get(context.Background(), id)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("name") {
				product.Name = eName
			}
			if cmd.Flags().Changed("description") {
				product.Description = eDescription
			}
			if cmd.Flags().Changed("price") {
				product.Price = ePrice
			}
			if cmd.Flags().Changed("stock") {
				product.Stock = eStock
			}
			if err := app.Products.Update(context.Background(), product); err != nil {
				return err
			}
			fmt.Printf("Product %d updated.\n", product.ID)
			return nil
		},
	}
	editCmd.Flags().StringVar(&eName, "name", "", "product name")
	editCmd.Flags().StringVar(&eDescription, "description", "", "product description")
	editCmd.Flags().Float64Var(&ePrice, "price", 0, "unit price")
	editCmd.Flags().IntVar(&eStock, "stock", 0, "units in stock")
	productsCmd.AddCommand(editCmd)

	// rm
	var force bool
	rmCmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid product id %q", args[0])
			}
			if !force && !confirm(fmt.Sprintf("Remove product %d?", id)) {
				fmt.Println("Aborted.")
				return nil
			}
			if err := app.Products.Delete(context.Background(), id); err != nil {
				if errors.Is(err, services.ErrProductNotFound) {
					fmt.Fprintln(os.Stderr, err)
					return nil
				}
				return err
			}
			fmt.Println("Product removed.")
			return nil
		},
	}
	rmCmd.Flags().BoolVar(&force, "force", false, "skip confirmation")
	productsCmd.AddCommand(rmCmd)
}
