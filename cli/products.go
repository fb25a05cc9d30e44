package cli

import (
	"github.com/spf13/cobra"
)

func NewProductsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse the product catalog",
	}
	cmd.AddCommand(newProductsListCommand(opts))
	cmd.AddCommand(newProductsGetCommand(opts))
	return cmd
}

func newProductsListCommand(opts *RootOptions) *cobra.Command {
	var category, search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products, optionally filtered by category or search text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := opts.client().ListProducts(cmd.Context(), category, search)
			if err != nil {
				return err
			}
			return opts.output(cmd).Products(products)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "exact category (case-insensitive)")
	cmd.Flags().StringVar(&search, "search", "", "substring of name or description")
	return cmd
}

func newProductsGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			product, err := opts.client().GetProduct(cmd.Context(), id)
			if err != nil {
				return err
			}
			return opts.output(cmd).Product(product)
		},
	}
}
