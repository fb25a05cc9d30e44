package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeffsasaki/storefront/cart"
	"github.com/jeffsasaki/storefront/models"
)

func NewOrdersCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Place and inspect orders",
	}
	cmd.AddCommand(newOrdersGetCommand(opts))
	cmd.AddCommand(newOrdersPlaceCommand(opts))
	return cmd
}

func newOrdersGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show an order with its line items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			order, err := opts.client().GetOrder(cmd.Context(), id)
			if err != nil {
				return err
			}
			return opts.output(cmd).Order(order)
		},
	}
}

type placeOptions struct {
	name    string
	email   string
	address string
	items   []string
}

func newOrdersPlaceCommand(opts *RootOptions) *cobra.Command {
	po := &placeOptions{}

	cmd := &cobra.Command{
		Use:   "place",
		Short: "Place an order",
		Example: `  storefront-cli orders place --name "Ada Lovelace" --email ada@example.com \
    --address "12 Analytical St" --item 1x2 --item 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			api := opts.client()
			ctx := cart.NewContext(cmd.Context(), cart.NewHolder())
			if err := fillCart(ctx, api, po.items); err != nil {
				return err
			}

			c := cart.FromContext(ctx).Cart()
			out := opts.output(cmd)
			out.Cart(c)

			order, err := api.CreateOrder(ctx, models.CreateOrderRequest{
				CustomerName:    po.name,
				CustomerEmail:   po.email,
				CustomerAddress: po.address,
				Items:           c.LineItems(),
			})
			if err != nil {
				return err
			}
			cart.FromContext(ctx).Clear()
			return out.Order(order)
		},
	}

	cmd.Flags().StringVar(&po.name, "name", "", "customer name")
	cmd.Flags().StringVar(&po.email, "email", "", "customer email")
	cmd.Flags().StringVar(&po.address, "address", "", "shipping address")
	cmd.Flags().StringArrayVar(&po.items, "item", nil, "product as ID or IDxQTY (repeatable)")
	return cmd
}

// fillCart looks up every requested product and adds it to the cart held in
// ctx. Repeated ids merge into one line.
func fillCart(ctx context.Context, api *APIClient, items []string) error {
	if len(items) == 0 {
		return fmt.Errorf("at least one --item is required")
	}
	holder := cart.FromContext(ctx)
	for _, raw := range items {
		id, qty, err := parseItem(raw)
		if err != nil {
			return err
		}
		product, err := api.GetProduct(ctx, id)
		if err != nil {
			return fmt.Errorf("item %q: %w", raw, err)
		}
		holder.Update(func(c cart.Cart) cart.Cart { return c.AddQuantity(*product, qty) })
	}
	return nil
}

// parseItem accepts "ID" or "IDxQTY".
func parseItem(raw string) (id, qty int64, err error) {
	idPart, qtyPart, hasQty := strings.Cut(strings.ToLower(strings.TrimSpace(raw)), "x")
	id, err = parseID(idPart)
	if err != nil {
		return 0, 0, fmt.Errorf("item %q: %w", raw, err)
	}
	qty = 1
	if hasQty {
		qty, err = strconv.ParseInt(qtyPart, 10, 64)
		if err != nil || qty < 1 {
			return 0, 0, fmt.Errorf("item %q: quantity must be a positive integer", raw)
		}
	}
	return id, qty, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
