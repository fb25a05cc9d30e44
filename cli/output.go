package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/jeffsasaki/storefront/cart"
	"github.com/jeffsasaki/storefront/models"
)

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

func (f *OutputFormatter) json(v any) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (f *OutputFormatter) Products(products []models.Product) error {
	if f.Format == "json" {
		return f.json(products)
	}
	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tIN STOCK")
	for _, p := range products {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\n", p.ID, p.Name, p.Category, models.FormatAmount(p.Price), p.InStock)
	}
	return tw.Flush()
}

func (f *OutputFormatter) Product(p *models.Product) error {
	if f.Format == "json" {
		return f.json(p)
	}
	fmt.Fprintf(f.Writer, "#%d %s\n%s\nCategory: %s\nPrice: %s\nIn stock: %t\n",
		p.ID, p.Name, p.Description, p.Category, models.FormatAmount(p.Price), p.InStock)
	return nil
}

func (f *OutputFormatter) Order(o *models.OrderResponse) error {
	if f.Format == "json" {
		return f.json(o)
	}
	fmt.Fprintf(f.Writer, "Order #%d (%s) placed %s\n", o.ID, o.Status, o.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(f.Writer, "%s <%s>\n%s\n", o.CustomerName, o.CustomerEmail, o.CustomerAddress)
	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tQTY\tUNIT\tSUBTOTAL")
	for _, it := range o.Items {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", it.Product.Name, it.Quantity,
			models.FormatAmount(it.PriceAtTime), models.FormatAmount(it.PriceAtTime*it.Quantity))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(f.Writer, "Total: %s\n", models.FormatAmount(o.TotalAmount))
	return nil
}

// Cart prints the lines about to be ordered. JSON output prints nothing here
// so the only JSON document is the order.
func (f *OutputFormatter) Cart(c cart.Cart) {
	if f.Format == "json" {
		return
	}
	for _, l := range c.Lines() {
		fmt.Fprintf(f.Writer, "+ %d x %s @ %s\n", l.Quantity, l.Product.Name, models.FormatAmount(l.Product.Price))
	}
}
