// Package cart holds shopping cart state: an ordered list of product lines
// with at most one line per product id.
//
// Cart values are immutable; every operation returns a new Cart. Holder owns
// the current Cart for a session and can travel in a context.
package cart

import (
	"context"
	"sync"

	"github.com/jeffsasaki/storefront/models"
)

type Line struct {
	Product  models.Product `json:"product"`
	Quantity int64          `json:"quantity"`
}

type Cart struct {
	lines []Line
}

// Lines returns a copy of the lines in insertion order.
func (c Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c Cart) index(productID int64) int {
	for i, l := range c.lines {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}

// Add puts one unit of product in the cart.
func (c Cart) Add(product models.Product) Cart {
	return c.AddQuantity(product, 1)
}

// AddQuantity adds n units of product, merging into an existing line. n < 1
// leaves the cart unchanged.
func (c Cart) AddQuantity(product models.Product, n int64) Cart {
	if n < 1 {
		return c
	}
	lines := c.Lines()
	if i := c.index(product.ID); i >= 0 {
		lines[i].Quantity += n
		return Cart{lines: lines}
	}
	return Cart{lines: append(lines, Line{Product: product, Quantity: n})}
}

func (c Cart) Remove(productID int64) Cart {
	i := c.index(productID)
	if i < 0 {
		return c
	}
	lines := make([]Line, 0, len(c.lines)-1)
	lines = append(lines, c.lines[:i]...)
	lines = append(lines, c.lines[i+1:]...)
	return Cart{lines: lines}
}

// UpdateQuantity sets the quantity of an existing line. A quantity below one
// removes the line; an unknown product is ignored.
func (c Cart) UpdateQuantity(productID, quantity int64) Cart {
	if quantity < 1 {
		return c.Remove(productID)
	}
	i := c.index(productID)
	if i < 0 {
		return c
	}
	lines := c.Lines()
	lines[i].Quantity = quantity
	return Cart{lines: lines}
}

func (c Cart) Clear() Cart {
	return Cart{}
}

func (c Cart) Empty() bool {
	return len(c.lines) == 0
}

// Total is the sum of price * quantity in minor units, using the prices the
// products had when they were added.
func (c Cart) Total() int64 {
	var total int64
	for _, l := range c.lines {
		total += l.Product.Price * l.Quantity
	}
	return total
}

// Count is the number of units across all lines.
func (c Cart) Count() int64 {
	var n int64
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// LineItems converts the cart to order request lines.
func (c Cart) LineItems() []models.LineItem {
	items := make([]models.LineItem, 0, len(c.lines))
	for _, l := range c.lines {
		items = append(items, models.LineItem{ProductID: l.Product.ID, Quantity: l.Quantity})
	}
	return items
}

// Holder is the mutable owner of a Cart. It is safe for concurrent use.
type Holder struct {
	mu   sync.Mutex
	cart Cart
}

func NewHolder() *Holder {
	return &Holder{}
}

func (h *Holder) Cart() Cart {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cart
}

// Update replaces the cart with fn applied to it and returns the result.
func (h *Holder) Update(fn func(Cart) Cart) Cart {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cart = fn(h.cart)
	return h.cart
}

func (h *Holder) Add(p models.Product) Cart {
	return h.Update(func(c Cart) Cart { return c.Add(p) })
}

func (h *Holder) Remove(productID int64) Cart {
	return h.Update(func(c Cart) Cart { return c.Remove(productID) })
}

func (h *Holder) UpdateQuantity(productID, quantity int64) Cart {
	return h.Update(func(c Cart) Cart { return c.UpdateQuantity(productID, quantity) })
}

func (h *Holder) Clear() Cart {
	return h.Update(Cart.Clear)
}

type holderKey struct{}

func NewContext(ctx context.Context, h *Holder) context.Context {
	return context.WithValue(ctx, holderKey{}, h)
}

// FromContext returns the Holder stored by NewContext, or nil.
func FromContext(ctx context.Context) *Holder {
	h, _ := ctx.Value(holderKey{}).(*Holder)
	return h
}
