package models

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfillment state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
)

// ParseOrderStatus returns the status named by s, or an error for anything
// outside pending|paid|shipped|delivered.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(s); st {
	case StatusPending, StatusPaid, StatusShipped, StatusDelivered:
		return st, nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// MaxInt4 bounds ids, quantities and prices, which are stored in Postgres
// INTEGER and SERIAL columns.
const MaxInt4 = math.MaxInt32

type Product struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	ImageURL    string `json:"imageUrl"`
	Category    string `json:"category"`
	InStock     bool   `json:"inStock"`
}

type Order struct {
	ID              int64       `json:"id"`
	CustomerName    string      `json:"customerName"`
	CustomerEmail   string      `json:"customerEmail"`
	CustomerAddress string      `json:"customerAddress"`
	TotalAmount     int64       `json:"totalAmount"`
	Status          OrderStatus `json:"status"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// OrderItem is one persisted line of an order. PriceAtTime is the product
// price captured when the order was placed.
type OrderItem struct {
	ID          int64 `json:"id"`
	OrderID     int64 `json:"orderId"`
	ProductID   int64 `json:"productId"`
	Quantity    int64 `json:"quantity"`
	PriceAtTime int64 `json:"priceAtTime"`
}

// OrderItemDetail is an order item joined with its product row.
type OrderItemDetail struct {
	OrderItem
	Product Product `json:"product"`
}

// OrderResponse is an order joined with its items.
type OrderResponse struct {
	Order
	Items []OrderItemDetail `json:"items"`
}

// LineItem is a (productId, quantity) pair within an order request.
type LineItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

type CreateOrderRequest struct {
	CustomerName    string     `json:"customerName"`
	CustomerEmail   string     `json:"customerEmail"`
	CustomerAddress string     `json:"customerAddress"`
	Items           []LineItem `json:"items"`
}

// NewOrder is an order header ready to be inserted. Status and CreatedAt are
// assigned by the store.
type NewOrder struct {
	CustomerName    string
	CustomerEmail   string
	CustomerAddress string
	TotalAmount     int64
}

// NewOrderItem is a priced line ready to be inserted.
type NewOrderItem struct {
	ProductID   int64
	Quantity    int64
	PriceAtTime int64
}

// OrderCreatedEvent is published once an order has been committed.
type OrderCreatedEvent struct {
	EventID       string    `json:"eventId"`
	OrderID       int64     `json:"orderId"`
	CustomerEmail string    `json:"customerEmail"`
	TotalAmount   int64     `json:"totalAmount"`
	ItemCount     int       `json:"itemCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

type PaymentStatusUpdate struct {
	OrderID       int64       `json:"orderId"`
	PaymentStatus OrderStatus `json:"paymentStatus"`
}

// FormatAmount renders minor currency units as a fixed two-decimal string,
// e.g. 29999 -> "299.99".
func FormatAmount(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}
