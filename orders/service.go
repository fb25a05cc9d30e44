package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jeffsasaki/storefront/logging"
	"github.com/jeffsasaki/storefront/models"
	"github.com/jeffsasaki/storefront/store"
)

// Notifier is told about every committed order.
type Notifier interface {
	OrderCreated(ctx context.Context, order *models.OrderResponse) error
}

type Option func(*Service)

// WithNotifier sets the notifier called after an order commits.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// Service prices and places orders against the catalog and answers catalog
// and order reads.
type Service struct {
	store    store.Storage
	notifier Notifier
}

func NewService(st store.Storage, opts ...Option) *Service {
	s := &Service{store: st}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) ListProducts(ctx context.Context, filter store.ProductFilter) ([]models.Product, error) {
	return s.store.ListProducts(ctx, filter)
}

// GetProduct returns store.ErrNotFound for an unknown id.
func (s *Service) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return s.store.GetProduct(ctx, id)
}

// GetOrder returns store.ErrNotFound for an unknown id.
func (s *Service) GetOrder(ctx context.Context, id int64) (*models.OrderResponse, error) {
	return s.store.GetOrder(ctx, id)
}

// CreateOrder validates req, prices every line from the current catalog and
// persists the order with its items atomically. It returns a
// *ValidationError or *ProductNotFoundError for requests the caller must fix;
// any other error is internal.
func (s *Service) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.OrderResponse, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	items, total, err := s.price(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	order := models.NewOrder{
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerEmail:   req.CustomerEmail,
		CustomerAddress: req.CustomerAddress,
		TotalAmount:     total,
	}

	resp, err := s.store.CreateOrder(ctx, order, items)
	if err != nil {
		var refErr *store.ProductReferenceError
		if errors.As(err, &refErr) {
			return nil, &ProductNotFoundError{ProductID: refErr.ProductID}
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	if s.notifier != nil {
		if err := s.notifier.OrderCreated(ctx, resp); err != nil {
			logging.Err("storefront", "notify_order_created", err, logging.Fields{OrderID: resp.ID})
		}
	}

	return resp, nil
}

// price looks up each line's product and snapshots its current price. The
// total is the sum of price * quantity.
func (s *Service) price(ctx context.Context, lines []models.LineItem) ([]models.NewOrderItem, int64, error) {
	items := make([]models.NewOrderItem, 0, len(lines))
	var total int64

	for i, line := range lines {
		product, err := s.store.GetProduct(ctx, line.ProductID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, 0, &ProductNotFoundError{ProductID: line.ProductID}
		}
		if err != nil {
			return nil, 0, fmt.Errorf("look up product %d: %w", line.ProductID, err)
		}

		subtotal, ok := mulInt64(product.Price, line.Quantity)
		if ok {
			total, ok = addInt64(total, subtotal)
		}
		if !ok {
			return nil, 0, &ValidationError{
				Field:   fmt.Sprintf("items.%d.quantity", i),
				Message: "Quantity is too large",
			}
		}

		items = append(items, models.NewOrderItem{
			ProductID:   product.ID,
			Quantity:    line.Quantity,
			PriceAtTime: product.Price,
		})
	}

	return items, total, nil
}

// mulInt64 multiplies non-negative a by positive b, reporting overflow.
func mulInt64(a, b int64) (int64, bool) {
	if a == 0 {
		return 0, true
	}
	c := a * b
	return c, c/b == a && c >= 0
}

func addInt64(a, b int64) (int64, bool) {
	c := a + b
	return c, c >= a
}
