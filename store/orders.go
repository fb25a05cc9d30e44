package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jeffsasaki/storefront/models"
)

// CreateOrder inserts the order header and every item in one transaction and
// returns the order joined with its items and their product rows. Nothing is
// committed unless all rows were written.
func (s *PostgresStore) CreateOrder(ctx context.Context, order models.NewOrder, items []models.NewOrderItem) (*models.OrderResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin order transaction: %w", err)
	}

	resp, err := insertOrder(ctx, tx, order, items)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit order: %w", err)
	}
	return resp, nil
}

func insertOrder(ctx context.Context, tx *sql.Tx, order models.NewOrder, items []models.NewOrderItem) (*models.OrderResponse, error) {
	resp := &models.OrderResponse{
		Order: models.Order{
			CustomerName:    order.CustomerName,
			CustomerEmail:   order.CustomerEmail,
			CustomerAddress: order.CustomerAddress,
			TotalAmount:     order.TotalAmount,
			Status:          models.StatusPending,
		},
		Items: make([]models.OrderItemDetail, 0, len(items)),
	}

	err := tx.QueryRowContext(ctx, `
		INSERT INTO orders (customer_name, customer_email, customer_address, total_amount, status)
		VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`,
		order.CustomerName, order.CustomerEmail, order.CustomerAddress, order.TotalAmount, string(models.StatusPending),
	).Scan(&resp.ID, &resp.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	for _, item := range items {
		detail := models.OrderItemDetail{
			OrderItem: models.OrderItem{
				OrderID:     resp.ID,
				ProductID:   item.ProductID,
				Quantity:    item.Quantity,
				PriceAtTime: item.PriceAtTime,
			},
		}

		err = tx.QueryRowContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price_at_time)
			VALUES ($1, $2, $3, $4) RETURNING id`,
			resp.ID, item.ProductID, item.Quantity, item.PriceAtTime,
		).Scan(&detail.ID)
		if isForeignKeyViolation(err) {
			return nil, &ProductReferenceError{ProductID: item.ProductID}
		}
		if err != nil {
			return nil, fmt.Errorf("insert order item for product %d: %w", item.ProductID, err)
		}

		detail.Product, err = scanProduct(tx.QueryRowContext(ctx,
			`SELECT `+productColumns+` FROM products WHERE id = $1`, item.ProductID))
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &ProductReferenceError{ProductID: item.ProductID}
		}
		if err != nil {
			return nil, fmt.Errorf("load product %d: %w", item.ProductID, err)
		}

		resp.Items = append(resp.Items, detail)
	}

	return resp, nil
}

// GetOrder returns the order with its items in insertion order, each joined
// with the current product row.
func (s *PostgresStore) GetOrder(ctx context.Context, id int64) (*models.OrderResponse, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	resp := &models.OrderResponse{Items: []models.OrderItemDetail{}}

	var status string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, customer_name, customer_email, customer_address, total_amount, status, created_at
		FROM orders WHERE id = $1`, id,
	).Scan(&resp.ID, &resp.CustomerName, &resp.CustomerEmail, &resp.CustomerAddress, &resp.TotalAmount, &status, &resp.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	resp.Status = models.OrderStatus(status)

	rows, err := s.db.QueryContext(ctx, `
		SELECT
			oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price_at_time,
			p.id, p.name, p.description, p.price, p.image_url, p.category, p.in_stock
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id`, id)
	if err != nil {
		return nil, fmt.Errorf("get order %d items: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var d models.OrderItemDetail
		p := &d.Product
		if err := rows.Scan(&d.ID, &d.OrderID, &d.ProductID, &d.Quantity, &d.PriceAtTime,
			&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Category, &p.InStock); err != nil {
			return nil, fmt.Errorf("get order %d items: %w", id, err)
		}
		resp.Items = append(resp.Items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get order %d items: %w", id, err)
	}

	return resp, nil
}

func (s *PostgresStore) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	if _, err := models.ParseOrderStatus(string(status)); err != nil {
		return err
	}
	if !validID(id) {
		return ErrNotFound
	}
	res, err := s.db.ExecContext(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("update order %d status: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order %d status: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
