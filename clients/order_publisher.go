package amqp_client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jeffsasaki/storefront/models"
)

// OrderPublisher announces committed orders on OrderQueue.
type OrderPublisher struct {
	client AmqpClient
	newID  func() string
}

func NewOrderPublisher(client AmqpClient) *OrderPublisher {
	return &OrderPublisher{client: client, newID: uuid.NewString}
}

func (p *OrderPublisher) OrderCreated(ctx context.Context, order *models.OrderResponse) error {
	event := models.OrderCreatedEvent{
		EventID:       p.newID(),
		OrderID:       order.ID,
		CustomerEmail: order.CustomerEmail,
		TotalAmount:   order.TotalAmount,
		ItemCount:     len(order.Items),
		CreatedAt:     order.CreatedAt,
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode order %d event: %w", order.ID, err)
	}
	if err := p.client.Publish(ctx, OrderQueue, body, event.EventID); err != nil {
		return fmt.Errorf("publish order %d event: %w", order.ID, err)
	}
	return nil
}
