package amqp_client

import (
	"context"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// OrderQueue carries OrderCreatedEvent messages to the payment service.
	OrderQueue = "order_queue"
	// PaymentUpdatesQueue carries PaymentStatusUpdate messages back to the storefront.
	PaymentUpdatesQueue = "payment_updates"

	consumerPrefetch = 10
)

// AmqpClient defines the interface for all AMQP operations
type AmqpClient interface {
	DeclareQueue(queueName string) error
	Publish(ctx context.Context, queueName string, message []byte, messageID string) error
	SetupConsumer(queueName string, handler func(amqp.Delivery)) error
	Close() error
}

// RealAmqpClient implements AmqpClient on a single broker connection. Publishes
// share one channel; every consumer gets its own.
type RealAmqpClient struct {
	conn *amqp.Connection

	mu  sync.Mutex
	pub *amqp.Channel
}

// Dial connects to the broker at url.
func Dial(url string) (*RealAmqpClient, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return &RealAmqpClient{conn: conn}, nil
}

// NewAmqpClient wraps an open connection.
func NewAmqpClient(conn *amqp.Connection) AmqpClient {
	return &RealAmqpClient{conn: conn}
}

// DeclareQueue declares a durable queue so messages survive a broker restart.
func (c *RealAmqpClient) DeclareQueue(queueName string) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(queueName, true, false, false, false, nil)
	return err
}

// publishChannel returns the shared publish channel, reopening it after the
// broker closed it. Callers hold c.mu.
func (c *RealAmqpClient) publishChannel() (*amqp.Channel, error) {
	if c.pub != nil && !c.pub.IsClosed() {
		return c.pub, nil
	}
	ch, err := c.conn.Channel()
	if err != nil {
		return nil, err
	}
	c.pub = ch
	return ch, nil
}

// Publish sends a persistent JSON message to queueName through the default exchange.
func (c *RealAmqpClient) Publish(ctx context.Context, queueName string, message []byte, messageID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch, err := c.publishChannel()
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx, "", queueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    messageID,
		Body:         message,
	})
}

// SetupConsumer starts a manually acknowledged consumer on queueName. The
// handler must ack, nack or reject every delivery; at most consumerPrefetch
// deliveries are outstanding at once.
func (c *RealAmqpClient) SetupConsumer(queueName string, handler func(amqp.Delivery)) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return err
	}
	if err := ch.Qos(consumerPrefetch, 0, false); err != nil {
		ch.Close()
		return err
	}

	deliveries, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		ch.Close()
		return err
	}

	go func() {
		for d := range deliveries {
			handler(d)
		}
	}()
	return nil
}

// Close closes the publish channel and the connection, which also ends every
// consumer.
func (c *RealAmqpClient) Close() error {
	c.mu.Lock()
	if c.pub != nil {
		c.pub.Close()
		c.pub = nil
	}
	c.mu.Unlock()
	return c.conn.Close()
}
