package amqp_client

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/mock"
)

// MockAmqpClient is a testify mock of AmqpClient.
type MockAmqpClient struct {
	mock.Mock
}

func (m *MockAmqpClient) DeclareQueue(queueName string) error {
	return m.Called(queueName).Error(0)
}

func (m *MockAmqpClient) Publish(ctx context.Context, queueName string, message []byte, messageID string) error {
	return m.Called(ctx, queueName, message, messageID).Error(0)
}

func (m *MockAmqpClient) SetupConsumer(queueName string, handler func(amqp.Delivery)) error {
	return m.Called(queueName, handler).Error(0)
}

func (m *MockAmqpClient) Close() error {
	return m.Called().Error(0)
}
