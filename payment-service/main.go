package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"

	amqp_client "github.com/jeffsasaki/storefront/clients"
	"github.com/jeffsasaki/storefront/config"
	"github.com/jeffsasaki/storefront/logging"
	"github.com/jeffsasaki/storefront/models"
)

const serviceName = "payment"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		log.Fatalf("payment-service: %v", err)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "payment-service",
		Short:         "Settle new orders and report payment status",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadMessaging(configPath)
			if err != nil {
				return err
			}

			mq, err := amqp_client.Dial(cfg.AMQPURL)
			if err != nil {
				return fmt.Errorf("connect to RabbitMQ: %w", err)
			}
			defer mq.Close()

			ctx := cmd.Context()
			if err := run(ctx, mq); err != nil {
				return fmt.Errorf("start payment worker: %w", err)
			}

			log.Printf(" [*] Waiting for orders. To exit press CTRL+C")
			<-ctx.Done()
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file (only amqp_url is read)")
	return cmd
}

// run declares the queues and starts consuming orders.
func run(ctx context.Context, mq amqp_client.AmqpClient) error {
	for _, q := range []string{amqp_client.OrderQueue, amqp_client.PaymentUpdatesQueue} {
		if err := mq.DeclareQueue(q); err != nil {
			return err
		}
	}
	w := &worker{mq: mq}
	return mq.SetupConsumer(amqp_client.OrderQueue, func(d amqp.Delivery) {
		w.handle(ctx, d)
	})
}

type worker struct {
	mq amqp_client.AmqpClient
}

// decidePayment settles an order. Only orders with something to charge are
// marked paid; the rest stay pending.
func decidePayment(event models.OrderCreatedEvent) (models.OrderStatus, bool) {
	if event.TotalAmount > 0 {
		return models.StatusPaid, true
	}
	return "", false
}

func (w *worker) handle(ctx context.Context, d amqp.Delivery) {
	var event models.OrderCreatedEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		logging.Err(serviceName, "decode_order", err, logging.Fields{EventID: d.MessageId})
		d.Reject(false)
		return
	}

	fields := logging.Fields{Service: serviceName, EventID: event.EventID, OrderID: event.OrderID, Step: "charge"}
	status, ok := decidePayment(event)
	if !ok {
		fields.Status = "skipped"
		fields.Message = "nothing to charge"
		logging.Log(fields)
		d.Ack(false)
		return
	}

	body, err := json.Marshal(models.PaymentStatusUpdate{OrderID: event.OrderID, PaymentStatus: status})
	if err != nil {
		logging.Err(serviceName, "encode_update", err, fields)
		d.Reject(false)
		return
	}
	if err := w.mq.Publish(ctx, amqp_client.PaymentUpdatesQueue, body, event.EventID); err != nil {
		logging.Err(serviceName, "publish_update", err, fields)
		d.Nack(false, true)
		return
	}

	fields.Status = string(status)
	fields.Message = "charged " + models.FormatAmount(event.TotalAmount)
	logging.Log(fields)
	d.Ack(false)
}
