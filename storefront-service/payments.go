package main

import (
	"context"
	"encoding/json"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jeffsasaki/storefront/logging"
	"github.com/jeffsasaki/storefront/models"
	"github.com/jeffsasaki/storefront/store"
)

type orderStatusUpdater interface {
	UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error
}

// handlePaymentUpdate applies one payment_updates message to its order.
// Messages that can never apply are rejected; store failures are requeued.
func handlePaymentUpdate(ctx context.Context, st orderStatusUpdater, d amqp.Delivery) {
	var update models.PaymentStatusUpdate
	if err := json.Unmarshal(d.Body, &update); err != nil {
		logging.Err(serviceName, "payment_update", err, logging.Fields{EventID: d.MessageId, Message: "undecodable message"})
		d.Reject(false)
		return
	}

	fields := logging.Fields{EventID: d.MessageId, OrderID: update.OrderID}
	if _, err := models.ParseOrderStatus(string(update.PaymentStatus)); err != nil {
		logging.Err(serviceName, "payment_update", err, fields)
		d.Reject(false)
		return
	}

	err := st.UpdateOrderStatus(ctx, update.OrderID, update.PaymentStatus)
	if errors.Is(err, store.ErrNotFound) {
		logging.Err(serviceName, "payment_update", err, fields)
		d.Reject(false)
		return
	}
	if err != nil {
		logging.Err(serviceName, "payment_update", err, fields)
		d.Nack(false, true)
		return
	}

	fields.Service = serviceName
	fields.Step = "payment_update"
	fields.Status = string(update.PaymentStatus)
	logging.Log(fields)
	d.Ack(false)
}
