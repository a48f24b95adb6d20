package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/fma-academy/registration-service/internal/core/ports"
)

var _ ports.ConfirmationEventPublisher = (*RabbitMQBroker)(nil)

// declareConfirmationQueue declares the durable queue confirmations are
// routed to. Messages survive a broker restart only on a durable queue.
func (rmq *RabbitMQBroker) declareConfirmationQueue() error {
	_, err := rmq.ch.QueueDeclare(
		rmq.queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", rmq.queueName, err)
	}
	return nil
}

// PublishConfirmationRequested sends one persistent JSON message per event
// to the confirmation queue through the default exchange.
func (rmq *RabbitMQBroker) PublishConfirmationRequested(ctx context.Context, evt ports.ConfirmationEmailEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	_, err = rmq.cb.Execute(func() (interface{}, error) {
		err := rmq.ch.PublishWithContext(
			ctx,
			"",            // exchange (default)
			rmq.queueName, // routing key == queue name
			false,         // mandatory
			false,         // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    evt.LogID,
				Type:         ports.EventConfirmationEmail,
				Timestamp:    evt.RequestedAt,
				Body:         body,
			},
		)
		return nil, err
	})
	return err
}
