package messaging

import (
	"context"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker"

	"github.com/fma-academy/registration-service/internal/config"
)

// channel is the part of *amqp.Channel the broker uses.
type channel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQBroker implements ports.ConfirmationEventPublisher using RabbitMQ.
type RabbitMQBroker struct {
	conn      *amqp.Connection
	ch        channel
	queueName string
	cb        *gobreaker.CircuitBreaker
}

// NewRabbitMQBroker connects to amqpURL and makes sure the confirmation
// queue exists before returning.
func NewRabbitMQBroker(amqpURL, queueName string) (*RabbitMQBroker, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	rmq := newBroker(conn, ch, queueName)
	if err := rmq.declareConfirmationQueue(); err != nil {
		rmq.Close()
		return nil, err
	}

	log.Printf("messaging: publishing confirmations to queue %q", queueName)
	return rmq, nil
}

func newBroker(conn *amqp.Connection, ch channel, queueName string) *RabbitMQBroker {
	return &RabbitMQBroker{
		conn:      conn,
		ch:        ch,
		queueName: queueName,
		cb:        config.NewCircuitBreaker("RabbitMQ-Publisher"),
	}
}

// IsOpen reports whether the broker connection is still usable.
func (rmq *RabbitMQBroker) IsOpen() bool {
	return rmq.conn != nil && !rmq.conn.IsClosed()
}

// Close closes the channel and then the connection. The connection is closed
// even when closing the channel fails.
func (rmq *RabbitMQBroker) Close() error {
	var chErr error
	if rmq.ch != nil {
		chErr = rmq.ch.Close()
	}
	if rmq.conn != nil {
		if err := rmq.conn.Close(); err != nil {
			return err
		}
	}
	return chErr
}
