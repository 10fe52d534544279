package queue

import (
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

type QueueName string

const (
	QueueDisbursement QueueName = "jetton_disbursement"
)

// Publisher pushes messages to a single queue over a shared connection. A
// channel is opened per publish, which is cheap enough for the sequential
// disbursement rate.
type Publisher struct {
	queueName QueueName
	conn      *amqp.Connection
	log       *slog.Logger
}

func NewPublisher(conn *amqp.Connection, queueName QueueName) *Publisher {
	return &Publisher{
		queueName: queueName,
		conn:      conn,
		log:       slog.With("component", "queue"),
	}
}

// EnsureQueueExists declares the queue so publishes don't get dropped when
// no consumer has declared it yet.
func EnsureQueueExists(conn *amqp.Connection, queueName QueueName) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("couldn't open channel: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		string(queueName), // name
		true,              // durable
		false,             // autoDelete
		false,             // exclusive
		false,             // noWait
		nil,               // args
	)
	if err != nil {
		return fmt.Errorf("couldn't declare queue %s: %w", queueName, err)
	}

	return nil
}

func (p *Publisher) Publish(message []byte) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("couldn't open channel: %w", err)
	}
	defer ch.Close()

	err = ch.Publish(
		"",                  // exchange — empty means default (direct to queue)
		string(p.queueName), // routing key = queue name
		false,               // mandatory
		false,               // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        message,
		},
	)
	if err != nil {
		p.log.Error("Failed to publish", "message", message, "error", err)
		return err
	}

	return nil
}
