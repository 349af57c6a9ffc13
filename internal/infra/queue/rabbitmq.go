package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// Fanout exchanges: every campaign instance sees every event.
	ContactActionsExchange = "ex.contact-actions"
	AppErrorsExchange      = "ex.app-errors"

	DLXName    = "ex.contact-actions.dlx" // Dead Letter Exchange
	DLQName    = "q.contact-actions.dlq"
	dlqRouting = "k.contact-actions.dead"
)

type RabbitMQ struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel

	// QueueName is this instance's own durable queue, the consumer-group
	// analog: one queue per campaign, all bound to the same fanout.
	QueueName string
}

func NewRabbitMQ(url string, campaignID int64) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connecting to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("opening channel: %w", err)
	}

	queueName, err := setupTopology(ch, campaignID)
	if err != nil {
		return nil, err
	}

	return &RabbitMQ{Conn: conn, Ch: ch, QueueName: queueName}, nil
}

func setupTopology(ch *amqp.Channel, campaignID int64) (string, error) {
	err := ch.ExchangeDeclare(DLXName, "direct", true, false, false, false, nil)
	if err != nil {
		return "", err
	}

	_, err = ch.QueueDeclare(DLQName, true, false, false, false, nil)
	if err != nil {
		return "", err
	}

	err = ch.QueueBind(DLQName, dlqRouting, DLXName, false, nil)
	if err != nil {
		return "", err
	}

	err = ch.ExchangeDeclare(ContactActionsExchange, "fanout", true, false, false, false, nil)
	if err != nil {
		return "", err
	}

	err = ch.ExchangeDeclare(AppErrorsExchange, "fanout", true, false, false, false, nil)
	if err != nil {
		return "", err
	}

	// Poisoned or malformed messages land on the DLQ instead of looping.
	args := amqp.Table{
		"x-dead-letter-exchange":    DLXName,
		"x-dead-letter-routing-key": dlqRouting,
	}

	queueName := fmt.Sprintf("q.contact-actions.campaign-%d", campaignID)
	_, err = ch.QueueDeclare(queueName, true, false, false, false, args)
	if err != nil {
		return "", err
	}

	err = ch.QueueBind(queueName, "", ContactActionsExchange, false, nil)
	if err != nil {
		return "", err
	}

	return queueName, nil
}
