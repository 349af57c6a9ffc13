package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/vanguardcontact/data-server/internal/entity"
)

// Producer broadcasts audit events and application errors. Payloads are
// persistent JSON; the MessageId doubles as the idempotency key for
// consumers that track redeliveries.
type Producer struct {
	Ch *amqp.Channel
}

func NewProducer(ch *amqp.Channel) *Producer {
	return &Producer{Ch: ch}
}

func (p *Producer) PublishContactAction(ctx context.Context, action *entity.ContactAction) error {
	body, err := json.Marshal(action)
	if err != nil {
		return fmt.Errorf("encoding contact action: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ContactActionsExchange,
		"",    // fanout ignores the routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    action.ID,
			Timestamp:    action.Timestamp,
		},
	)
	if err != nil {
		return fmt.Errorf("publishing contact action: %w", err)
	}
	return nil
}

func (p *Producer) PublishAppError(ctx context.Context, appErr *entity.AppError) error {
	body, err := json.Marshal(appErr)
	if err != nil {
		return fmt.Errorf("encoding app error: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		AppErrorsExchange,
		"",
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.New().String(),
			Timestamp:    appErr.Timestamp,
		},
	)
	if err != nil {
		return fmt.Errorf("publishing app error: %w", err)
	}
	return nil
}
