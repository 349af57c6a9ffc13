package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/vanguardcontact/data-server/internal/entity"
	"github.com/vanguardcontact/data-server/internal/infra/http/middleware"
	"github.com/vanguardcontact/data-server/internal/usecase"
)

// Listener consumes the other campaigns' ContactActions broadcasts and
// replays them into local state. It runs as one background goroutine,
// independent from the request path, and stops when its context does.
type Listener struct {
	Channel *amqp.Channel
	Replay  *usecase.ReplayUseCase
	Errors  usecase.ErrorRecorderInterface
}

func NewListener(ch *amqp.Channel, replay *usecase.ReplayUseCase, errors usecase.ErrorRecorderInterface) *Listener {
	return &Listener{Channel: ch, Replay: replay, Errors: errors}
}

func (l *Listener) Start(ctx context.Context, queueName string) error {
	msgs, err := l.Channel.Consume(
		queueName,
		"",    // consumer tag
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("registering consumer on %s: %w", queueName, err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-msgs:
				if !ok {
					log.Printf("listener: delivery channel closed for %s", queueName)
					return
				}
				l.handle(ctx, d)
			}
		}
	}()

	log.Printf("listener: consuming contact actions from %s", queueName)
	return nil
}

// handle must never crash the consumer loop: malformed messages and
// business-rule failures are recorded and dead-lettered, nothing more.
func (l *Listener) handle(ctx context.Context, d amqp.Delivery) {
	var msg entity.ContactAction
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		log.Printf("listener: malformed contact action message %s: %v", d.MessageId, err)
		l.Errors.Record(ctx, entity.NewAppError("queue/listener", "handle", "malformed contact action message", err))
		middleware.RecordMessageDropped("malformed")
		d.Nack(false, false)
		return
	}

	if err := l.Replay.Apply(ctx, &msg); err != nil {
		log.Printf("listener: replaying %q for person %d: %v", msg.Action, msg.Detail.PersonID, err)
		if usecase.IsTechnicalError(err) {
			// Storage hiccups are transient and the replay handlers are
			// idempotent, so the delivery goes back on the queue instead
			// of parking a convergence-critical event on the DLQ.
			middleware.RecordMessageRequeued("storage")
			d.Nack(false, true)
			return
		}
		// Business-rule failure: redelivery cannot fix it; park it on
		// the DLQ for inspection.
		middleware.RecordMessageDropped("invalid")
		d.Nack(false, false)
		return
	}

	middleware.RecordEventReplayed(string(msg.Action))
	d.Ack(false)
}
