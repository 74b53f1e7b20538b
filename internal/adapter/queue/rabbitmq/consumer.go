package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/crabzie/foldbatch/internal/core/domain"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// DefaultRequeueDelay holds back a failed delivery before it is requeued
const DefaultRequeueDelay = 5 * time.Second

var errEmptyEvent = errors.New("event without submission")

func decodeEvent(body []byte) (*domain.SubmissionEvent, error) {
	var event domain.SubmissionEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, err
	}
	if event.Submission == nil {
		return nil, errEmptyEvent
	}
	return &event, nil
}

// ConsumeEvents binds the events queue to every submission topic and hands
// deliveries to handler in a background goroutine
func (q *QueueService) ConsumeEvents(ctx context.Context, handler func(event *domain.SubmissionEvent) error) error {
	_, err := q.ch.QueueDeclare(
		q.opts.Queue, // name
		true,         // durable
		false,        // delete when unused
		false,        // exclusive
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return err
	}

	if err := q.ch.QueueBind(q.opts.Queue, "submission.*", q.opts.Exchange, false, nil); err != nil {
		return err
	}

	msgs, err := q.ch.Consume(
		q.opts.Queue, // queue
		"",           // consumer
		false,        // auto-ack, ack manually after the handler ran
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		return err
	}

	q.log.Info("Started consuming events", zap.String("queue", q.opts.Queue))

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-msgs:
				if !ok {
					q.log.Warn("Event delivery channel closed")
					return
				}

				q.handleDelivery(ctx, d, handler)
			}
		}
	}()

	return nil
}

// handleDelivery acks handled events, drops undecodable ones and requeues
// failed ones after the requeue delay. The wait blocks the consumer, so a
// failing handler (database down) is retried at most once per delay.
func (q *QueueService) handleDelivery(ctx context.Context, d amqp.Delivery, handler func(event *domain.SubmissionEvent) error) {
	event, err := decodeEvent(d.Body)
	if err != nil {
		q.log.Error("Failed to decode event", zap.Error(err))
		d.Nack(false, false) // discard invalid message
		return
	}

	if err := handler(event); err != nil {
		q.log.Error("Event handling failed, requeueing",
			zap.String("id", event.Submission.ID.String()),
			zap.Duration("delay", q.opts.RequeueDelay),
			zap.Error(err))

		timer := time.NewTimer(q.opts.RequeueDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
		d.Nack(false, true)
		return
	}
	d.Ack(false)
}
