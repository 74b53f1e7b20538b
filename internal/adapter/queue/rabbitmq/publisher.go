package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/crabzie/foldbatch/internal/core/domain"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Options names the exchange and queue used for submission events
type Options struct {
	URL          string
	Exchange     string
	Queue        string
	MaxRetries   int
	RequeueDelay time.Duration // wait before requeueing a delivery the handler failed on
}

// QueueService publishes and consumes submission events
type QueueService struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	opts Options
	log  *zap.Logger
}

// NewQueueService dials the broker and declares the events exchange
func NewQueueService(opts Options, log *zap.Logger) (*QueueService, error) {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	if opts.RequeueDelay <= 0 {
		opts.RequeueDelay = DefaultRequeueDelay
	}

	var conn *amqp.Connection
	var err error

	// Retry connection with incremental backoff
	for i := 1; i <= opts.MaxRetries; i++ {
		conn, err = amqp.Dial(opts.URL)
		if err == nil {
			ch, chErr := conn.Channel()
			if chErr == nil {
				q := &QueueService{conn: conn, ch: ch, opts: opts, log: log}
				if err = q.declare(); err == nil {
					return q, nil
				}
				ch.Close()
			} else {
				err = chErr
			}
			conn.Close()
		}

		log.Warn("Failed to connect to RabbitMQ, retrying...",
			zap.Int("attempt", i),
			zap.Int("max_retries", opts.MaxRetries),
			zap.Error(err),
		)
		if i < opts.MaxRetries {
			time.Sleep(time.Duration(i*2) * time.Second)
		}
	}

	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", opts.MaxRetries, err)
}

func (q *QueueService) declare() error {
	return q.ch.ExchangeDeclare(
		q.opts.Exchange, // name
		"topic",         // kind
		true,            // durable
		false,           // auto-deleted
		false,           // internal
		false,           // no-wait
		nil,             // arguments
	)
}

// RoutingKey returns the topic an event is published under
func RoutingKey(event *domain.SubmissionEvent) string {
	return "submission." + string(event.Type)
}

func newPublishing(event *domain.SubmissionEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, err
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.At,
		MessageId:    event.Submission.ID.String(),
		Body:         body,
	}, nil
}

func (q *QueueService) PublishEvent(ctx context.Context, event *domain.SubmissionEvent) error {
	msg, err := newPublishing(event)
	if err != nil {
		return err
	}

	key := RoutingKey(event)
	err = q.ch.PublishWithContext(ctx,
		q.opts.Exchange, // Exchange
		key,             // Routing key
		false,           // Mandatory
		false,           // Immediate
		msg)
	if err != nil {
		q.log.Error("Failed to publish event", zap.Error(err))
		return err
	}

	q.log.Info("Published submission event",
		zap.String("id", event.Submission.ID.String()),
		zap.String("key", key))
	return nil
}

// Close closes the channel and the connection
func (q *QueueService) Close() error {
	if err := q.ch.Close(); err != nil {
		q.conn.Close()
		return err
	}
	return q.conn.Close()
}
