// Package queue delivers user change notifications to the downstream
// task queue. Delivery is at-least-once: the enqueue happens after the
// primary store write, and enqueue failures surface to the caller.
package queue

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/trifonnt/accountd/internal/domain"
	"github.com/trifonnt/accountd/internal/errors"
	"github.com/trifonnt/accountd/internal/logger"
	"github.com/trifonnt/accountd/internal/metrics"
)

// TypeUserChanged is the task type carrying a UserChangedEvent payload.
const TypeUserChanged = "user:updated"

type Publisher struct {
	client      *asynq.Client
	destination string
}

func NewPublisher(redisOpt asynq.RedisClientOpt, destination string) *Publisher {
	if destination == "" {
		destination = TypeUserChanged
	}
	return &Publisher{client: asynq.NewClient(redisOpt), destination: destination}
}

func (p *Publisher) Close() error {
	return p.client.Close()
}

// PublishUserChanged serializes the event and enqueues it. Any failure,
// serialization included, comes back as a *errors.PublishError so the
// caller can tell a lost notification from a failed record mutation.
func (p *Publisher) PublishUserChanged(ctx context.Context, event domain.UserChangedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		metrics.EventPublishFailuresTotal.Inc()
		return &errors.PublishError{Destination: p.destination, Err: err}
	}

	task := asynq.NewTask(p.destination, payload)
	if _, err := p.client.EnqueueContext(ctx, task); err != nil {
		metrics.EventPublishFailuresTotal.Inc()
		logger.Log.Error("enqueue user change notification failed",
			"component", "queue",
			"destination", p.destination,
			"login", event.Login,
			"error", err)
		return &errors.PublishError{Destination: p.destination, Err: err}
	}

	metrics.EventsPublishedTotal.Inc()
	logger.Log.Debug("user change notification enqueued",
		"component", "queue",
		"destination", p.destination,
		"login", event.Login)
	return nil
}
