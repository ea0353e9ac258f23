package queue

import (
	"context"

	"github.com/trifonnt/accountd/internal/domain"
)

// NoopPublisher drops notifications. Used when no queue is configured.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (p *NoopPublisher) PublishUserChanged(ctx context.Context, event domain.UserChangedEvent) error {
	return nil
}
