package messaging

import (
	"context"
	"fmt"

	"github.com/creatorhub/support-backend/pkg/messaging"
	"github.com/creatorhub/support-backend/services/payment/internal/domain/entity"
	"go.uber.org/zap"
)

// EventPublisher sends payment events to a Redis channel
type EventPublisher struct {
	publisher messaging.Publisher
	channel   string
	logger    *zap.Logger
}

func NewEventPublisher(publisher messaging.Publisher, channel string, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{
		publisher: publisher,
		channel:   channel,
		logger:    logger,
	}
}

func (p *EventPublisher) Publish(ctx context.Context, event entity.PaymentEvent) error {
	if err := p.publisher.Publish(ctx, p.channel, event); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	p.logger.Debug("Payment event published",
		zap.String("channel", p.channel),
		zap.String("type", string(event.Type)),
		zap.String("provider_ref", event.ProviderRef))
	return nil
}

// NoopPublisher drops events. Used when Redis is not configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, entity.PaymentEvent) error {
	return nil
}
