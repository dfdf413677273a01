package usecase

import (
	"context"
	"time"

	"github.com/creatorhub/support-backend/services/payment/internal/domain/entity"
	"go.uber.org/zap"
)

// EventPublisher announces payments reaching a terminal state
type EventPublisher interface {
	Publish(ctx context.Context, event entity.PaymentEvent) error
}

// Recorder counts payment outcomes for metrics
type Recorder interface {
	ObserveVerification(provider, result string)
	ObserveProviderError(provider, op string)
}

// Verification results reported to the Recorder
const (
	ResultVerified          = "verified"
	ResultSignatureMismatch = "signature_mismatch"
	ResultProviderError     = "provider_error"
	ResultRejected          = "rejected"
)

type nopRecorder struct{}

func (nopRecorder) ObserveVerification(string, string)  {}
func (nopRecorder) ObserveProviderError(string, string) {}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, entity.PaymentEvent) error { return nil }

func recorderOrNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}

func publisherOrNop(p EventPublisher) EventPublisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

// publishEvent never fails the caller; a lost event is only logged
func publishEvent(ctx context.Context, publisher EventPublisher, logger *zap.Logger, event entity.PaymentEvent) {
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish payment event",
			zap.String("type", string(event.Type)),
			zap.String("provider", event.Provider),
			zap.String("provider_ref", event.ProviderRef),
			zap.Error(err))
	}
}

// eventFromLedger builds an event from a ledger row
func eventFromLedger(eventType entity.PaymentEventType, p *entity.SupportPayment) entity.PaymentEvent {
	return entity.PaymentEvent{
		Type:          eventType,
		Provider:      p.Provider,
		ProviderRef:   p.ProviderRef,
		CreatorID:     p.CreatorID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		PlatformFee:   p.PlatformFee,
		CreatorAmount: p.CreatorAmount,
	}
}
