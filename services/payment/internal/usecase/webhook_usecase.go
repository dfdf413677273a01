package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/creatorhub/support-backend/services/payment/internal/domain/entity"
	domainErrors "github.com/creatorhub/support-backend/services/payment/internal/domain/errors"
	"github.com/creatorhub/support-backend/services/payment/internal/domain/repository"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"
)

// WebhookUsecase applies Stripe payment intent outcomes to the ledger
type WebhookUsecase struct {
	secret    string
	ledger    repository.SupportPaymentRepository
	events    repository.WebhookEventRepository
	publisher EventPublisher
	recorder  Recorder
	logger    *zap.Logger
}

func NewWebhookUsecase(
	secret string,
	ledger repository.SupportPaymentRepository,
	events repository.WebhookEventRepository,
	publisher EventPublisher,
	recorder Recorder,
	logger *zap.Logger,
) *WebhookUsecase {
	return &WebhookUsecase{
		secret:    secret,
		ledger:    ledger,
		events:    events,
		publisher: publisherOrNop(publisher),
		recorder:  recorderOrNop(recorder),
		logger:    logger,
	}
}

// HandleStripeWebhook verifies the Stripe-Signature header and processes the
// event once. Redeliveries of a processed event are acknowledged untouched.
func (u *WebhookUsecase) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) error {
	if u.secret == "" {
		return domainErrors.NewProviderUnavailableError(domainErrors.MsgWebhookNotConfigured)
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, u.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		u.logger.Warn("Stripe webhook signature verification failed", zap.Error(err))
		return domainErrors.ErrSignatureMismatch
	}

	done, err := u.events.SaveEvent(ctx, stripeProvider, event.ID, string(event.Type), payload)
	if err != nil {
		return domainErrors.NewProviderError(domainErrors.MsgProcessWebhook, err)
	}
	if done {
		u.logger.Info("Stripe webhook already processed",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
		return nil
	}

	if err := u.process(ctx, &event); err != nil {
		if markErr := u.events.MarkFailed(ctx, stripeProvider, event.ID, err); markErr != nil {
			u.logger.Error("Failed to mark webhook failed", zap.String("event_id", event.ID), zap.Error(markErr))
		}
		return domainErrors.NewProviderError(domainErrors.MsgProcessWebhook, err)
	}

	if err := u.events.MarkProcessed(ctx, stripeProvider, event.ID); err != nil {
		u.logger.Error("Failed to mark webhook processed", zap.String("event_id", event.ID), zap.Error(err))
	}
	return nil
}

func (u *WebhookUsecase) process(ctx context.Context, event *stripe.Event) error {
	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		intent, err := decodePaymentIntent(event)
		if err != nil {
			return err
		}
		chargeID := ""
		if intent.LatestCharge != nil {
			chargeID = intent.LatestCharge.ID
		}
		changed, err := u.ledger.MarkVerified(ctx, stripeProvider, intent.ID, chargeID)
		if err != nil {
			return err
		}
		return u.announce(ctx, changed, entity.PaymentEventVerified, intent.ID, "", ResultVerified)

	case stripe.EventTypePaymentIntentPaymentFailed:
		intent, err := decodePaymentIntent(event)
		if err != nil {
			return err
		}
		reason := "payment_failed"
		if intent.LastPaymentError != nil && intent.LastPaymentError.Msg != "" {
			reason = intent.LastPaymentError.Msg
		}
		changed, err := u.ledger.MarkRejected(ctx, stripeProvider, intent.ID, reason)
		if err != nil {
			return err
		}
		return u.announce(ctx, changed, entity.PaymentEventRejected, intent.ID, reason, ResultRejected)

	default:
		u.logger.Debug("Ignoring Stripe webhook event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
		return nil
	}
}

// announce publishes the transition when the ledger row actually moved
func (u *WebhookUsecase) announce(ctx context.Context, changed bool, eventType entity.PaymentEventType, intentID, reason, result string) error {
	if !changed {
		u.logger.Debug("Payment intent already final or not recorded",
			zap.String("payment_intent_id", intentID))
		return nil
	}
	u.recorder.ObserveVerification(stripeProvider, result)

	event := entity.PaymentEvent{Type: eventType, Provider: stripeProvider, ProviderRef: intentID}
	payment, err := u.ledger.GetByProviderRef(ctx, stripeProvider, intentID)
	if err != nil {
		u.logger.Warn("Failed to load support payment for event", zap.String("payment_intent_id", intentID), zap.Error(err))
	} else if payment != nil {
		event = eventFromLedger(eventType, payment)
	}
	event.Reason = reason
	publishEvent(ctx, u.publisher, u.logger, event)
	return nil
}

func decodePaymentIntent(event *stripe.Event) (*stripe.PaymentIntent, error) {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, fmt.Errorf("failed to decode payment intent from %s: %w", event.ID, err)
	}
	if intent.ID == "" {
		return nil, fmt.Errorf("event %s carries no payment intent id", event.ID)
	}
	return &intent, nil
}
