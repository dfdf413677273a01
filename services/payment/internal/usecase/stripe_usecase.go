package usecase

import (
	"context"
	"strings"

	"github.com/creatorhub/support-backend/services/payment/internal/domain/entity"
	domainErrors "github.com/creatorhub/support-backend/services/payment/internal/domain/errors"
	"github.com/creatorhub/support-backend/services/payment/internal/domain/provider"
	"github.com/creatorhub/support-backend/services/payment/internal/domain/repository"
	"github.com/creatorhub/support-backend/services/payment/internal/domain/service"
	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"
)

const (
	stripeProvider         = string(provider.ProviderTypeStripe)
	defaultStripeCurrency  = "USD"
	connectedAccountPrefix = "acct_"
)

// StripeUsecase runs the card-rail flows. Stripe performs the split itself;
// this side only declares it.
type StripeUsecase struct {
	gateway    provider.StripeGateway
	commission *service.CommissionCalculator
	ledger     repository.SupportPaymentRepository
	recorder   Recorder
	logger     *zap.Logger
}

func NewStripeUsecase(
	gateway provider.StripeGateway,
	commission *service.CommissionCalculator,
	ledger repository.SupportPaymentRepository,
	recorder Recorder,
	logger *zap.Logger,
) *StripeUsecase {
	return &StripeUsecase{
		gateway:    gateway,
		commission: commission,
		ledger:     ledger,
		recorder:   recorderOrNop(recorder),
		logger:     logger,
	}
}

func (u *StripeUsecase) CreateConnectedAccount(ctx context.Context, country, idempotencyKey string) (string, error) {
	if u.gateway == nil {
		return "", domainErrors.NewProviderUnavailableError(domainErrors.MsgStripeNotConfigured)
	}

	accountID, err := u.gateway.CreateConnectedAccount(ctx, strings.ToUpper(country), idempotencyKey)
	if err != nil {
		u.recorder.ObserveProviderError(stripeProvider, "create_connected_account")
		return "", domainErrors.NewProviderError(domainErrors.MsgCreateConnectedAccount, err)
	}
	return accountID, nil
}

// CreatePaymentIntent creates a one-time support payment with the platform
// fee declared as application fee.
func (u *StripeUsecase) CreatePaymentIntent(ctx context.Context, req *entity.SupportRequest) (*entity.PaymentIntent, error) {
	if u.gateway == nil {
		return nil, domainErrors.NewProviderUnavailableError(domainErrors.MsgStripeNotConfigured)
	}
	if err := validateStripeCreator(req.CreatorID); err != nil {
		return nil, err
	}
	if req.Amount <= 0 {
		return nil, domainErrors.NewValidationError("amount must be greater than 0")
	}

	currency := normalizeCurrency(req.Currency, defaultStripeCurrency)
	split, err := u.commission.Calculate(req.Amount)
	if err != nil {
		return nil, err
	}

	intent, err := u.gateway.CreatePaymentIntent(ctx, &provider.PaymentIntentRequest{
		Amount:         req.Amount,
		Currency:       currency,
		CreatorID:      req.CreatorID,
		Split:          split,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		u.recorder.ObserveProviderError(stripeProvider, "create_payment_intent")
		return nil, domainErrors.NewProviderError(domainErrors.MsgCreatePaymentIntent, err)
	}

	recordPayment(ctx, u.ledger, u.logger, &entity.SupportPayment{
		Provider:       stripeProvider,
		Kind:           entity.SupportKindOneTime,
		ProviderRef:    intent.ID,
		CreatorID:      req.CreatorID,
		PayerID:        req.PayerID,
		Amount:         split.GrossAmount,
		Currency:       currency,
		PlatformFee:    split.PlatformFee,
		CreatorAmount:  split.CreatorAmount,
		IdempotencyKey: req.IdempotencyKey,
		Metadata:       map[string]interface{}{"customerId": intent.CustomerID},
	})

	return intent, nil
}

// CreateSubscription subscribes to priceId with the commission taken as
// application fee percent on every invoice.
func (u *StripeUsecase) CreateSubscription(ctx context.Context, req *entity.SupportRequest) (*entity.Subscription, error) {
	if u.gateway == nil {
		return nil, domainErrors.NewProviderUnavailableError(domainErrors.MsgStripeNotConfigured)
	}
	if err := validateStripeCreator(req.CreatorID); err != nil {
		return nil, err
	}
	if req.PlanOrPriceID == "" {
		return nil, domainErrors.NewValidationError("priceId is required")
	}

	currency := normalizeCurrency(req.Currency, "")
	sub, err := u.gateway.CreateSubscription(ctx, &provider.SubscriptionRequest{
		PriceID:        req.PlanOrPriceID,
		Currency:       currency,
		CreatorID:      req.CreatorID,
		FeePercent:     u.commission.FeePercent(),
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		u.recorder.ObserveProviderError(stripeProvider, "create_subscription")
		return nil, domainErrors.NewProviderError(domainErrors.MsgCreateSubscription, err)
	}

	recordPayment(ctx, u.ledger, u.logger, &entity.SupportPayment{
		Provider:       stripeProvider,
		Kind:           entity.SupportKindRecurring,
		ProviderRef:    sub.SubscriptionID,
		CreatorID:      req.CreatorID,
		PayerID:        req.PayerID,
		Amount:         req.Amount,
		Currency:       currency,
		IdempotencyKey: req.IdempotencyKey,
		Metadata: map[string]interface{}{
			"priceId":    req.PlanOrPriceID,
			"feePercent": u.commission.FeePercent(),
		},
	})

	return sub, nil
}

func (u *StripeUsecase) GetBalance(ctx context.Context, accountID string) (*stripe.Balance, error) {
	if u.gateway == nil {
		return nil, domainErrors.NewProviderUnavailableError(domainErrors.MsgStripeNotConfigured)
	}
	if err := validateStripeCreator(accountID); err != nil {
		return nil, err
	}

	balance, err := u.gateway.GetBalance(ctx, accountID)
	if err != nil {
		u.recorder.ObserveProviderError(stripeProvider, "get_balance")
		return nil, domainErrors.NewProviderError(domainErrors.MsgRetrieveBalance, err)
	}
	return balance, nil
}

func (u *StripeUsecase) CreatePayout(ctx context.Context, req *provider.PayoutRequest) (*stripe.Payout, error) {
	if u.gateway == nil {
		return nil, domainErrors.NewProviderUnavailableError(domainErrors.MsgStripeNotConfigured)
	}
	if err := validateStripeCreator(req.AccountID); err != nil {
		return nil, err
	}
	if req.Amount <= 0 {
		return nil, domainErrors.NewValidationError("amount must be greater than 0")
	}

	payout, err := u.gateway.CreatePayout(ctx, &provider.PayoutRequest{
		Amount:         req.Amount,
		Currency:       normalizeCurrency(req.Currency, defaultStripeCurrency),
		AccountID:      req.AccountID,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		u.recorder.ObserveProviderError(stripeProvider, "create_payout")
		return nil, domainErrors.NewProviderError(domainErrors.MsgCreatePayout, err)
	}
	return payout, nil
}

func validateStripeCreator(creatorID string) error {
	if !strings.HasPrefix(creatorID, connectedAccountPrefix) {
		return domainErrors.NewValidationError("creatorId must be a Stripe connected account id")
	}
	return nil
}

func normalizeCurrency(currency, fallback string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return fallback
	}
	return currency
}

// recordPayment writes the ledger row. The provider call already succeeded,
// so a ledger failure is logged and not returned.
func recordPayment(ctx context.Context, ledger repository.SupportPaymentRepository, logger *zap.Logger, payment *entity.SupportPayment) {
	if ledger == nil {
		return
	}
	if payment.Status == "" {
		payment.Status = entity.PaymentStatusCreated
	}

	created, err := ledger.Create(ctx, payment)
	if err != nil {
		logger.Error("Failed to record support payment",
			zap.String("provider", payment.Provider),
			zap.String("provider_ref", payment.ProviderRef),
			zap.String("idempotency_key", payment.IdempotencyKey),
			zap.Error(err))
		return
	}
	if !created {
		logger.Debug("Support payment already recorded",
			zap.String("provider", payment.Provider),
			zap.String("idempotency_key", payment.IdempotencyKey))
	}
}
