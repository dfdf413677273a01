package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/creatorhub/support-backend/services/payment/internal/domain/entity"
	domainErrors "github.com/creatorhub/support-backend/services/payment/internal/domain/errors"
	"github.com/creatorhub/support-backend/services/payment/internal/domain/provider"
	"github.com/creatorhub/support-backend/services/payment/internal/domain/repository"
	"github.com/creatorhub/support-backend/services/payment/internal/domain/service"
	"go.uber.org/zap"
)

const (
	razorpayProvider          = string(provider.ProviderTypeRazorpay)
	defaultRazorpayCurrency   = "INR"
	razorpaySubscriptionCount = 12
)

// RazorpayUsecase runs the order-rail flows. A nil gateway means Razorpay
// is not configured and every operation answers unavailable.
type RazorpayUsecase struct {
	gateway    provider.RazorpayGateway
	commission *service.CommissionCalculator
	ledger     repository.SupportPaymentRepository
	publisher  EventPublisher
	recorder   Recorder
	logger     *zap.Logger
}

func NewRazorpayUsecase(
	gateway provider.RazorpayGateway,
	commission *service.CommissionCalculator,
	ledger repository.SupportPaymentRepository,
	publisher EventPublisher,
	recorder Recorder,
	logger *zap.Logger,
) *RazorpayUsecase {
	return &RazorpayUsecase{
		gateway:    gateway,
		commission: commission,
		ledger:     ledger,
		publisher:  publisherOrNop(publisher),
		recorder:   recorderOrNop(recorder),
		logger:     logger,
	}
}

func (u *RazorpayUsecase) Configured() bool {
	return u.gateway != nil
}

// CreateOrder creates an order for the gross amount with the split in its
// notes. The idempotency key is claimed in the ledger before Razorpay is
// called, so a key produces at most one order.
func (u *RazorpayUsecase) CreateOrder(ctx context.Context, req *entity.SupportRequest) (*entity.Order, error) {
	if u.gateway == nil {
		return nil, domainErrors.NewProviderUnavailableError(domainErrors.MsgRazorpayNotConfigured)
	}
	if req.Amount <= 0 {
		return nil, domainErrors.NewValidationError("amount must be greater than 0")
	}

	currency := normalizeCurrency(req.Currency, defaultRazorpayCurrency)
	split, err := u.commission.Calculate(req.Amount)
	if err != nil {
		return nil, err
	}

	payment := &entity.SupportPayment{
		Provider:       razorpayProvider,
		Kind:           entity.SupportKindOneTime,
		CreatorID:      req.CreatorID,
		PayerID:        req.PayerID,
		Amount:         split.GrossAmount,
		Currency:       currency,
		PlatformFee:    split.PlatformFee,
		CreatorAmount:  split.CreatorAmount,
		IdempotencyKey: req.IdempotencyKey,
	}
	claimed, existing, err := u.claim(ctx, payment)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := checkReplay(existing, payment); err != nil {
			return nil, err
		}
		u.logger.Info("Returning recorded Razorpay order for replayed key",
			zap.String("order_id", existing.ProviderRef),
			zap.String("idempotency_key", req.IdempotencyKey))
		return &entity.Order{
			OrderID:  existing.ProviderRef,
			Amount:   existing.Amount,
			Currency: existing.Currency,
			Key:      u.gateway.KeyID(),
		}, nil
	}

	order, err := u.gateway.CreateOrder(ctx, &provider.OrderRequest{
		Amount:    req.Amount,
		Currency:  currency,
		CreatorID: req.CreatorID,
		Split:     split,
		Receipt:   req.IdempotencyKey,
	})
	if err != nil {
		u.release(ctx, claimed, req.IdempotencyKey)
		u.recorder.ObserveProviderError(razorpayProvider, "create_order")
		return nil, domainErrors.NewProviderError(domainErrors.MsgCreateOrder, err)
	}

	payment.ProviderRef = order.OrderID
	u.complete(ctx, claimed, payment)

	return order, nil
}

// VerifyPayment checks a checkout claim. The signature is checked before
// anything else and a mismatch never reaches the provider.
func (u *RazorpayUsecase) VerifyPayment(ctx context.Context, claim *entity.VerificationClaim) (*entity.VerifiedPayment, error) {
	if u.gateway == nil {
		return nil, domainErrors.NewProviderUnavailableError(domainErrors.MsgRazorpayNotConfigured)
	}

	if !u.gateway.VerifySignature(claim.OrderID, claim.PaymentID, claim.Signature) {
		u.rejectClaim(ctx, claim)
		return nil, domainErrors.ErrSignatureMismatch
	}

	payment, err := u.gateway.FetchPayment(ctx, claim.PaymentID)
	if err != nil {
		u.recorder.ObserveVerification(razorpayProvider, ResultProviderError)
		u.recorder.ObserveProviderError(razorpayProvider, "fetch_payment")
		return nil, domainErrors.NewProviderError(domainErrors.MsgVerifyPayment, err)
	}

	order, err := u.gateway.FetchOrder(ctx, claim.OrderID)
	if err != nil {
		u.recorder.ObserveVerification(razorpayProvider, ResultProviderError)
		u.recorder.ObserveProviderError(razorpayProvider, "fetch_order")
		return nil, domainErrors.NewProviderError(domainErrors.MsgVerifyPayment, err)
	}

	creatorID, split, err := splitFromNotes(order.Notes)
	if err != nil {
		u.logger.Error("Razorpay order notes do not carry a valid split",
			zap.String("order_id", claim.OrderID),
			zap.Any("notes", order.Notes),
			zap.Error(err))
		u.recorder.ObserveVerification(razorpayProvider, ResultProviderError)
		return nil, domainErrors.NewProviderError(domainErrors.MsgVerifyPayment, err)
	}

	u.markVerified(ctx, claim, creatorID, payment, split)
	u.recorder.ObserveVerification(razorpayProvider, ResultVerified)

	u.logger.Info("Razorpay payment verified",
		zap.String("order_id", claim.OrderID),
		zap.String("payment_id", claim.PaymentID),
		zap.String("creator_id", creatorID),
		zap.Int64("creator_amount", split.CreatorAmount),
		zap.Int64("platform_fee", split.PlatformFee))

	return &entity.VerifiedPayment{
		ID:            payment.ID,
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		CreatorAmount: split.CreatorAmount,
		PlatformFee:   split.PlatformFee,
	}, nil
}

// CreateSubscription starts a 12 cycle plan subscription. Razorpay cannot
// split subscription charges, so only the fee percent is noted.
func (u *RazorpayUsecase) CreateSubscription(ctx context.Context, req *entity.SupportRequest) (*entity.OrderSubscription, error) {
	if u.gateway == nil {
		return nil, domainErrors.NewProviderUnavailableError(domainErrors.MsgRazorpayNotConfigured)
	}
	if req.PlanOrPriceID == "" {
		return nil, domainErrors.NewValidationError("planId is required")
	}

	payment := &entity.SupportPayment{
		Provider:       razorpayProvider,
		Kind:           entity.SupportKindRecurring,
		CreatorID:      req.CreatorID,
		PayerID:        req.PayerID,
		Amount:         req.Amount,
		Currency:       normalizeCurrency(req.Currency, defaultRazorpayCurrency),
		IdempotencyKey: req.IdempotencyKey,
		Metadata: map[string]interface{}{
			"planId":     req.PlanOrPriceID,
			"totalCount": razorpaySubscriptionCount,
			"feePercent": u.commission.FeePercent(),
		},
	}
	claimed, existing, err := u.claim(ctx, payment)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := checkReplay(existing, payment); err != nil {
			return nil, err
		}
		return &entity.OrderSubscription{
			SubscriptionID: existing.ProviderRef,
			Key:            u.gateway.KeyID(),
		}, nil
	}

	subscriptionID, err := u.gateway.CreateSubscription(ctx, &provider.OrderSubscriptionRequest{
		PlanID:     req.PlanOrPriceID,
		CreatorID:  req.CreatorID,
		TotalCount: razorpaySubscriptionCount,
		FeePercent: u.commission.FeePercent(),
	})
	if err != nil {
		u.release(ctx, claimed, req.IdempotencyKey)
		u.recorder.ObserveProviderError(razorpayProvider, "create_subscription")
		return nil, domainErrors.NewProviderError(domainErrors.MsgCreateSubscription, err)
	}

	payment.ProviderRef = subscriptionID
	u.complete(ctx, claimed, payment)

	return &entity.OrderSubscription{
		SubscriptionID: subscriptionID,
		Key:            u.gateway.KeyID(),
	}, nil
}

// claim reserves payment's idempotency key with a pending ledger row before
// any provider call. claimed is false when there is no ledger or no key. When
// another request already holds the key, its row is returned as existing.
func (u *RazorpayUsecase) claim(ctx context.Context, payment *entity.SupportPayment) (claimed bool, existing *entity.SupportPayment, err error) {
	if u.ledger == nil || payment.IdempotencyKey == "" {
		return false, nil, nil
	}

	payment.Status = entity.PaymentStatusPending
	created, err := u.ledger.Create(ctx, payment)
	if err != nil {
		return false, nil, domainErrors.NewLedgerError(domainErrors.MsgRecordPayment, err)
	}
	if created {
		return true, nil, nil
	}

	existing, err = u.ledger.GetByIdempotencyKey(ctx, razorpayProvider, payment.IdempotencyKey)
	if err != nil {
		return false, nil, domainErrors.NewLedgerError(domainErrors.MsgRecordPayment, err)
	}
	if existing == nil {
		// released by a failed first attempt between insert and lookup
		return false, nil, domainErrors.NewIdempotencyConflictError()
	}
	return false, existing, nil
}

// complete stores the provider reference on the claimed row. Without a claim
// the row is written whole. The provider object exists either way, so
// failures are only logged.
func (u *RazorpayUsecase) complete(ctx context.Context, claimed bool, payment *entity.SupportPayment) {
	if !claimed {
		payment.Status = entity.PaymentStatusCreated
		recordPayment(ctx, u.ledger, u.logger, payment)
		return
	}

	if err := u.ledger.AttachProviderRef(ctx, razorpayProvider, payment.IdempotencyKey, payment.ProviderRef); err != nil {
		u.logger.Error("Failed to attach Razorpay reference to claimed key",
			zap.String("provider_ref", payment.ProviderRef),
			zap.String("idempotency_key", payment.IdempotencyKey),
			zap.Error(err))
	}
}

// release frees a claimed key after the provider refused the call, so the
// client can retry with the same key.
func (u *RazorpayUsecase) release(ctx context.Context, claimed bool, key string) {
	if !claimed {
		return
	}
	if err := u.ledger.ReleaseClaim(context.WithoutCancel(ctx), razorpayProvider, key); err != nil {
		u.logger.Error("Failed to release idempotency key",
			zap.String("idempotency_key", key),
			zap.Error(err))
	}
}

// checkReplay accepts a recorded row only for the request that created it
func checkReplay(existing, payment *entity.SupportPayment) error {
	if existing.Kind != payment.Kind ||
		existing.CreatorID != payment.CreatorID ||
		existing.Amount != payment.Amount ||
		!strings.EqualFold(existing.Currency, payment.Currency) ||
		metadataString(existing, "planId") != metadataString(payment, "planId") {
		return domainErrors.NewValidationError(domainErrors.MsgIdempotencyKeyReused)
	}
	if existing.Status == entity.PaymentStatusPending {
		return domainErrors.NewIdempotencyConflictError()
	}
	return nil
}

func metadataString(p *entity.SupportPayment, key string) string {
	v, ok := p.Metadata[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// rejectClaim counts a forged claim against the order. The row's status is
// left alone so a forged claim cannot block the genuine one.
func (u *RazorpayUsecase) rejectClaim(ctx context.Context, claim *entity.VerificationClaim) {
	u.recorder.ObserveVerification(razorpayProvider, ResultSignatureMismatch)

	u.logger.Warn("Razorpay payment signature mismatch",
		zap.String("order_id", claim.OrderID),
		zap.String("payment_id", claim.PaymentID))

	if u.ledger != nil && claim.OrderID != "" {
		if err := u.ledger.RecordRejectedAttempt(ctx, razorpayProvider, claim.OrderID); err != nil {
			u.logger.Error("Failed to record rejected verification attempt",
				zap.String("order_id", claim.OrderID),
				zap.Error(err))
		}
	}

	publishEvent(ctx, u.publisher, u.logger, entity.PaymentEvent{
		Type:        entity.PaymentEventRejected,
		Provider:    razorpayProvider,
		ProviderRef: claim.OrderID,
		Reason:      ResultSignatureMismatch,
	})
}

func (u *RazorpayUsecase) markVerified(ctx context.Context, claim *entity.VerificationClaim, creatorID string, payment *entity.ProviderPayment, split entity.CommissionSplit) {
	if u.ledger == nil {
		return
	}

	changed, err := u.ledger.MarkVerified(ctx, razorpayProvider, claim.OrderID, payment.ID)
	if err != nil {
		u.logger.Error("Failed to mark support payment verified",
			zap.String("order_id", claim.OrderID),
			zap.Error(err))
		return
	}
	if !changed {
		u.logger.Debug("Support payment already final or not recorded",
			zap.String("order_id", claim.OrderID))
		return
	}

	publishEvent(ctx, u.publisher, u.logger, entity.PaymentEvent{
		Type:          entity.PaymentEventVerified,
		Provider:      razorpayProvider,
		ProviderRef:   claim.OrderID,
		CreatorID:     creatorID,
		Amount:        payment.Amount,
		Currency:      payment.Currency,
		PlatformFee:   split.PlatformFee,
		CreatorAmount: split.CreatorAmount,
	})
}

// splitFromNotes recovers the split stored on an order at creation
func splitFromNotes(notes map[string]string) (string, entity.CommissionSplit, error) {
	var split entity.CommissionSplit

	creatorID, ok := notes["creatorId"]
	if !ok || creatorID == "" {
		return "", split, fmt.Errorf("order notes missing creatorId")
	}

	platformFee, err := parseMinorUnits(notes, "platformFee")
	if err != nil {
		return "", split, err
	}
	creatorAmount, err := parseMinorUnits(notes, "creatorAmount")
	if err != nil {
		return "", split, err
	}

	split.PlatformFee = platformFee
	split.CreatorAmount = creatorAmount
	split.GrossAmount = platformFee + creatorAmount
	return creatorID, split, nil
}

func parseMinorUnits(notes map[string]string, key string) (int64, error) {
	raw, ok := notes[key]
	if !ok {
		return 0, fmt.Errorf("order notes missing %s", key)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("order note %s is not an integer: %q", key, raw)
	}
	if v < 0 {
		return 0, fmt.Errorf("order note %s is negative: %d", key, v)
	}
	return v, nil
}
