package usecase

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/creatorhub/support-backend/services/payment/internal/domain/entity"
	domainErrors "github.com/creatorhub/support-backend/services/payment/internal/domain/errors"
	"github.com/creatorhub/support-backend/services/payment/internal/domain/provider"
	"github.com/creatorhub/support-backend/services/payment/internal/domain/service"
	"go.uber.org/zap"
)

// SupportResult is the provider object created for a support request
type SupportResult struct {
	Provider provider.ProviderType
	Kind     entity.SupportKind
	Payload  interface{}
}

// MarshalJSON flattens the payload next to provider and kind
func (r SupportResult) MarshalJSON() ([]byte, error) {
	fields := make(map[string]interface{})
	if r.Payload != nil {
		raw, err := json.Marshal(r.Payload)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, err
		}
	}
	fields["provider"] = r.Provider
	fields["kind"] = r.Kind
	return json.Marshal(fields)
}

// SupportUsecase is the single entry point that picks the provider on the
// server side and delegates.
type SupportUsecase struct {
	selector *service.ProviderSelector
	stripe   *StripeUsecase
	razorpay *RazorpayUsecase
	logger   *zap.Logger
}

func NewSupportUsecase(
	selector *service.ProviderSelector,
	stripe *StripeUsecase,
	razorpay *RazorpayUsecase,
	logger *zap.Logger,
) *SupportUsecase {
	return &SupportUsecase{
		selector: selector,
		stripe:   stripe,
		razorpay: razorpay,
		logger:   logger,
	}
}

// Support creates the payment object for req. country must come from
// trusted data; empty means unknown.
func (u *SupportUsecase) Support(ctx context.Context, req *entity.SupportRequest, country string) (*SupportResult, error) {
	req.Currency = strings.ToUpper(req.Currency)
	selected := u.selector.Select(req.Currency, country)

	u.logger.Info("Provider selected for support request",
		zap.String("provider", selected.String()),
		zap.String("kind", string(req.Kind)),
		zap.String("currency", req.Currency),
		zap.String("country", country),
		zap.String("creator_id", req.CreatorID))

	result := &SupportResult{Provider: selected, Kind: req.Kind}

	var err error
	switch {
	case selected == provider.ProviderTypeRazorpay && req.Kind == entity.SupportKindRecurring:
		err = u.resolveTier(req, selected)
		if err == nil {
			result.Payload, err = u.razorpay.CreateSubscription(ctx, req)
		}
	case selected == provider.ProviderTypeRazorpay:
		result.Payload, err = u.razorpay.CreateOrder(ctx, req)
	case req.Kind == entity.SupportKindRecurring:
		err = u.resolveTier(req, selected)
		if err == nil {
			result.Payload, err = u.stripe.CreateSubscription(ctx, req)
		}
	default:
		result.Payload, err = u.stripe.CreatePaymentIntent(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PaymentMethods lists client-side payment methods for currency
func (u *SupportUsecase) PaymentMethods(currency string) []string {
	return u.selector.PaymentMethods(currency)
}

func (u *SupportUsecase) SupportTiers() []service.SupportTier {
	return u.selector.SupportTiers()
}

// resolveTier replaces a support tier id with the provider's price or plan
// id. Values that are not tier ids pass through unchanged.
func (u *SupportUsecase) resolveTier(req *entity.SupportRequest, selected provider.ProviderType) error {
	for _, tier := range u.selector.SupportTiers() {
		if tier.ID != req.PlanOrPriceID {
			continue
		}

		if selected == provider.ProviderTypeRazorpay {
			currency := normalizeCurrency(req.Currency, defaultRazorpayCurrency)
			if tier.Razorpay == nil || !strings.EqualFold(tier.Razorpay.Currency, currency) {
				return domainErrors.NewValidationErrorf("support tier %q is not offered in %s", tier.ID, currency)
			}
			req.PlanOrPriceID = tier.Razorpay.PlanID
			req.Amount = tier.Razorpay.Amount
			return nil
		}

		price, ok := tier.Stripe[strings.ToLower(req.Currency)]
		if !ok {
			return domainErrors.NewValidationErrorf("support tier %q is not offered in %s", tier.ID, req.Currency)
		}
		req.PlanOrPriceID = price.PriceID
		req.Amount = price.Amount
		return nil
	}
	return nil
}
