package provider

import (
	"github.com/creatorhub/support-backend/services/payment/internal/config"
	"github.com/creatorhub/support-backend/services/payment/internal/domain/provider"
	razorpayProvider "github.com/creatorhub/support-backend/services/payment/internal/infrastructure/provider/razorpay"
	stripeProvider "github.com/creatorhub/support-backend/services/payment/internal/infrastructure/provider/stripe"
	"go.uber.org/zap"
)

// Factory creates payment gateways from configuration
type Factory struct {
	config *config.Config
	logger *zap.Logger
}

// NewFactory creates a new provider factory
func NewFactory(config *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		config: config,
		logger: logger,
	}
}

// Stripe returns the card-rail gateway. Its keys are validated at startup.
func (f *Factory) Stripe() provider.StripeGateway {
	return stripeProvider.NewGateway(stripeProvider.Config{
		SecretKey:           f.config.Stripe.SecretKey,
		PublishableKey:      f.config.Stripe.PublishableKey,
		EphemeralKeyVersion: f.config.Stripe.EphemeralKeyVersion,
		Timeout:             f.config.Stripe.Timeout,
	}, f.logger)
}

// Razorpay returns the order-rail gateway, or nil when credentials are
// missing. Callers answer 503 for a nil gateway.
func (f *Factory) Razorpay() provider.RazorpayGateway {
	cfg := f.config.Razorpay
	if !cfg.Configured() {
		f.logger.Warn("Razorpay credentials not configured, Razorpay routes will return 503")
		return nil
	}

	return razorpayProvider.NewGateway(razorpayProvider.Config{
		KeyID:         cfg.KeyID,
		KeySecret:     cfg.KeySecret,
		FetchTimeout:  cfg.FetchTimeout,
		FetchRetries:  cfg.FetchRetries,
		RetryInterval: cfg.RetryInterval,
	}, f.logger)
}
