package stripe

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/creatorhub/support-backend/services/payment/internal/domain/entity"
	"github.com/creatorhub/support-backend/services/payment/internal/domain/provider"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"go.uber.org/zap"
)

const (
	defaultCountry             = "US"
	defaultEphemeralKeyVersion = "2025-02-24.acacia"
)

// Config holds what the gateway needs from the Stripe account
type Config struct {
	SecretKey      string
	PublishableKey string
	// EphemeralKeyVersion is the API version of the client SDK
	EphemeralKeyVersion string
	Timeout             time.Duration
	// URL overrides the API base, for tests
	URL string
}

// Gateway implements provider.StripeGateway on a per-instance client.API
type Gateway struct {
	api            *client.API
	publishableKey string
	keyVersion     string
	logger         *zap.Logger
}

// NewGateway creates a Stripe gateway. Network retries are disabled; creation
// calls are made safe to repeat with idempotency keys instead.
func NewGateway(cfg Config, logger *zap.Logger) *Gateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	backendConfig := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: timeout},
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     logger.Named("stripe").Sugar(),
	}
	if cfg.URL != "" {
		backendConfig.URL = stripe.String(cfg.URL)
	}

	keyVersion := cfg.EphemeralKeyVersion
	if keyVersion == "" {
		keyVersion = defaultEphemeralKeyVersion
	}

	return &Gateway{
		api:            client.New(cfg.SecretKey, stripe.NewBackendsWithConfig(backendConfig)),
		publishableKey: cfg.PublishableKey,
		keyVersion:     keyVersion,
		logger:         logger,
	}
}

func (g *Gateway) PublishableKey() string {
	return g.publishableKey
}

// CreateConnectedAccount creates an express account for a creator
func (g *Gateway) CreateConnectedAccount(ctx context.Context, country, idempotencyKey string) (string, error) {
	if country == "" {
		country = defaultCountry
	}

	params := &stripe.AccountParams{
		Type:         stripe.String(string(stripe.AccountTypeExpress)),
		Country:      stripe.String(strings.ToUpper(country)),
		BusinessType: stripe.String(string(stripe.AccountBusinessTypeIndividual)),
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{Requested: stripe.Bool(true)},
			Transfers:    &stripe.AccountCapabilitiesTransfersParams{Requested: stripe.Bool(true)},
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)

	account, err := g.api.Accounts.New(params)
	if err != nil {
		return "", g.wrapError("create_connected_account", err)
	}

	g.logger.Info("Stripe connected account created",
		zap.String("account_id", account.ID),
		zap.String("country", country))

	return account.ID, nil
}

// CreatePaymentIntent creates a throwaway customer, an ephemeral key scoped to
// it and a payment intent that declares the platform fee and the creator as
// transfer destination.
func (g *Gateway) CreatePaymentIntent(ctx context.Context, req *provider.PaymentIntentRequest) (*entity.PaymentIntent, error) {
	customer, err := g.createCustomer(ctx, req.CreatorID, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	keyParams := &stripe.EphemeralKeyParams{
		Customer:      stripe.String(customer.ID),
		StripeVersion: stripe.String(g.keyVersion),
	}
	keyParams.Context = ctx
	keyParams.SetIdempotencyKey(req.IdempotencyKey + ":ephemeral-key")

	ephemeralKey, err := g.api.EphemeralKeys.New(keyParams)
	if err != nil {
		return nil, g.wrapError("create_ephemeral_key", err)
	}

	intentParams := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(strings.ToLower(req.Currency)),
		Customer: stripe.String(customer.ID),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
		ApplicationFeeAmount: stripe.Int64(req.Split.PlatformFee),
		TransferData: &stripe.PaymentIntentTransferDataParams{
			Destination: stripe.String(req.CreatorID),
		},
	}
	intentParams.Context = ctx
	intentParams.SetIdempotencyKey(req.IdempotencyKey + ":intent")
	intentParams.AddMetadata("creatorId", req.CreatorID)
	intentParams.AddMetadata("platformFee", strconv.FormatInt(req.Split.PlatformFee, 10))
	intentParams.AddMetadata("creatorAmount", strconv.FormatInt(req.Split.CreatorAmount, 10))

	intent, err := g.api.PaymentIntents.New(intentParams)
	if err != nil {
		return nil, g.wrapError("create_payment_intent", err)
	}

	g.logger.Info("Stripe payment intent created",
		zap.String("payment_intent_id", intent.ID),
		zap.String("customer_id", customer.ID),
		zap.String("creator_id", req.CreatorID),
		zap.Int64("amount", req.Amount),
		zap.Int64("platform_fee", req.Split.PlatformFee))

	return &entity.PaymentIntent{
		ID:             intent.ID,
		ClientSecret:   intent.ClientSecret,
		EphemeralKey:   ephemeralKey.Secret,
		CustomerID:     customer.ID,
		PublishableKey: g.publishableKey,
	}, nil
}

// CreateSubscription starts an incomplete subscription whose first invoice
// the client pays. The platform keeps FeePercent of every invoice.
func (g *Gateway) CreateSubscription(ctx context.Context, req *provider.SubscriptionRequest) (*entity.Subscription, error) {
	customer, err := g.createCustomer(ctx, req.CreatorID, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}

	params := &stripe.SubscriptionParams{
		Customer: stripe.String(customer.ID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(req.PriceID)},
		},
		PaymentBehavior: stripe.String("default_incomplete"),
		PaymentSettings: &stripe.SubscriptionPaymentSettingsParams{
			SaveDefaultPaymentMethod: stripe.String("on_subscription"),
		},
		ApplicationFeePercent: stripe.Float64(req.FeePercent),
		TransferData: &stripe.SubscriptionTransferDataParams{
			Destination: stripe.String(req.CreatorID),
		},
	}
	if req.Currency != "" {
		params.Currency = stripe.String(strings.ToLower(req.Currency))
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.IdempotencyKey + ":subscription")
	params.AddExpand("latest_invoice.payment_intent")
	params.AddMetadata("creatorId", req.CreatorID)

	sub, err := g.api.Subscriptions.New(params)
	if err != nil {
		return nil, g.wrapError("create_subscription", err)
	}

	if sub.LatestInvoice == nil || sub.LatestInvoice.PaymentIntent == nil {
		g.logger.Error("Stripe subscription has no first invoice payment intent",
			zap.String("subscription_id", sub.ID))
		return nil, &provider.ProviderError{
			Provider: provider.ProviderTypeStripe,
			Op:       "create_subscription",
			Message:  "latest invoice has no payment intent",
		}
	}

	g.logger.Info("Stripe subscription created",
		zap.String("subscription_id", sub.ID),
		zap.String("customer_id", customer.ID),
		zap.String("creator_id", req.CreatorID),
		zap.String("price_id", req.PriceID))

	return &entity.Subscription{
		ClientSecret:   sub.LatestInvoice.PaymentIntent.ClientSecret,
		SubscriptionID: sub.ID,
	}, nil
}

// GetBalance returns the connected account's balance
func (g *Gateway) GetBalance(ctx context.Context, accountID string) (*stripe.Balance, error) {
	params := &stripe.BalanceParams{}
	params.Context = ctx
	params.SetStripeAccount(accountID)

	balance, err := g.api.Balance.Get(params)
	if err != nil {
		return nil, g.wrapError("get_balance", err)
	}
	return balance, nil
}

// CreatePayout pays out from the connected account to its bank
func (g *Gateway) CreatePayout(ctx context.Context, req *provider.PayoutRequest) (*stripe.Payout, error) {
	params := &stripe.PayoutParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(strings.ToLower(req.Currency)),
		Method:   stripe.String(string(stripe.PayoutMethodStandard)),
	}
	params.Context = ctx
	params.SetStripeAccount(req.AccountID)
	params.SetIdempotencyKey(req.IdempotencyKey)

	payout, err := g.api.Payouts.New(params)
	if err != nil {
		return nil, g.wrapError("create_payout", err)
	}

	g.logger.Info("Stripe payout created",
		zap.String("payout_id", payout.ID),
		zap.String("account_id", req.AccountID),
		zap.Int64("amount", req.Amount))

	return payout, nil
}

func (g *Gateway) createCustomer(ctx context.Context, creatorID, idempotencyKey string) (*stripe.Customer, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey + ":customer")
	params.AddMetadata("creatorId", creatorID)

	customer, err := g.api.Customers.New(params)
	if err != nil {
		return nil, g.wrapError("create_customer", err)
	}
	return customer, nil
}

// wrapError logs the full Stripe error and returns a provider.ProviderError
func (g *Gateway) wrapError(op string, err error) error {
	perr := &provider.ProviderError{
		Provider: provider.ProviderTypeStripe,
		Op:       op,
		Message:  err.Error(),
		Err:      err,
	}

	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		perr.Code = string(stripeErr.Code)
		perr.Message = stripeErr.Msg
		perr.RequestID = stripeErr.RequestID
		perr.StatusCode = stripeErr.HTTPStatusCode

		g.logger.Error("Stripe API call failed",
			zap.String("op", op),
			zap.String("type", string(stripeErr.Type)),
			zap.String("code", string(stripeErr.Code)),
			zap.String("request_id", stripeErr.RequestID),
			zap.Int("http_status", stripeErr.HTTPStatusCode),
			zap.String("message", stripeErr.Msg))
		return perr
	}

	g.logger.Error("Stripe API call failed",
		zap.String("op", op),
		zap.Error(err))
	return perr
}
