package provider

import (
	"context"
	"fmt"

	"github.com/creatorhub/support-backend/services/payment/internal/domain/entity"
	"github.com/stripe/stripe-go/v79"
)

// ProviderType represents the type of payment provider
type ProviderType string

const (
	// ProviderTypeStripe is the card rail with native split transfers
	ProviderTypeStripe ProviderType = "stripe"
	// ProviderTypeRazorpay is the order rail with signature verification
	ProviderTypeRazorpay ProviderType = "razorpay"
)

func (p ProviderType) String() string {
	return string(p)
}

// PaymentIntentRequest asks the card rail for a payment intent with the
// platform fee declared up front.
type PaymentIntentRequest struct {
	Amount         int64
	Currency       string
	CreatorID      string
	Split          entity.CommissionSplit
	IdempotencyKey string
}

type SubscriptionRequest struct {
	PriceID        string
	Currency       string
	CreatorID      string
	FeePercent     float64
	IdempotencyKey string
}

type PayoutRequest struct {
	Amount         int64
	Currency       string
	AccountID      string
	IdempotencyKey string
}

// StripeGateway is the card rail. Balance and payout objects are passed
// through to the caller untouched.
type StripeGateway interface {
	CreateConnectedAccount(ctx context.Context, country, idempotencyKey string) (string, error)
	CreatePaymentIntent(ctx context.Context, req *PaymentIntentRequest) (*entity.PaymentIntent, error)
	CreateSubscription(ctx context.Context, req *SubscriptionRequest) (*entity.Subscription, error)
	GetBalance(ctx context.Context, accountID string) (*stripe.Balance, error)
	CreatePayout(ctx context.Context, req *PayoutRequest) (*stripe.Payout, error)
	PublishableKey() string
}

type OrderRequest struct {
	Amount    int64
	Currency  string
	CreatorID string
	Split     entity.CommissionSplit
	// Receipt is the caller's idempotency key
	Receipt string
}

type OrderSubscriptionRequest struct {
	PlanID     string
	CreatorID  string
	TotalCount int
	FeePercent float64
}

// RazorpayGateway is the order rail. It has no split primitive, so the
// split travels in order notes.
type RazorpayGateway interface {
	CreateOrder(ctx context.Context, req *OrderRequest) (*entity.Order, error)
	FetchOrder(ctx context.Context, orderID string) (*entity.Order, error)
	FetchPayment(ctx context.Context, paymentID string) (*entity.ProviderPayment, error)
	CreateSubscription(ctx context.Context, req *OrderSubscriptionRequest) (string, error)
	// VerifySignature checks the checkout signature in constant time
	VerifySignature(orderID, paymentID, signature string) bool
	KeyID() string
}

// ProviderError is a call rejected or failed by a payment provider. Details
// are for logs only and never reach the client.
type ProviderError struct {
	Provider   ProviderType
	Op         string
	Code       string
	Message    string
	RequestID  string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s %s failed", e.Provider, e.Op)
	if e.Code != "" {
		msg += " [" + e.Code + "]"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
