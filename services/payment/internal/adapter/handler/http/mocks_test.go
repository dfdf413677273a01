package http

import (
	"context"

	"github.com/creatorhub/support-backend/services/payment/internal/domain/entity"
	"github.com/creatorhub/support-backend/services/payment/internal/domain/provider"
	"github.com/stretchr/testify/mock"
	"github.com/stripe/stripe-go/v79"
)

type MockStripeGateway struct {
	mock.Mock
}

func (m *MockStripeGateway) CreateConnectedAccount(ctx context.Context, country, idempotencyKey string) (string, error) {
	args := m.Called(ctx, country, idempotencyKey)
	return args.String(0), args.Error(1)
}

func (m *MockStripeGateway) CreatePaymentIntent(ctx context.Context, req *provider.PaymentIntentRequest) (*entity.PaymentIntent, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PaymentIntent), args.Error(1)
}

func (m *MockStripeGateway) CreateSubscription(ctx context.Context, req *provider.SubscriptionRequest) (*entity.Subscription, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Subscription), args.Error(1)
}

func (m *MockStripeGateway) GetBalance(ctx context.Context, accountID string) (*stripe.Balance, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.Balance), args.Error(1)
}

func (m *MockStripeGateway) CreatePayout(ctx context.Context, req *provider.PayoutRequest) (*stripe.Payout, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.Payout), args.Error(1)
}

func (m *MockStripeGateway) PublishableKey() string {
	return "pk_test_123"
}

type MockRazorpayGateway struct {
	mock.Mock
}

func (m *MockRazorpayGateway) CreateOrder(ctx context.Context, req *provider.OrderRequest) (*entity.Order, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}

func (m *MockRazorpayGateway) FetchOrder(ctx context.Context, orderID string) (*entity.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Order), args.Error(1)
}

func (m *MockRazorpayGateway) FetchPayment(ctx context.Context, paymentID string) (*entity.ProviderPayment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ProviderPayment), args.Error(1)
}

func (m *MockRazorpayGateway) CreateSubscription(ctx context.Context, req *provider.OrderSubscriptionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// VerifySignature accepts "valid:<order>|<payment>" only
func (m *MockRazorpayGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return signature == "valid:"+orderID+"|"+paymentID
}

func (m *MockRazorpayGateway) KeyID() string {
	return "rzp_test_key"
}

type staticCountry string

func (s staticCountry) Country(string) string {
	return string(s)
}
