package usecase_test

import (
	"context"
	"encoding/json"

	"github.com/creatorhub/support-backend/services/payment/internal/domain/entity"
	"github.com/creatorhub/support-backend/services/payment/internal/domain/provider"
	"github.com/stretchr/testify/mock"
	"github.com/stripe/stripe-go/v79"
)

// MockStripeGateway is a mock implementation of provider.StripeGateway
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

// MockRazorpayGateway is a mock implementation of provider.RazorpayGateway
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

func (m *MockRazorpayGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return signature == "valid:"+orderID+"|"+paymentID
}

func (m *MockRazorpayGateway) KeyID() string {
	return "rzp_test_key"
}

// MockSupportPaymentRepository is a mock implementation of repository.SupportPaymentRepository
type MockSupportPaymentRepository struct {
	mock.Mock
}

func (m *MockSupportPaymentRepository) Create(ctx context.Context, payment *entity.SupportPayment) (bool, error) {
	args := m.Called(ctx, payment)
	return args.Bool(0), args.Error(1)
}

func (m *MockSupportPaymentRepository) GetByIdempotencyKey(ctx context.Context, provider, key string) (*entity.SupportPayment, error) {
	args := m.Called(ctx, provider, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.SupportPayment), args.Error(1)
}

func (m *MockSupportPaymentRepository) AttachProviderRef(ctx context.Context, provider, key, ref string) error {
	return m.Called(ctx, provider, key, ref).Error(0)
}

func (m *MockSupportPaymentRepository) ReleaseClaim(ctx context.Context, provider, key string) error {
	return m.Called(ctx, provider, key).Error(0)
}

func (m *MockSupportPaymentRepository) GetByProviderRef(ctx context.Context, provider, ref string) (*entity.SupportPayment, error) {
	args := m.Called(ctx, provider, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.SupportPayment), args.Error(1)
}

func (m *MockSupportPaymentRepository) MarkVerified(ctx context.Context, provider, ref, providerPaymentID string) (bool, error) {
	args := m.Called(ctx, provider, ref, providerPaymentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSupportPaymentRepository) MarkRejected(ctx context.Context, provider, ref, reason string) (bool, error) {
	args := m.Called(ctx, provider, ref, reason)
	return args.Bool(0), args.Error(1)
}

func (m *MockSupportPaymentRepository) RecordRejectedAttempt(ctx context.Context, provider, ref string) error {
	return m.Called(ctx, provider, ref).Error(0)
}

// MockWebhookEventRepository is a mock implementation of repository.WebhookEventRepository
type MockWebhookEventRepository struct {
	mock.Mock
}

func (m *MockWebhookEventRepository) SaveEvent(ctx context.Context, provider, eventID, eventType string, data json.RawMessage) (bool, error) {
	args := m.Called(ctx, provider, eventID, eventType)
	return args.Bool(0), args.Error(1)
}

func (m *MockWebhookEventRepository) MarkProcessed(ctx context.Context, provider, eventID string) error {
	return m.Called(ctx, provider, eventID).Error(0)
}

func (m *MockWebhookEventRepository) MarkFailed(ctx context.Context, provider, eventID string, cause error) error {
	return m.Called(ctx, provider, eventID, cause).Error(0)
}

// MockEventPublisher records published payment events
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event entity.PaymentEvent) error {
	return m.Called(ctx, event).Error(0)
}
