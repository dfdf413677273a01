package stripe

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/creatorhub/support-backend/services/payment/internal/domain/entity"
	"github.com/creatorhub/support-backend/services/payment/internal/domain/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordedCall struct {
	method         string
	path           string
	idempotencyKey string
	stripeAccount  string
	form           map[string]string
}

type fakeStripe struct {
	mu        sync.Mutex
	calls     []recordedCall
	responses map[string]string
	status    int
}

func (f *fakeStripe) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	form := make(map[string]string)
	for k := range r.Form {
		form[k] = r.Form.Get(k)
	}

	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{
		method:         r.Method,
		path:           r.URL.Path,
		idempotencyKey: r.Header.Get("Idempotency-Key"),
		stripeAccount:  r.Header.Get("Stripe-Account"),
		form:           form,
	})
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Request-Id", "req_test")
	if f.status != 0 {
		w.WriteHeader(f.status)
	}
	body, ok := f.responses[r.URL.Path]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"unexpected path"}}`))
		return
	}
	_, _ = w.Write([]byte(body))
}

func (f *fakeStripe) call(path string) *recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.calls {
		if f.calls[i].path == path {
			return &f.calls[i]
		}
	}
	return nil
}

func newTestGateway(t *testing.T, fake *fakeStripe) *Gateway {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	return NewGateway(Config{
		SecretKey:      "sk_test_123",
		PublishableKey: "pk_test_123",
		URL:            server.URL,
	}, zap.NewNop())
}

func TestGateway_CreatePaymentIntent(t *testing.T) {
	fake := &fakeStripe{responses: map[string]string{
		"/v1/customers":       `{"id":"cus_123","object":"customer"}`,
		"/v1/ephemeral_keys":  `{"id":"ephkey_123","object":"ephemeral_key","secret":"ek_test_secret"}`,
		"/v1/payment_intents": `{"id":"pi_123","object":"payment_intent","client_secret":"pi_123_secret_abc"}`,
	}}
	gateway := newTestGateway(t, fake)

	intent, err := gateway.CreatePaymentIntent(context.Background(), &provider.PaymentIntentRequest{
		Amount:         1000,
		Currency:       "USD",
		CreatorID:      "acct_creator",
		Split:          entity.CommissionSplit{GrossAmount: 1000, PlatformFee: 50, CreatorAmount: 950},
		IdempotencyKey: "tip-00000001",
	})
	require.NoError(t, err)

	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, "pi_123_secret_abc", intent.ClientSecret)
	assert.Equal(t, "ek_test_secret", intent.EphemeralKey)
	assert.Equal(t, "cus_123", intent.CustomerID)
	assert.Equal(t, "pk_test_123", intent.PublishableKey)

	customerCall := fake.call("/v1/customers")
	require.NotNil(t, customerCall)
	assert.Equal(t, "tip-00000001:customer", customerCall.idempotencyKey)

	keyCall := fake.call("/v1/ephemeral_keys")
	require.NotNil(t, keyCall)
	assert.Equal(t, "cus_123", keyCall.form["customer"])
	assert.Equal(t, "tip-00000001:ephemeral-key", keyCall.idempotencyKey)

	intentCall := fake.call("/v1/payment_intents")
	require.NotNil(t, intentCall)
	assert.Equal(t, "tip-00000001:intent", intentCall.idempotencyKey)
	assert.Equal(t, "1000", intentCall.form["amount"])
	assert.Equal(t, "usd", intentCall.form["currency"])
	assert.Equal(t, "50", intentCall.form["application_fee_amount"])
	assert.Equal(t, "acct_creator", intentCall.form["transfer_data[destination]"])
	assert.Equal(t, "true", intentCall.form["automatic_payment_methods[enabled]"])
	assert.Equal(t, "never", intentCall.form["automatic_payment_methods[allow_redirects]"])
	assert.Equal(t, "950", intentCall.form["metadata[creatorAmount]"])
}

func TestGateway_CreateSubscription(t *testing.T) {
	fake := &fakeStripe{responses: map[string]string{
		"/v1/customers": `{"id":"cus_123","object":"customer"}`,
		"/v1/subscriptions": `{"id":"sub_123","object":"subscription",
			"latest_invoice":{"id":"in_123","object":"invoice",
				"payment_intent":{"id":"pi_456","object":"payment_intent","client_secret":"pi_456_secret"}}}`,
	}}
	gateway := newTestGateway(t, fake)

	sub, err := gateway.CreateSubscription(context.Background(), &provider.SubscriptionRequest{
		PriceID:        "price_basic_usd",
		Currency:       "usd",
		CreatorID:      "acct_creator",
		FeePercent:     5,
		IdempotencyKey: "sub-00000001",
	})
	require.NoError(t, err)
	assert.Equal(t, "sub_123", sub.SubscriptionID)
	assert.Equal(t, "pi_456_secret", sub.ClientSecret)

	call := fake.call("/v1/subscriptions")
	require.NotNil(t, call)
	assert.Equal(t, "price_basic_usd", call.form["items[0][price]"])
	assert.Equal(t, "default_incomplete", call.form["payment_behavior"])
	assert.Equal(t, "on_subscription", call.form["payment_settings[save_default_payment_method]"])
	assert.Equal(t, "5", call.form["application_fee_percent"])
	assert.Equal(t, "acct_creator", call.form["transfer_data[destination]"])
	assert.Equal(t, "latest_invoice.payment_intent", call.form["expand[0]"])
}

func TestGateway_CreateSubscription_MissingInvoiceIntent(t *testing.T) {
	fake := &fakeStripe{responses: map[string]string{
		"/v1/customers":     `{"id":"cus_123","object":"customer"}`,
		"/v1/subscriptions": `{"id":"sub_123","object":"subscription"}`,
	}}
	gateway := newTestGateway(t, fake)

	_, err := gateway.CreateSubscription(context.Background(), &provider.SubscriptionRequest{
		PriceID: "price_basic_usd", CreatorID: "acct_creator", FeePercent: 5, IdempotencyKey: "sub-00000001",
	})
	var perr *provider.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "create_subscription", perr.Op)
}

func TestGateway_ConnectedAccountScopedCalls(t *testing.T) {
	fake := &fakeStripe{responses: map[string]string{
		"/v1/accounts": `{"id":"acct_new","object":"account"}`,
		"/v1/balance":  `{"object":"balance","available":[{"amount":950,"currency":"usd"}],"pending":[]}`,
		"/v1/payouts":  `{"id":"po_123","object":"payout","amount":500,"currency":"usd"}`,
	}}
	gateway := newTestGateway(t, fake)
	ctx := context.Background()

	accountID, err := gateway.CreateConnectedAccount(ctx, "", "acct-00000001")
	require.NoError(t, err)
	assert.Equal(t, "acct_new", accountID)
	accountCall := fake.call("/v1/accounts")
	assert.Equal(t, "US", accountCall.form["country"])
	assert.Equal(t, "express", accountCall.form["type"])
	assert.Equal(t, "individual", accountCall.form["business_type"])
	assert.Equal(t, "true", accountCall.form["capabilities[card_payments][requested]"])
	assert.Equal(t, "true", accountCall.form["capabilities[transfers][requested]"])

	balance, err := gateway.GetBalance(ctx, "acct_creator")
	require.NoError(t, err)
	require.Len(t, balance.Available, 1)
	assert.Equal(t, int64(950), balance.Available[0].Amount)
	assert.Equal(t, "acct_creator", fake.call("/v1/balance").stripeAccount)

	payout, err := gateway.CreatePayout(ctx, &provider.PayoutRequest{
		Amount: 500, Currency: "USD", AccountID: "acct_creator", IdempotencyKey: "payout-0000001",
	})
	require.NoError(t, err)
	assert.Equal(t, "po_123", payout.ID)
	payoutCall := fake.call("/v1/payouts")
	assert.Equal(t, "acct_creator", payoutCall.stripeAccount)
	assert.Equal(t, "standard", payoutCall.form["method"])
	assert.Equal(t, "payout-0000001", payoutCall.idempotencyKey)
}

func TestGateway_StripeErrorIsWrapped(t *testing.T) {
	fake := &fakeStripe{
		status: http.StatusBadRequest,
		responses: map[string]string{
			"/v1/accounts": `{"error":{"type":"invalid_request_error","code":"country_unsupported","message":"Country XX is not supported"}}`,
		},
	}
	gateway := newTestGateway(t, fake)

	_, err := gateway.CreateConnectedAccount(context.Background(), "XX", "acct-00000001")
	require.Error(t, err)

	var perr *provider.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, provider.ProviderTypeStripe, perr.Provider)
	assert.Equal(t, "country_unsupported", perr.Code)
	assert.Equal(t, "req_test", perr.RequestID)
	assert.Equal(t, http.StatusBadRequest, perr.StatusCode)
}
