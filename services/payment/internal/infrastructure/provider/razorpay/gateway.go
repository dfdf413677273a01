package razorpay

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/creatorhub/support-backend/services/payment/internal/domain/entity"
	"github.com/creatorhub/support-backend/services/payment/internal/domain/provider"
	razorpay "github.com/razorpay/razorpay-go"
	"go.uber.org/zap"
)

// Razorpay caps order receipts at 40 characters
const maxReceiptLength = 40

// Config holds the Razorpay credentials and verification fetch policy
type Config struct {
	KeyID         string
	KeySecret     string
	FetchTimeout  time.Duration
	FetchRetries  int
	RetryInterval time.Duration
}

// orderAPI and the interfaces below are the subset of razorpay-go resources
// the gateway calls.
type orderAPI interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
	Fetch(orderID string, queryParams map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type paymentAPI interface {
	Fetch(paymentID string, queryParams map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type subscriptionAPI interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// Gateway implements provider.RazorpayGateway
type Gateway struct {
	orders        orderAPI
	payments      paymentAPI
	subscriptions subscriptionAPI
	keyID         string
	keySecret     string
	fetchTimeout  time.Duration
	fetchRetries  int
	retryInterval time.Duration
	logger        *zap.Logger
}

// NewGateway creates a Razorpay gateway on the official SDK client
func NewGateway(cfg Config, logger *zap.Logger) *Gateway {
	client := razorpay.NewClient(cfg.KeyID, cfg.KeySecret)
	if seconds := int16(cfg.FetchTimeout / time.Second); seconds > 0 {
		client.SetTimeout(seconds)
	}
	return newGateway(cfg, client.Order, client.Payment, client.Subscription, logger)
}

func newGateway(cfg Config, orders orderAPI, payments paymentAPI, subscriptions subscriptionAPI, logger *zap.Logger) *Gateway {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 5 * time.Second
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 500 * time.Millisecond
	}
	return &Gateway{
		orders:        orders,
		payments:      payments,
		subscriptions: subscriptions,
		keyID:         cfg.KeyID,
		keySecret:     cfg.KeySecret,
		fetchTimeout:  cfg.FetchTimeout,
		fetchRetries:  cfg.FetchRetries,
		retryInterval: cfg.RetryInterval,
		logger:        logger,
	}
}

func (g *Gateway) KeyID() string {
	return g.keyID
}

func (g *Gateway) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(g.keySecret, orderID, paymentID, signature)
}

// CreateOrder creates an order for the gross amount. Razorpay has no split
// primitive, so the split is stored in the order notes.
func (g *Gateway) CreateOrder(ctx context.Context, req *provider.OrderRequest) (*entity.Order, error) {
	notes := map[string]interface{}{
		"creatorId":     req.CreatorID,
		"platformFee":   strconv.FormatInt(req.Split.PlatformFee, 10),
		"creatorAmount": strconv.FormatInt(req.Split.CreatorAmount, 10),
	}
	data := map[string]interface{}{
		"amount":   req.Amount,
		"currency": strings.ToUpper(req.Currency),
		"receipt":  receipt(req.Receipt),
		"notes":    notes,
	}

	body, err := g.call(ctx, g.fetchTimeout, func() (map[string]interface{}, error) {
		return g.orders.Create(data, nil)
	})
	if err != nil {
		return nil, g.wrapError("create_order", err)
	}

	order, err := g.toOrder(body)
	if err != nil {
		return nil, g.wrapError("create_order", err)
	}

	g.logger.Info("Razorpay order created",
		zap.String("order_id", order.OrderID),
		zap.String("creator_id", req.CreatorID),
		zap.Int64("amount", order.Amount),
		zap.Int64("platform_fee", req.Split.PlatformFee))

	return order, nil
}

// FetchOrder loads an order, retrying transient failures
func (g *Gateway) FetchOrder(ctx context.Context, orderID string) (*entity.Order, error) {
	body, err := g.fetchWithRetry(ctx, "fetch_order", func() (map[string]interface{}, error) {
		return g.orders.Fetch(orderID, nil, nil)
	})
	if err != nil {
		return nil, g.wrapError("fetch_order", err)
	}

	order, err := g.toOrder(body)
	if err != nil {
		return nil, g.wrapError("fetch_order", err)
	}
	return order, nil
}

// FetchPayment loads a payment, retrying transient failures
func (g *Gateway) FetchPayment(ctx context.Context, paymentID string) (*entity.ProviderPayment, error) {
	body, err := g.fetchWithRetry(ctx, "fetch_payment", func() (map[string]interface{}, error) {
		return g.payments.Fetch(paymentID, nil, nil)
	})
	if err != nil {
		return nil, g.wrapError("fetch_payment", err)
	}

	id := stringField(body, "id")
	if id == "" {
		return nil, g.wrapError("fetch_payment", errors.New("payment response has no id"))
	}

	return &entity.ProviderPayment{
		ID:       id,
		OrderID:  stringField(body, "order_id"),
		Amount:   intField(body, "amount"),
		Currency: stringField(body, "currency"),
		Status:   stringField(body, "status"),
	}, nil
}

// CreateSubscription creates a plan subscription for TotalCount cycles
func (g *Gateway) CreateSubscription(ctx context.Context, req *provider.OrderSubscriptionRequest) (string, error) {
	data := map[string]interface{}{
		"plan_id":     req.PlanID,
		"total_count": req.TotalCount,
		"notes": map[string]interface{}{
			"creatorId":   req.CreatorID,
			"platformFee": strconv.FormatFloat(req.FeePercent, 'f', -1, 64),
		},
	}

	body, err := g.call(ctx, g.fetchTimeout, func() (map[string]interface{}, error) {
		return g.subscriptions.Create(data, nil)
	})
	if err != nil {
		return "", g.wrapError("create_subscription", err)
	}

	id := stringField(body, "id")
	if id == "" {
		return "", g.wrapError("create_subscription", errors.New("subscription response has no id"))
	}

	g.logger.Info("Razorpay subscription created",
		zap.String("subscription_id", id),
		zap.String("plan_id", req.PlanID),
		zap.String("creator_id", req.CreatorID))

	return id, nil
}

// fetchWithRetry runs fn with a per-attempt timeout and a fixed number of
// retries at a constant interval. Only reads go through here.
func (g *Gateway) fetchWithRetry(ctx context.Context, op string, fn func() (map[string]interface{}, error)) (map[string]interface{}, error) {
	var body map[string]interface{}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(g.retryInterval), uint64(g.fetchRetries)),
		ctx,
	)

	operation := func() error {
		result, err := g.call(ctx, g.fetchTimeout, fn)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		body = result
		return nil
	}

	notify := func(err error, wait time.Duration) {
		g.logger.Warn("Razorpay fetch failed, retrying",
			zap.String("op", op),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return nil, err
	}
	return body, nil
}

// call runs a blocking SDK call bounded by timeout and ctx. The SDK takes no
// context, so an abandoned call finishes in the background.
func (g *Gateway) call(ctx context.Context, timeout time.Duration, fn func() (map[string]interface{}, error)) (map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		body map[string]interface{}
		err  error
	}
	done := make(chan result, 1)

	go func() {
		body, err := fn()
		done <- result{body: body, err: err}
	}()

	select {
	case r := <-done:
		return r.body, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("razorpay call abandoned: %w", ctx.Err())
	}
}

func (g *Gateway) toOrder(body map[string]interface{}) (*entity.Order, error) {
	id := stringField(body, "id")
	if id == "" {
		return nil, errors.New("order response has no id")
	}
	return &entity.Order{
		OrderID:  id,
		Amount:   intField(body, "amount"),
		Currency: stringField(body, "currency"),
		Key:      g.keyID,
		Receipt:  stringField(body, "receipt"),
		Notes:    notesField(body),
	}, nil
}

func (g *Gateway) wrapError(op string, err error) error {
	g.logger.Error("Razorpay API call failed",
		zap.String("op", op),
		zap.Error(err))

	return &provider.ProviderError{
		Provider: provider.ProviderTypeRazorpay,
		Op:       op,
		Message:  err.Error(),
		Err:      err,
	}
}

// receipt returns key, hashed down when it exceeds Razorpay's receipt limit
func receipt(key string) string {
	if len(key) <= maxReceiptLength {
		return key
	}
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:maxReceiptLength]
}

func stringField(body map[string]interface{}, key string) string {
	switch v := body[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// intField reads a JSON number, which the SDK decodes as float64
func intField(body map[string]interface{}, key string) int64 {
	switch v := body[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}

// notesField flattens order notes. Razorpay sends an empty array rather
// than an object when an order has no notes.
func notesField(body map[string]interface{}) map[string]string {
	notes := make(map[string]string)
	raw, ok := body["notes"].(map[string]interface{})
	if !ok {
		return notes
	}
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			notes[k] = val
		case float64:
			notes[k] = strconv.FormatFloat(val, 'f', -1, 64)
		default:
			notes[k] = fmt.Sprint(val)
		}
	}
	return notes
}
