package http

import (
	"regexp"

	domainErrors "github.com/creatorhub/support-backend/services/payment/internal/domain/errors"
	"github.com/labstack/echo/v4"
)

// IdempotencyKeyHeader carries the caller's key on every creation route
const IdempotencyKeyHeader = "Idempotency-Key"

var idempotencyKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,64}$`)

type CreateConnectedAccountRequest struct {
	Country string `json:"country" validate:"omitempty,country"`
}

type CreatePaymentIntentRequest struct {
	Amount    int64  `json:"amount" validate:"gt=0"`
	Currency  string `json:"currency" validate:"omitempty,currency"`
	CreatorID string `json:"creatorId" validate:"required,startswith=acct_"`
}

type CreateSubscriptionRequest struct {
	PriceID   string `json:"priceId" validate:"required"`
	Currency  string `json:"currency" validate:"omitempty,currency"`
	CreatorID string `json:"creatorId" validate:"required,startswith=acct_"`
}

type CreatePayoutRequest struct {
	Amount    int64  `json:"amount" validate:"gt=0"`
	Currency  string `json:"currency" validate:"omitempty,currency"`
	CreatorID string `json:"creatorId" validate:"required,startswith=acct_"`
}

type CreateRazorpayOrderRequest struct {
	Amount    int64  `json:"amount" validate:"gt=0"`
	Currency  string `json:"currency" validate:"omitempty,currency"`
	CreatorID string `json:"creatorId" validate:"required"`
}

// VerifyRazorpayPaymentRequest uses the field names Razorpay Checkout hands
// to the client
type VerifyRazorpayPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
}

type CreateRazorpaySubscriptionRequest struct {
	PlanID    string `json:"planId" validate:"required"`
	CreatorID string `json:"creatorId" validate:"required"`
}

// SupportRequest never names a provider; the server picks it.
// Recurring support takes a tier id or a provider price/plan id.
type SupportRequest struct {
	Amount        int64  `json:"amount" validate:"gte=0"`
	Currency      string `json:"currency" validate:"required,currency"`
	CreatorID     string `json:"creatorId" validate:"required"`
	Kind          string `json:"kind" validate:"required,oneof=one_time recurring"`
	PlanOrPriceID string `json:"planOrPriceId" validate:"required_if=Kind recurring"`
}

// bindAndValidate decodes the JSON body into dst and runs its validate tags
func bindAndValidate(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return domainErrors.NewValidationError(domainErrors.MsgInvalidRequestBody)
	}
	return c.Validate(dst)
}

// idempotencyKey returns the request's Idempotency-Key header
func idempotencyKey(c echo.Context) (string, error) {
	key := c.Request().Header.Get(IdempotencyKeyHeader)
	if key == "" {
		return "", domainErrors.NewValidationError(domainErrors.MsgIdempotencyKeyRequired)
	}
	if !idempotencyKeyPattern.MatchString(key) {
		return "", domainErrors.NewValidationError(domainErrors.MsgIdempotencyKeyMalformed)
	}
	return key, nil
}
