package errors

import (
	"fmt"

	apperrors "github.com/creatorhub/support-backend/pkg/errors"
)

// Public messages. These strings are part of the HTTP contract.
const (
	MsgInvalidSignature        = "Invalid signature"
	MsgRazorpayNotConfigured   = "Razorpay integration is not configured"
	MsgStripeNotConfigured     = "Stripe integration is not configured"
	MsgWebhookNotConfigured    = "Webhook verification is not configured"
	MsgTooManyRequests         = "Too many requests, please try again later."
	MsgCreateConnectedAccount  = "Failed to create connected account"
	MsgCreatePaymentIntent     = "Failed to create payment intent"
	MsgCreateSubscription      = "Failed to create subscription"
	MsgRetrieveBalance         = "Failed to retrieve balance"
	MsgCreatePayout            = "Failed to create payout"
	MsgCreateOrder             = "Failed to create order"
	MsgVerifyPayment           = "Failed to verify payment"
	MsgProcessWebhook          = "Failed to process webhook"
	MsgIdempotencyKeyRequired  = "Idempotency-Key header is required"
	MsgIdempotencyKeyMalformed = "Idempotency-Key must be 8-64 characters of letters, digits, '-' or '_'"
	MsgInvalidRequestBody      = "Invalid request body"
	MsgIdempotencyKeyInFlight  = "A request with this Idempotency-Key is still in progress"
	MsgIdempotencyKeyReused    = "Idempotency-Key was already used with different parameters"
	MsgRecordPayment           = "Failed to record payment"
)

// ErrSignatureMismatch is the terminal rejection of a forged or corrupted
// payment claim.
var ErrSignatureMismatch = apperrors.NewAppError(apperrors.ErrSignatureMismatch, MsgInvalidSignature, nil)

// NewValidationError reports malformed or missing request fields
func NewValidationError(message string) *apperrors.AppError {
	return apperrors.NewAppError(apperrors.ErrInvalidArgument, message, nil)
}

// NewValidationErrorf formats a validation message
func NewValidationErrorf(format string, args ...interface{}) *apperrors.AppError {
	return NewValidationError(fmt.Sprintf(format, args...))
}

// NewProviderUnavailableError reports a provider without credentials
func NewProviderUnavailableError(message string) *apperrors.AppError {
	return apperrors.NewAppError(apperrors.ErrUnavailable, message, nil)
}

// NewProviderError wraps a rejected provider call. message is what the client
// sees; cause is only logged.
func NewProviderError(message string, cause error) *apperrors.AppError {
	return apperrors.NewAppError(apperrors.ErrProvider, message, cause)
}

// NewIdempotencyConflictError reports a key whose first request has not
// finished yet
func NewIdempotencyConflictError() *apperrors.AppError {
	return apperrors.NewAppError(apperrors.ErrConflict, MsgIdempotencyKeyInFlight, nil)
}

// NewLedgerError wraps a ledger failure that happened before any provider
// call, so nothing was charged
func NewLedgerError(message string, cause error) *apperrors.AppError {
	return apperrors.NewAppError(apperrors.ErrInternal, message, cause)
}

// IsSignatureMismatch reports whether err is a rejected payment claim
func IsSignatureMismatch(err error) bool {
	return apperrors.CodeOf(err) == apperrors.ErrSignatureMismatch
}
