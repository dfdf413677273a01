package errors

// Shared error codes
const (
	ErrInternal        = "INTERNAL"
	ErrNotFound        = "NOT_FOUND"
	ErrInvalidArgument = "INVALID_ARGUMENT"
	ErrUnauthenticated = "UNAUTHENTICATED"
	ErrUnauthorized    = "UNAUTHORIZED"
	ErrConflict        = "CONFLICT"
	ErrTimeout         = "TIMEOUT"
	ErrNotImplemented  = "NOT_IMPLEMENTED"
	ErrUnavailable     = "UNAVAILABLE"
	ErrRateLimited     = "RATE_LIMITED"

	// Payment specific
	ErrProvider          = "PROVIDER_ERROR"
	ErrSignatureMismatch = "SIGNATURE_MISMATCH"
)
