package errors

var codeMapping = map[string]int{
	ErrInternal:          500,
	ErrNotFound:          404,
	ErrInvalidArgument:   400,
	ErrUnauthenticated:   401,
	ErrUnauthorized:      403,
	ErrConflict:          409,
	ErrTimeout:           504,
	ErrNotImplemented:    501,
	ErrUnavailable:       503,
	ErrRateLimited:       429,
	ErrProvider:          500,
	ErrSignatureMismatch: 400,
}

// GetCodeMapping returns the HTTP status for an error code
func GetCodeMapping(code string) int {
	if status, ok := codeMapping[code]; ok {
		return status
	}
	return 500
}
