package http

import (
	"errors"
	"reflect"
	"strings"

	domainErrors "github.com/creatorhub/support-backend/services/payment/internal/domain/errors"
	"github.com/go-playground/validator/v10"
)

// RequestValidator plugs go-playground/validator into echo and turns the
// first failed field into a ValidationError.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()

	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// currency and country accept any letter case
	_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		return v.Var(strings.ToUpper(fl.Field().String()), "iso4217") == nil
	})
	_ = v.RegisterValidation("country", func(fl validator.FieldLevel) bool {
		return v.Var(strings.ToUpper(fl.Field().String()), "iso3166_1_alpha2") == nil
	})

	return &RequestValidator{validate: v}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	err := rv.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return domainErrors.NewValidationError(fieldMessage(fieldErrs[0]))
	}
	return domainErrors.NewValidationError(domainErrors.MsgInvalidRequestBody)
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "required_if":
		return field + " is required"
	case "gt":
		return field + " must be greater than " + fe.Param()
	case "gte":
		return field + " must not be negative"
	case "currency":
		return field + " must be an ISO 4217 currency code"
	case "country":
		return field + " must be an ISO 3166-1 alpha-2 country code"
	case "startswith":
		return field + " must start with " + fe.Param()
	case "oneof":
		return field + " must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return field + " is invalid"
	}
}
