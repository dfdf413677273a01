package http

import (
	"io"
	"net/http"

	domainErrors "github.com/creatorhub/support-backend/services/payment/internal/domain/errors"
	"github.com/creatorhub/support-backend/services/payment/internal/usecase"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// maxWebhookBodyBytes matches Stripe's documented event size ceiling
const maxWebhookBodyBytes = 65536

type WebhookHandler struct {
	usecase *usecase.WebhookUsecase
	logger  *zap.Logger
}

func NewWebhookHandler(usecase *usecase.WebhookUsecase, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		usecase: usecase,
		logger:  logger,
	}
}

func (h *WebhookHandler) HandleStripeWebhook(c echo.Context) error {
	body, err := io.ReadAll(http.MaxBytesReader(c.Response(), c.Request().Body, maxWebhookBodyBytes))
	if err != nil {
		h.logger.Warn("Error reading webhook body", zap.Error(err))
		return domainErrors.NewValidationError(domainErrors.MsgInvalidRequestBody)
	}

	if err := h.usecase.HandleStripeWebhook(c.Request().Context(), body, c.Request().Header.Get("Stripe-Signature")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}
