package http

import (
	"net/http"

	"github.com/creatorhub/support-backend/services/payment/internal/domain/entity"
	domainErrors "github.com/creatorhub/support-backend/services/payment/internal/domain/errors"
	"github.com/creatorhub/support-backend/services/payment/internal/usecase"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type RazorpayHandler struct {
	usecase *usecase.RazorpayUsecase
	logger  *zap.Logger
}

func NewRazorpayHandler(usecase *usecase.RazorpayUsecase, logger *zap.Logger) *RazorpayHandler {
	return &RazorpayHandler{
		usecase: usecase,
		logger:  logger,
	}
}

// VerifyPaymentResponse is the body of a successful verification
type VerifyPaymentResponse struct {
	Status  string                  `json:"status"`
	Message string                  `json:"message"`
	Payment *entity.VerifiedPayment `json:"payment"`
}

func (h *RazorpayHandler) CreateOrder(c echo.Context) error {
	if !h.usecase.Configured() {
		return domainErrors.NewProviderUnavailableError(domainErrors.MsgRazorpayNotConfigured)
	}
	key, err := idempotencyKey(c)
	if err != nil {
		return err
	}

	var req CreateRazorpayOrderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	order, err := h.usecase.CreateOrder(c.Request().Context(), &entity.SupportRequest{
		Amount:         req.Amount,
		Currency:       req.Currency,
		CreatorID:      req.CreatorID,
		Kind:           entity.SupportKindOneTime,
		PayerID:        payerID(c),
		IdempotencyKey: key,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, order)
}

func (h *RazorpayHandler) VerifyPayment(c echo.Context) error {
	if !h.usecase.Configured() {
		return domainErrors.NewProviderUnavailableError(domainErrors.MsgRazorpayNotConfigured)
	}
	var req VerifyRazorpayPaymentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	payment, err := h.usecase.VerifyPayment(c.Request().Context(), &entity.VerificationClaim{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, VerifyPaymentResponse{
		Status:  "success",
		Message: "Payment verified successfully",
		Payment: payment,
	})
}

func (h *RazorpayHandler) CreateSubscription(c echo.Context) error {
	if !h.usecase.Configured() {
		return domainErrors.NewProviderUnavailableError(domainErrors.MsgRazorpayNotConfigured)
	}
	key, err := idempotencyKey(c)
	if err != nil {
		return err
	}

	var req CreateRazorpaySubscriptionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	sub, err := h.usecase.CreateSubscription(c.Request().Context(), &entity.SupportRequest{
		CreatorID:      req.CreatorID,
		Kind:           entity.SupportKindRecurring,
		PlanOrPriceID:  req.PlanID,
		PayerID:        payerID(c),
		IdempotencyKey: key,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sub)
}
