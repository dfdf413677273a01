package http

import (
	"net/http"

	"github.com/creatorhub/support-backend/services/payment/internal/domain/entity"
	"github.com/creatorhub/support-backend/services/payment/internal/domain/provider"
	"github.com/creatorhub/support-backend/services/payment/internal/middleware/auth"
	"github.com/creatorhub/support-backend/services/payment/internal/usecase"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type StripeHandler struct {
	usecase *usecase.StripeUsecase
	logger  *zap.Logger
}

func NewStripeHandler(usecase *usecase.StripeUsecase, logger *zap.Logger) *StripeHandler {
	return &StripeHandler{
		usecase: usecase,
		logger:  logger,
	}
}

func (h *StripeHandler) CreateConnectedAccount(c echo.Context) error {
	key, err := idempotencyKey(c)
	if err != nil {
		return err
	}

	var req CreateConnectedAccountRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	accountID, err := h.usecase.CreateConnectedAccount(c.Request().Context(), req.Country, key)
	if err != nil {
		return err
	}

	h.logger.Info("Connected account created", zap.String("account_id", accountID))
	return c.JSON(http.StatusOK, map[string]string{"accountId": accountID})
}

func (h *StripeHandler) CreatePaymentIntent(c echo.Context) error {
	key, err := idempotencyKey(c)
	if err != nil {
		return err
	}

	var req CreatePaymentIntentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	intent, err := h.usecase.CreatePaymentIntent(c.Request().Context(), &entity.SupportRequest{
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
	return c.JSON(http.StatusOK, intent)
}

func (h *StripeHandler) CreateSubscription(c echo.Context) error {
	key, err := idempotencyKey(c)
	if err != nil {
		return err
	}

	var req CreateSubscriptionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	sub, err := h.usecase.CreateSubscription(c.Request().Context(), &entity.SupportRequest{
		Currency:       req.Currency,
		CreatorID:      req.CreatorID,
		Kind:           entity.SupportKindRecurring,
		PlanOrPriceID:  req.PriceID,
		PayerID:        payerID(c),
		IdempotencyKey: key,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sub)
}

// GetCreatorBalance passes the Stripe balance object through unchanged
func (h *StripeHandler) GetCreatorBalance(c echo.Context) error {
	balance, err := h.usecase.GetBalance(c.Request().Context(), c.Param("creatorId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, balance)
}

func (h *StripeHandler) CreatePayout(c echo.Context) error {
	key, err := idempotencyKey(c)
	if err != nil {
		return err
	}

	var req CreatePayoutRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	payout, err := h.usecase.CreatePayout(c.Request().Context(), &provider.PayoutRequest{
		Amount:         req.Amount,
		Currency:       req.Currency,
		AccountID:      req.CreatorID,
		IdempotencyKey: key,
	})
	if err != nil {
		return err
	}

	h.logger.Info("Payout created",
		zap.String("account_id", req.CreatorID),
		zap.String("payout_id", payout.ID),
		zap.Int64("amount", req.Amount))
	return c.JSON(http.StatusOK, payout)
}

// payerID is the authenticated subject, empty when auth is disabled
func payerID(c echo.Context) string {
	user, err := auth.GetUserFromContext(c)
	if err != nil {
		return ""
	}
	return user.UserID
}
