package http

import (
	"net/http"
	"strings"

	"github.com/creatorhub/support-backend/services/payment/internal/domain/entity"
	"github.com/creatorhub/support-backend/services/payment/internal/middleware/auth"
	"github.com/creatorhub/support-backend/services/payment/internal/usecase"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CountryResolver maps a client IP to an ISO country code, "" when unknown
type CountryResolver interface {
	Country(ip string) string
}

type SupportHandler struct {
	usecase *usecase.SupportUsecase
	geo     CountryResolver
	logger  *zap.Logger
}

// NewSupportHandler wires the unified support route. geo may be nil.
func NewSupportHandler(usecase *usecase.SupportUsecase, geo CountryResolver, logger *zap.Logger) *SupportHandler {
	return &SupportHandler{
		usecase: usecase,
		geo:     geo,
		logger:  logger,
	}
}

// Support selects the provider on the server and creates its payment object
func (h *SupportHandler) Support(c echo.Context) error {
	key, err := idempotencyKey(c)
	if err != nil {
		return err
	}

	var req SupportRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.usecase.Support(c.Request().Context(), &entity.SupportRequest{
		Amount:         req.Amount,
		Currency:       req.Currency,
		CreatorID:      req.CreatorID,
		Kind:           entity.SupportKind(req.Kind),
		PlanOrPriceID:  req.PlanOrPriceID,
		PayerID:        payerID(c),
		IdempotencyKey: key,
	}, h.country(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

func (h *SupportHandler) PaymentMethods(c echo.Context) error {
	currency := strings.ToLower(c.Param("currency"))
	return c.JSON(http.StatusOK, map[string]interface{}{
		"currency": currency,
		"methods":  h.usecase.PaymentMethods(currency),
	})
}

func (h *SupportHandler) SupportTiers(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tiers": h.usecase.SupportTiers(),
	})
}

// country prefers the verified token claim over the client IP. Nothing the
// client sends in the body is consulted.
func (h *SupportHandler) country(c echo.Context) string {
	if user, err := auth.GetUserFromContext(c); err == nil && user.Country != "" {
		return user.Country
	}
	if h.geo != nil {
		return h.geo.Country(c.RealIP())
	}
	return ""
}
