package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type HealthHandler struct {
	service  string
	stripe   bool
	razorpay bool
}

func NewHealthHandler(service string, stripeConfigured, razorpayConfigured bool) *HealthHandler {
	return &HealthHandler{
		service:  service,
		stripe:   stripeConfigured,
		razorpay: razorpayConfigured,
	}
}

func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": h.service,
		"providers": map[string]string{
			"stripe":   providerState(h.stripe),
			"razorpay": providerState(h.razorpay),
		},
	})
}

func providerState(configured bool) string {
	if configured {
		return "configured"
	}
	return "not_configured"
}
