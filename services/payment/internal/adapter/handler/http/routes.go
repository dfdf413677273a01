package http

import (
	"github.com/labstack/echo/v4"
)

// Handlers groups every HTTP handler of the service
type Handlers struct {
	Health   *HealthHandler
	Stripe   *StripeHandler
	Razorpay *RazorpayHandler
	Support  *SupportHandler
	Webhook  *WebhookHandler
}

// PublicPaths are served without authentication
var PublicPaths = []string{
	"/health",
	"/metrics",
	"/payment-methods",
	"/support-tiers",
	"/webhook",
}

// RegisterRoutes mounts all routes on e. protected wraps the payment routes.
func (h *Handlers) RegisterRoutes(e *echo.Echo, protected ...echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Health)

	// Catalog
	e.GET("/payment-methods/:currency", h.Support.PaymentMethods)
	e.GET("/support-tiers", h.Support.SupportTiers)

	// Provider callbacks, authenticated by signature
	e.POST("/webhook/stripe", h.Webhook.HandleStripeWebhook)

	// Stripe
	e.POST("/create-connected-account", h.Stripe.CreateConnectedAccount, protected...)
	e.POST("/create-payment-intent", h.Stripe.CreatePaymentIntent, protected...)
	e.POST("/create-subscription", h.Stripe.CreateSubscription, protected...)
	e.GET("/creator-balance/:creatorId", h.Stripe.GetCreatorBalance, protected...)
	e.POST("/create-payout", h.Stripe.CreatePayout, protected...)

	// Razorpay
	e.POST("/create-razorpay-order", h.Razorpay.CreateOrder, protected...)
	e.POST("/verify-razorpay-payment", h.Razorpay.VerifyPayment, protected...)
	e.POST("/create-razorpay-subscription", h.Razorpay.CreateSubscription, protected...)

	// Server-side provider selection
	e.POST("/support", h.Support.Support, protected...)
}
