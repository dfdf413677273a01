package entity

import "time"

// SupportKind distinguishes a one-time tip from a recurring subscription
type SupportKind string

const (
	SupportKindOneTime   SupportKind = "one_time"
	SupportKindRecurring SupportKind = "recurring"
)

// SupportRequest is a supporter's intent to pay a creator.
// Amount is in minor currency units (cents, paise).
type SupportRequest struct {
	Amount         int64
	Currency       string
	CreatorID      string
	Kind           SupportKind
	PlanOrPriceID  string
	PayerID        string
	IdempotencyKey string
}

// CommissionSplit divides a gross amount between platform and creator.
// PlatformFee + CreatorAmount == GrossAmount always holds.
type CommissionSplit struct {
	GrossAmount   int64 `json:"grossAmount"`
	PlatformFee   int64 `json:"platformFee"`
	CreatorAmount int64 `json:"creatorAmount"`
}

// PaymentStatus is the ledger state of a support payment
type PaymentStatus string

const (
	// PaymentStatusPending holds an idempotency key while the provider call runs
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusCreated  PaymentStatus = "created"
	PaymentStatusVerified PaymentStatus = "verified"
	PaymentStatusRejected PaymentStatus = "rejected"
)

// IsTerminal reports whether no further transition is allowed
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusVerified || s == PaymentStatusRejected
}

// PaymentIntent is what the client needs to confirm a card-rail payment
type PaymentIntent struct {
	ID             string `json:"-"`
	ClientSecret   string `json:"clientSecret"`
	EphemeralKey   string `json:"ephemeralKey"`
	CustomerID     string `json:"customer"`
	PublishableKey string `json:"publishableKey"`
}

// Subscription is a card-rail subscription awaiting its first charge
type Subscription struct {
	ClientSecret   string `json:"clientSecret"`
	SubscriptionID string `json:"subscriptionId"`
}

// Order is an order-rail order. Notes carry the commission split.
type Order struct {
	OrderID  string            `json:"orderId"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Key      string            `json:"key"`
	Receipt  string            `json:"-"`
	Notes    map[string]string `json:"-"`
}

// OrderSubscription is an order-rail subscription
type OrderSubscription struct {
	SubscriptionID string `json:"subscriptionId"`
	Key            string `json:"key"`
}

// ProviderPayment is a payment as reported by the provider
type ProviderPayment struct {
	ID       string
	OrderID  string
	Amount   int64
	Currency string
	Status   string
}

// VerificationClaim is a client's report that it completed checkout
type VerificationClaim struct {
	OrderID   string
	PaymentID string
	Signature string
}

// VerifiedPayment is returned once a claim has been proven genuine
type VerifiedPayment struct {
	ID            string `json:"id"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	CreatorAmount int64  `json:"creatorAmount"`
	PlatformFee   int64  `json:"platformFee"`
}

// PaymentEventType names events published on payment state changes
type PaymentEventType string

const (
	PaymentEventVerified PaymentEventType = "payment.verified"
	PaymentEventRejected PaymentEventType = "payment.rejected"
)

// PaymentEvent is published whenever a payment reaches a terminal state
type PaymentEvent struct {
	Type          PaymentEventType `json:"type"`
	Provider      string           `json:"provider"`
	ProviderRef   string           `json:"providerRef"`
	CreatorID     string           `json:"creatorId,omitempty"`
	Amount        int64            `json:"amount,omitempty"`
	Currency      string           `json:"currency,omitempty"`
	PlatformFee   int64            `json:"platformFee,omitempty"`
	CreatorAmount int64            `json:"creatorAmount,omitempty"`
	Reason        string           `json:"reason,omitempty"`
	At            time.Time        `json:"at"`
}
