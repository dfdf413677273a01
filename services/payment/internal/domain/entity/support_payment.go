package entity

import (
	"time"

	"github.com/google/uuid"
)

// SupportPayment is the ledger entry for one support transaction
type SupportPayment struct {
	ID                uuid.UUID
	Provider          string
	Kind              SupportKind
	ProviderRef       string
	CreatorID         string
	PayerID           string
	Amount            int64
	Currency          string
	PlatformFee       int64
	CreatorAmount     int64
	Status            PaymentStatus
	IdempotencyKey    string
	ProviderPaymentID string
	RejectedAttempts  int
	LastRejectedAt    *time.Time
	Metadata          map[string]interface{}
	VerifiedAt        *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
