package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SupportPayment is the ledger row for one support transaction
type SupportPayment struct {
	ID                uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Provider          string            `gorm:"size:20;not null;uniqueIndex:idx_support_payments_idempotency;uniqueIndex:idx_support_payments_provider_ref" json:"provider"`
	Kind              string            `gorm:"size:20;not null" json:"kind"`
	ProviderRef       string            `gorm:"size:255;not null;uniqueIndex:idx_support_payments_provider_ref" json:"provider_ref"`
	CreatorID         string            `gorm:"size:255;not null;index" json:"creator_id"`
	PayerID           string            `gorm:"size:255;index" json:"payer_id"`
	Amount            int64             `gorm:"not null" json:"amount"`
	Currency          string            `gorm:"size:3;not null" json:"currency"`
	PlatformFee       int64             `gorm:"not null" json:"platform_fee"`
	CreatorAmount     int64             `gorm:"not null" json:"creator_amount"`
	Status            string            `gorm:"size:20;not null;default:'created';index" json:"status"`
	IdempotencyKey    string            `gorm:"size:64;not null;uniqueIndex:idx_support_payments_idempotency" json:"idempotency_key"`
	ProviderPaymentID *string           `gorm:"size:255" json:"provider_payment_id,omitempty"`
	RejectedAttempts  int               `gorm:"not null;default:0" json:"rejected_attempts"`
	LastRejectedAt    *time.Time        `json:"last_rejected_at,omitempty"`
	RejectionReason   *string           `gorm:"size:255" json:"rejection_reason,omitempty"`
	Metadata          datatypes.JSONMap `json:"metadata,omitempty"`
	VerifiedAt        *time.Time        `json:"verified_at,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (SupportPayment) TableName() string {
	return "support_payments"
}

// BeforeCreate assigns a UUID when the caller did not
func (p *SupportPayment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
