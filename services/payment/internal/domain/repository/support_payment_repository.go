package repository

import (
	"context"

	"github.com/creatorhub/support-backend/services/payment/internal/domain/entity"
)

// SupportPaymentRepository is the ledger of support payments.
// Lookups return nil, nil when nothing matches.
type SupportPaymentRepository interface {
	// Create inserts payment unless (provider, idempotency key) already exists.
	// It reports whether a row was inserted.
	Create(ctx context.Context, payment *entity.SupportPayment) (bool, error)
	GetByIdempotencyKey(ctx context.Context, provider, key string) (*entity.SupportPayment, error)
	// AttachProviderRef completes a pending row once the provider object
	// exists, moving it to created.
	AttachProviderRef(ctx context.Context, provider, key, ref string) error
	// ReleaseClaim deletes a pending row so the key can be retried.
	ReleaseClaim(ctx context.Context, provider, key string) error
	GetByProviderRef(ctx context.Context, provider, ref string) (*entity.SupportPayment, error)
	// MarkVerified and MarkRejected only move rows that are not yet terminal.
	// They report whether a row changed.
	MarkVerified(ctx context.Context, provider, ref, providerPaymentID string) (bool, error)
	MarkRejected(ctx context.Context, provider, ref, reason string) (bool, error)
	// RecordRejectedAttempt counts a failed verification claim without
	// changing the row's status.
	RecordRejectedAttempt(ctx context.Context, provider, ref string) error
}
