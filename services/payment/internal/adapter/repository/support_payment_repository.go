package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/creatorhub/support-backend/services/payment/internal/domain/entity"
	"github.com/creatorhub/support-backend/services/payment/internal/domain/model"
	domainRepo "github.com/creatorhub/support-backend/services/payment/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// pendingRefPrefix keeps pending rows distinct under the provider_ref
// unique index until the provider returns a real reference.
const pendingRefPrefix = "pending:"

var terminalStatuses = []string{
	string(entity.PaymentStatusVerified),
	string(entity.PaymentStatusRejected),
}

type supportPaymentRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSupportPaymentRepository creates a new ledger repository
func NewSupportPaymentRepository(db *gorm.DB, logger *zap.Logger) domainRepo.SupportPaymentRepository {
	return &supportPaymentRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a ledger row, ignoring duplicates on (provider, idempotency_key)
func (r *supportPaymentRepository) Create(ctx context.Context, payment *entity.SupportPayment) (bool, error) {
	row := toSupportPaymentModel(payment)

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(row)

	if result.Error != nil {
		r.logger.Error("Failed to create support payment",
			zap.String("provider", payment.Provider),
			zap.String("provider_ref", payment.ProviderRef),
			zap.Error(result.Error))
		return false, fmt.Errorf("failed to create support payment: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return false, nil
	}

	payment.ID = row.ID
	payment.CreatedAt = row.CreatedAt
	payment.UpdatedAt = row.UpdatedAt
	return true, nil
}

func (r *supportPaymentRepository) GetByIdempotencyKey(ctx context.Context, provider, key string) (*entity.SupportPayment, error) {
	return r.first(ctx, "provider = ? AND idempotency_key = ?", provider, key)
}

func (r *supportPaymentRepository) AttachProviderRef(ctx context.Context, provider, key, ref string) error {
	result := r.db.WithContext(ctx).
		Model(&model.SupportPayment{}).
		Where("provider = ? AND idempotency_key = ? AND status = ?", provider, key, string(entity.PaymentStatusPending)).
		Updates(map[string]interface{}{
			"provider_ref": ref,
			"status":       string(entity.PaymentStatusCreated),
		})

	if result.Error != nil {
		r.logger.Error("Failed to attach provider reference",
			zap.String("provider", provider),
			zap.String("idempotency_key", key),
			zap.String("provider_ref", ref),
			zap.Error(result.Error))
		return fmt.Errorf("failed to attach provider reference: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("no pending support payment for key %q", key)
	}
	return nil
}

func (r *supportPaymentRepository) ReleaseClaim(ctx context.Context, provider, key string) error {
	err := r.db.WithContext(ctx).
		Where("provider = ? AND idempotency_key = ? AND status = ?", provider, key, string(entity.PaymentStatusPending)).
		Delete(&model.SupportPayment{}).Error

	if err != nil {
		r.logger.Error("Failed to release idempotency claim",
			zap.String("provider", provider),
			zap.String("idempotency_key", key),
			zap.Error(err))
		return fmt.Errorf("failed to release idempotency claim: %w", err)
	}
	return nil
}

func (r *supportPaymentRepository) GetByProviderRef(ctx context.Context, provider, ref string) (*entity.SupportPayment, error) {
	return r.first(ctx, "provider = ? AND provider_ref = ?", provider, ref)
}

func (r *supportPaymentRepository) first(ctx context.Context, query string, args ...interface{}) (*entity.SupportPayment, error) {
	var row model.SupportPayment

	err := r.db.WithContext(ctx).
		Where(query, args...).
		First(&row).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get support payment",
			zap.Any("args", args),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get support payment: %w", err)
	}

	return toSupportPaymentEntity(&row), nil
}

// MarkVerified moves a non-terminal row to verified
func (r *supportPaymentRepository) MarkVerified(ctx context.Context, provider, ref, providerPaymentID string) (bool, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"status":      string(entity.PaymentStatusVerified),
		"verified_at": &now,
	}
	if providerPaymentID != "" {
		updates["provider_payment_id"] = providerPaymentID
	}
	return r.transition(ctx, provider, ref, updates)
}

// MarkRejected moves a non-terminal row to rejected
func (r *supportPaymentRepository) MarkRejected(ctx context.Context, provider, ref, reason string) (bool, error) {
	updates := map[string]interface{}{
		"status": string(entity.PaymentStatusRejected),
	}
	if reason != "" {
		updates["rejection_reason"] = reason
	}
	return r.transition(ctx, provider, ref, updates)
}

func (r *supportPaymentRepository) transition(ctx context.Context, provider, ref string, updates map[string]interface{}) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.SupportPayment{}).
		Where("provider = ? AND provider_ref = ? AND status NOT IN ?", provider, ref, terminalStatuses).
		Updates(updates)

	if result.Error != nil {
		r.logger.Error("Failed to update support payment status",
			zap.String("provider", provider),
			zap.String("provider_ref", ref),
			zap.Any("status", updates["status"]),
			zap.Error(result.Error))
		return false, fmt.Errorf("failed to update support payment status: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// RecordRejectedAttempt bumps the rejection counter without touching status
func (r *supportPaymentRepository) RecordRejectedAttempt(ctx context.Context, provider, ref string) error {
	now := time.Now()

	result := r.db.WithContext(ctx).
		Model(&model.SupportPayment{}).
		Where("provider = ? AND provider_ref = ?", provider, ref).
		Updates(map[string]interface{}{
			"rejected_attempts": gorm.Expr("rejected_attempts + 1"),
			"last_rejected_at":  &now,
		})

	if result.Error != nil {
		r.logger.Error("Failed to record rejected attempt",
			zap.String("provider", provider),
			zap.String("provider_ref", ref),
			zap.Error(result.Error))
		return fmt.Errorf("failed to record rejected attempt: %w", result.Error)
	}

	return nil
}

func toSupportPaymentModel(p *entity.SupportPayment) *model.SupportPayment {
	row := &model.SupportPayment{
		ID:               p.ID,
		Provider:         p.Provider,
		Kind:             string(p.Kind),
		ProviderRef:      p.ProviderRef,
		CreatorID:        p.CreatorID,
		PayerID:          p.PayerID,
		Amount:           p.Amount,
		Currency:         p.Currency,
		PlatformFee:      p.PlatformFee,
		CreatorAmount:    p.CreatorAmount,
		Status:           string(p.Status),
		IdempotencyKey:   p.IdempotencyKey,
		RejectedAttempts: p.RejectedAttempts,
		LastRejectedAt:   p.LastRejectedAt,
		Metadata:         p.Metadata,
		VerifiedAt:       p.VerifiedAt,
	}
	if row.Status == "" {
		row.Status = string(entity.PaymentStatusCreated)
	}
	if row.ProviderRef == "" && p.Status == entity.PaymentStatusPending {
		row.ProviderRef = pendingRefPrefix + p.IdempotencyKey
	}
	if p.ProviderPaymentID != "" {
		id := p.ProviderPaymentID
		row.ProviderPaymentID = &id
	}
	return row
}

func toSupportPaymentEntity(m *model.SupportPayment) *entity.SupportPayment {
	p := &entity.SupportPayment{
		ID:               m.ID,
		Provider:         m.Provider,
		Kind:             entity.SupportKind(m.Kind),
		ProviderRef:      m.ProviderRef,
		CreatorID:        m.CreatorID,
		PayerID:          m.PayerID,
		Amount:           m.Amount,
		Currency:         m.Currency,
		PlatformFee:      m.PlatformFee,
		CreatorAmount:    m.CreatorAmount,
		Status:           entity.PaymentStatus(m.Status),
		IdempotencyKey:   m.IdempotencyKey,
		RejectedAttempts: m.RejectedAttempts,
		LastRejectedAt:   m.LastRejectedAt,
		Metadata:         m.Metadata,
		VerifiedAt:       m.VerifiedAt,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
	if p.Status == entity.PaymentStatusPending && strings.HasPrefix(p.ProviderRef, pendingRefPrefix) {
		p.ProviderRef = ""
	}
	if m.ProviderPaymentID != nil {
		p.ProviderPaymentID = *m.ProviderPaymentID
	}
	return p
}
