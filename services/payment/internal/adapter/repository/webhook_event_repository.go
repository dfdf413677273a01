package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/creatorhub/support-backend/services/payment/internal/domain/model"
	domainRepo "github.com/creatorhub/support-backend/services/payment/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type webhookEventRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewWebhookEventRepository creates a new webhook event repository
func NewWebhookEventRepository(db *gorm.DB, logger *zap.Logger) domainRepo.WebhookEventRepository {
	return &webhookEventRepository{
		db:     db,
		logger: logger,
	}
}

// SaveEvent stores a webhook event and reports whether it was already completed
func (r *webhookEventRepository) SaveEvent(ctx context.Context, provider, eventID, eventType string, data json.RawMessage) (bool, error) {
	var eventData map[string]interface{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &eventData); err != nil {
			r.logger.Warn("Failed to parse webhook event data",
				zap.String("provider", provider),
				zap.String("event_id", eventID),
				zap.Error(err))
		}
	}

	event := &model.WebhookEvent{
		Provider:  provider,
		EventID:   eventID,
		EventType: eventType,
		Status:    model.WebhookStatusPending,
		Data:      datatypes.JSONMap(eventData),
	}

	// Use ON CONFLICT to handle redelivered events
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(event)

	if result.Error != nil {
		r.logger.Error("Failed to save webhook event",
			zap.String("provider", provider),
			zap.String("event_id", eventID),
			zap.String("event_type", eventType),
			zap.Error(result.Error))
		return false, fmt.Errorf("failed to save webhook event: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		return false, nil
	}

	var existing model.WebhookEvent
	if err := r.db.WithContext(ctx).
		Where("provider = ? AND event_id = ?", provider, eventID).
		First(&existing).Error; err != nil {
		r.logger.Error("Failed to load existing webhook event",
			zap.String("provider", provider),
			zap.String("event_id", eventID),
			zap.Error(err))
		return false, fmt.Errorf("failed to get webhook event: %w", err)
	}

	return existing.Status == model.WebhookStatusCompleted, nil
}

// MarkProcessed marks a webhook event as completed
func (r *webhookEventRepository) MarkProcessed(ctx context.Context, provider, eventID string) error {
	now := time.Now()

	result := r.db.WithContext(ctx).
		Model(&model.WebhookEvent{}).
		Where("provider = ? AND event_id = ?", provider, eventID).
		Updates(map[string]interface{}{
			"status":       model.WebhookStatusCompleted,
			"processed_at": &now,
			"last_error":   nil,
		})

	if result.Error != nil {
		r.logger.Error("Failed to mark webhook as processed",
			zap.String("provider", provider),
			zap.String("event_id", eventID),
			zap.Error(result.Error))
		return fmt.Errorf("failed to mark webhook as processed: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("webhook event not found: %s", eventID)
	}

	return nil
}

// MarkFailed records the failure so a redelivery is processed again
func (r *webhookEventRepository) MarkFailed(ctx context.Context, provider, eventID string, cause error) error {
	errorMsg := cause.Error()

	result := r.db.WithContext(ctx).
		Model(&model.WebhookEvent{}).
		Where("provider = ? AND event_id = ?", provider, eventID).
		Updates(map[string]interface{}{
			"status":     model.WebhookStatusFailed,
			"last_error": &errorMsg,
		})

	if result.Error != nil {
		r.logger.Error("Failed to mark webhook as failed",
			zap.String("provider", provider),
			zap.String("event_id", eventID),
			zap.Error(result.Error))
		return fmt.Errorf("failed to mark webhook as failed: %w", result.Error)
	}

	return nil
}
