package model

import (
	"time"

	"gorm.io/datatypes"
)

// WebhookStatus represents the processing status of a webhook
type WebhookStatus string

const (
	WebhookStatusPending   WebhookStatus = "pending"
	WebhookStatusCompleted WebhookStatus = "completed"
	WebhookStatusFailed    WebhookStatus = "failed"
)

// WebhookEvent is a received provider webhook, keyed by the provider's event id
type WebhookEvent struct {
	ID          int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	Provider    string            `gorm:"size:20;not null;uniqueIndex:idx_webhook_events_event" json:"provider"`
	EventID     string            `gorm:"size:255;not null;uniqueIndex:idx_webhook_events_event" json:"event_id"`
	EventType   string            `gorm:"size:100;not null;index" json:"event_type"`
	Status      WebhookStatus     `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Data        datatypes.JSONMap `json:"data"`
	LastError   *string           `json:"last_error,omitempty"`
	ProcessedAt *time.Time        `json:"processed_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// TableName specifies the table name for GORM
func (WebhookEvent) TableName() string {
	return "webhook_events"
}
