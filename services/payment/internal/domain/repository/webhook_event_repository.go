package repository

import (
	"context"
	"encoding/json"
)

// WebhookEventRepository deduplicates provider webhook deliveries
type WebhookEventRepository interface {
	// SaveEvent stores the event if unseen. It reports true when the event
	// was already processed successfully and should be skipped.
	SaveEvent(ctx context.Context, provider, eventID, eventType string, data json.RawMessage) (bool, error)
	MarkProcessed(ctx context.Context, provider, eventID string) error
	MarkFailed(ctx context.Context, provider, eventID string, cause error) error
}
