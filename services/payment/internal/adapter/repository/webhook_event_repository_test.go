package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/creatorhub/support-backend/services/payment/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWebhookEventRepository_Deduplicates(t *testing.T) {
	db := newTestDB(t)
	repo := NewWebhookEventRepository(db, zap.NewNop())
	ctx := context.Background()
	data := json.RawMessage(`{"id":"evt_1","type":"payment_intent.succeeded"}`)

	done, err := repo.SaveEvent(ctx, "stripe", "evt_1", "payment_intent.succeeded", data)
	require.NoError(t, err)
	assert.False(t, done)

	// redelivery before processing finished is handled again
	done, err = repo.SaveEvent(ctx, "stripe", "evt_1", "payment_intent.succeeded", data)
	require.NoError(t, err)
	assert.False(t, done)

	require.NoError(t, repo.MarkProcessed(ctx, "stripe", "evt_1"))

	done, err = repo.SaveEvent(ctx, "stripe", "evt_1", "payment_intent.succeeded", data)
	require.NoError(t, err)
	assert.True(t, done)

	var count int64
	require.NoError(t, db.Model(&model.WebhookEvent{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestWebhookEventRepository_MarkFailed(t *testing.T) {
	db := newTestDB(t)
	repo := NewWebhookEventRepository(db, zap.NewNop())
	ctx := context.Background()

	_, err := repo.SaveEvent(ctx, "stripe", "evt_2", "payment_intent.payment_failed", nil)
	require.NoError(t, err)
	require.NoError(t, repo.MarkFailed(ctx, "stripe", "evt_2", errors.New("ledger unavailable")))

	var event model.WebhookEvent
	require.NoError(t, db.Where("event_id = ?", "evt_2").First(&event).Error)
	assert.Equal(t, model.WebhookStatusFailed, event.Status)
	require.NotNil(t, event.LastError)
	assert.Equal(t, "ledger unavailable", *event.LastError)

	done, err := repo.SaveEvent(ctx, "stripe", "evt_2", "payment_intent.payment_failed", nil)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestWebhookEventRepository_MarkProcessedUnknown(t *testing.T) {
	repo := NewWebhookEventRepository(newTestDB(t), zap.NewNop())

	err := repo.MarkProcessed(context.Background(), "stripe", "evt_missing")
	assert.Error(t, err)
}
