package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	apperrors "github.com/creatorhub/support-backend/pkg/errors"
	"github.com/creatorhub/support-backend/services/payment/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertAppError(t *testing.T, err error, code, message string) {
	t.Helper()
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T", err)
	assert.Equal(t, code, appErr.Code())
	if message != "" {
		assert.Equal(t, message, appErr.Message())
	}
}

// memoryLedger keeps rows keyed by provider and idempotency key with the same
// insert-or-skip rule as the database unique index.
type memoryLedger struct {
	mu   sync.Mutex
	rows map[string]entity.SupportPayment
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{rows: make(map[string]entity.SupportPayment)}
}

func ledgerKey(provider, key string) string {
	return provider + "/" + key
}

func (l *memoryLedger) Create(_ context.Context, payment *entity.SupportPayment) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := ledgerKey(payment.Provider, payment.IdempotencyKey)
	if _, ok := l.rows[k]; ok {
		return false, nil
	}
	l.rows[k] = *payment
	return true, nil
}

func (l *memoryLedger) GetByIdempotencyKey(_ context.Context, provider, key string) (*entity.SupportPayment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	row, ok := l.rows[ledgerKey(provider, key)]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (l *memoryLedger) AttachProviderRef(_ context.Context, provider, key, ref string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := ledgerKey(provider, key)
	row, ok := l.rows[k]
	if !ok || row.Status != entity.PaymentStatusPending {
		return errors.New("no pending claim")
	}
	row.ProviderRef = ref
	row.Status = entity.PaymentStatusCreated
	l.rows[k] = row
	return nil
}

func (l *memoryLedger) ReleaseClaim(_ context.Context, provider, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := ledgerKey(provider, key)
	if row, ok := l.rows[k]; ok && row.Status == entity.PaymentStatusPending {
		delete(l.rows, k)
	}
	return nil
}

func (l *memoryLedger) GetByProviderRef(_ context.Context, provider, ref string) (*entity.SupportPayment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, row := range l.rows {
		if row.Provider == provider && row.ProviderRef == ref {
			return &row, nil
		}
	}
	return nil, nil
}

func (l *memoryLedger) MarkVerified(context.Context, string, string, string) (bool, error) {
	return false, nil
}

func (l *memoryLedger) MarkRejected(context.Context, string, string, string) (bool, error) {
	return false, nil
}

func (l *memoryLedger) RecordRejectedAttempt(context.Context, string, string) error {
	return nil
}
