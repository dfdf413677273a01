package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/creatorhub/support-backend/services/payment/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newLedgerEntry(ref, key string) *entity.SupportPayment {
	return &entity.SupportPayment{
		Provider:       "razorpay",
		Kind:           entity.SupportKindOneTime,
		ProviderRef:    ref,
		CreatorID:      "creator-1",
		PayerID:        "user-1",
		Amount:         1000,
		Currency:       "INR",
		PlatformFee:    50,
		CreatorAmount:  950,
		IdempotencyKey: key,
		Metadata:       map[string]interface{}{"tier": "basic"},
	}
}

func TestSupportPaymentRepository_CreateAndGet(t *testing.T) {
	repo := NewSupportPaymentRepository(newTestDB(t), zap.NewNop())
	ctx := context.Background()

	created, err := repo.Create(ctx, newLedgerEntry("order_1", "key-00000001"))
	require.NoError(t, err)
	assert.True(t, created)

	byKey, err := repo.GetByIdempotencyKey(ctx, "razorpay", "key-00000001")
	require.NoError(t, err)
	require.NotNil(t, byKey)
	assert.Equal(t, "order_1", byKey.ProviderRef)
	assert.Equal(t, entity.PaymentStatusCreated, byKey.Status)
	assert.Equal(t, int64(950), byKey.CreatorAmount)
	assert.Equal(t, "basic", byKey.Metadata["tier"])

	byRef, err := repo.GetByProviderRef(ctx, "razorpay", "order_1")
	require.NoError(t, err)
	require.NotNil(t, byRef)
	assert.Equal(t, byKey.ID, byRef.ID)

	missing, err := repo.GetByProviderRef(ctx, "stripe", "order_1")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSupportPaymentRepository_CreateIgnoresDuplicateKey(t *testing.T) {
	repo := NewSupportPaymentRepository(newTestDB(t), zap.NewNop())
	ctx := context.Background()

	created, err := repo.Create(ctx, newLedgerEntry("order_1", "key-00000001"))
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Create(ctx, newLedgerEntry("order_2", "key-00000001"))
	require.NoError(t, err)
	assert.False(t, created)

	stored, err := repo.GetByIdempotencyKey(ctx, "razorpay", "key-00000001")
	require.NoError(t, err)
	assert.Equal(t, "order_1", stored.ProviderRef)
}

func TestSupportPaymentRepository_VerifiedIsTerminal(t *testing.T) {
	repo := NewSupportPaymentRepository(newTestDB(t), zap.NewNop())
	ctx := context.Background()

	_, err := repo.Create(ctx, newLedgerEntry("order_1", "key-00000001"))
	require.NoError(t, err)

	changed, err := repo.MarkVerified(ctx, "razorpay", "order_1", "pay_1")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.MarkVerified(ctx, "razorpay", "order_1", "pay_2")
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = repo.MarkRejected(ctx, "razorpay", "order_1", "late failure")
	require.NoError(t, err)
	assert.False(t, changed)

	stored, err := repo.GetByProviderRef(ctx, "razorpay", "order_1")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusVerified, stored.Status)
	assert.Equal(t, "pay_1", stored.ProviderPaymentID)
	assert.NotNil(t, stored.VerifiedAt)
}

func TestSupportPaymentRepository_RejectedAttemptKeepsStatus(t *testing.T) {
	repo := NewSupportPaymentRepository(newTestDB(t), zap.NewNop())
	ctx := context.Background()

	_, err := repo.Create(ctx, newLedgerEntry("order_1", "key-00000001"))
	require.NoError(t, err)

	require.NoError(t, repo.RecordRejectedAttempt(ctx, "razorpay", "order_1"))
	require.NoError(t, repo.RecordRejectedAttempt(ctx, "razorpay", "order_1"))

	stored, err := repo.GetByProviderRef(ctx, "razorpay", "order_1")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusCreated, stored.Status)
	assert.Equal(t, 2, stored.RejectedAttempts)
	assert.NotNil(t, stored.LastRejectedAt)

	changed, err := repo.MarkVerified(ctx, "razorpay", "order_1", "pay_1")
	require.NoError(t, err)
	assert.True(t, changed)
}

func TestSupportPaymentRepository_ConcurrentVerifySingleWinner(t *testing.T) {
	repo := NewSupportPaymentRepository(newTestDB(t), zap.NewNop())
	ctx := context.Background()

	_, err := repo.Create(ctx, newLedgerEntry("order_1", "key-00000001"))
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			changed, err := repo.MarkVerified(ctx, "razorpay", "order_1", "pay_1")
			assert.NoError(t, err)
			if changed {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
}

func newClaim(key string) *entity.SupportPayment {
	claim := newLedgerEntry("", key)
	claim.Status = entity.PaymentStatusPending
	return claim
}

func TestSupportPaymentRepository_ClaimAttachRelease(t *testing.T) {
	repo := NewSupportPaymentRepository(newTestDB(t), zap.NewNop())
	ctx := context.Background()

	created, err := repo.Create(ctx, newClaim("key-00000001"))
	require.NoError(t, err)
	assert.True(t, created)

	// pending rows for different keys do not collide on provider_ref
	created, err = repo.Create(ctx, newClaim("key-00000002"))
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Create(ctx, newClaim("key-00000001"))
	require.NoError(t, err)
	assert.False(t, created)

	pending, err := repo.GetByIdempotencyKey(ctx, "razorpay", "key-00000001")
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPending, pending.Status)
	assert.Empty(t, pending.ProviderRef)

	require.NoError(t, repo.AttachProviderRef(ctx, "razorpay", "key-00000001", "order_1"))
	assert.Error(t, repo.AttachProviderRef(ctx, "razorpay", "key-00000001", "order_9"))

	stored, err := repo.GetByProviderRef(ctx, "razorpay", "order_1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, entity.PaymentStatusCreated, stored.Status)
	assert.Equal(t, "key-00000001", stored.IdempotencyKey)

	// only pending rows are released
	require.NoError(t, repo.ReleaseClaim(ctx, "razorpay", "key-00000001"))
	require.NoError(t, repo.ReleaseClaim(ctx, "razorpay", "key-00000002"))

	kept, err := repo.GetByIdempotencyKey(ctx, "razorpay", "key-00000001")
	require.NoError(t, err)
	assert.NotNil(t, kept)

	released, err := repo.GetByIdempotencyKey(ctx, "razorpay", "key-00000002")
	require.NoError(t, err)
	assert.Nil(t, released)

	created, err = repo.Create(ctx, newClaim("key-00000002"))
	require.NoError(t, err)
	assert.True(t, created)
}
