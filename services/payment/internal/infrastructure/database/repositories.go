package database

import (
	"github.com/creatorhub/support-backend/services/payment/internal/adapter/repository"
	domainRepo "github.com/creatorhub/support-backend/services/payment/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	SupportPayment domainRepo.SupportPaymentRepository
	WebhookEvent   domainRepo.WebhookEventRepository
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		SupportPayment: repository.NewSupportPaymentRepository(db, logger),
		WebhookEvent:   repository.NewWebhookEventRepository(db, logger),
	}
}
