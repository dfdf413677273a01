package service

import (
	"github.com/creatorhub/support-backend/services/payment/internal/domain/entity"
	domainErrors "github.com/creatorhub/support-backend/services/payment/internal/domain/errors"
	"github.com/shopspring/decimal"
)

// DefaultCommissionRate is the platform's share of every support payment
const DefaultCommissionRate = 0.05

// CommissionCalculator splits gross amounts between platform and creator.
type CommissionCalculator struct {
	rate decimal.Decimal
}

// NewCommissionCalculator creates a calculator for rate (0.05 for 5%)
func NewCommissionCalculator(rate float64) *CommissionCalculator {
	return &CommissionCalculator{rate: decimal.NewFromFloat(rate)}
}

// Calculate returns the split for gross minor units.
//
// platformFee is gross × rate rounded half away from zero, which for the
// non-negative amounts accepted here is round-half-up. creatorAmount takes
// the remainder so the two always sum to gross.
func (c *CommissionCalculator) Calculate(gross int64) (entity.CommissionSplit, error) {
	if gross < 0 {
		return entity.CommissionSplit{}, domainErrors.NewValidationErrorf("amount must not be negative, got %d", gross)
	}

	fee := decimal.NewFromInt(gross).Mul(c.rate).Round(0).IntPart()

	return entity.CommissionSplit{
		GrossAmount:   gross,
		PlatformFee:   fee,
		CreatorAmount: gross - fee,
	}, nil
}

// FeePercent returns the rate as a percentage, e.g. 5 for 0.05
func (c *CommissionCalculator) FeePercent() float64 {
	percent, _ := c.rate.Mul(decimal.NewFromInt(100)).Float64()
	return percent
}

// FeePercentString formats FeePercent without trailing zeros, e.g. "5"
func (c *CommissionCalculator) FeePercentString() string {
	return c.rate.Mul(decimal.NewFromInt(100)).String()
}
