package service

import (
	"fmt"
	"strings"

	"github.com/creatorhub/support-backend/services/payment/internal/domain/provider"
)

// RegionRule routes a currency, optionally narrowed to countries, to a provider
type RegionRule struct {
	Name       string                `yaml:"name"`
	Provider   provider.ProviderType `yaml:"provider"`
	Currencies []string              `yaml:"currencies"`
	Countries  []string              `yaml:"countries"`
}

// TierPrice is a card-rail price for one currency, in minor units
type TierPrice struct {
	Amount  int64  `yaml:"amount" json:"amount"`
	PriceID string `yaml:"price_id" json:"priceId"`
}

// TierPlan is an order-rail subscription plan, in minor units
type TierPlan struct {
	Amount   int64  `yaml:"amount" json:"amount"`
	Currency string `yaml:"currency" json:"currency"`
	PlanID   string `yaml:"plan_id" json:"planId"`
}

// SupportTier is a named recurring support level
type SupportTier struct {
	ID       string               `yaml:"id" json:"id"`
	Name     string               `yaml:"name" json:"name"`
	Stripe   map[string]TierPrice `yaml:"stripe" json:"stripe"`
	Razorpay *TierPlan            `yaml:"razorpay" json:"razorpay,omitempty"`
}

// RoutingTable is the static catalog behind provider selection
type RoutingTable struct {
	DefaultProvider provider.ProviderType `yaml:"default_provider"`
	Regions         []RegionRule          `yaml:"regions"`
	PaymentMethods  map[string][]string   `yaml:"payment_methods"`
	SupportTiers    []SupportTier         `yaml:"support_tiers"`
}

// Validate rejects tables naming unknown providers or empty rules
func (t *RoutingTable) Validate() error {
	if t.DefaultProvider != "" && !knownProvider(t.DefaultProvider) {
		return fmt.Errorf("unknown default provider %q", t.DefaultProvider)
	}
	for _, r := range t.Regions {
		if !knownProvider(r.Provider) {
			return fmt.Errorf("region %q: unknown provider %q", r.Name, r.Provider)
		}
		if len(r.Currencies) == 0 {
			return fmt.Errorf("region %q: at least one currency is required", r.Name)
		}
	}
	return nil
}

func knownProvider(p provider.ProviderType) bool {
	return p == provider.ProviderTypeStripe || p == provider.ProviderTypeRazorpay
}

// ProviderSelector picks a provider from currency and trusted country.
type ProviderSelector struct {
	table    *RoutingTable
	fallback provider.ProviderType
}

func NewProviderSelector(table *RoutingTable) *ProviderSelector {
	fallback := table.DefaultProvider
	if fallback == "" {
		fallback = provider.ProviderTypeStripe
	}
	return &ProviderSelector{table: table, fallback: fallback}
}

// Select returns the provider for currency and country. country must come
// from authenticated or server-derived data; empty means unknown, in which
// case rules match on currency alone. Anything unmatched gets the fallback.
func (s *ProviderSelector) Select(currency, country string) provider.ProviderType {
	currency = strings.ToUpper(currency)
	country = strings.ToUpper(country)

	for _, rule := range s.table.Regions {
		if !containsFold(rule.Currencies, currency) {
			continue
		}
		if country == "" || len(rule.Countries) == 0 || containsFold(rule.Countries, country) {
			return rule.Provider
		}
	}
	return s.fallback
}

// PaymentMethods lists the client-side methods offered for currency
func (s *ProviderSelector) PaymentMethods(currency string) []string {
	if methods, ok := s.table.PaymentMethods[strings.ToLower(currency)]; ok && len(methods) > 0 {
		return methods
	}
	return []string{"card"}
}

func (s *ProviderSelector) SupportTiers() []SupportTier {
	return s.table.SupportTiers
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}
