package config

import (
	"fmt"
	"net"

	pkgconfig "github.com/creatorhub/support-backend/pkg/config"
)

const serviceName = "payment"

type Config struct {
	Service    ServiceConfig    `mapstructure:"service"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Stripe     StripeConfig     `mapstructure:"stripe"`
	Razorpay   RazorpayConfig   `mapstructure:"razorpay"`
	Commission CommissionConfig `mapstructure:"commission"`
	Routing    RoutingConfig    `mapstructure:"routing"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Redis      RedisConfig      `mapstructure:"redis"`
	GeoIP      GeoIPConfig      `mapstructure:"geoip"`
}

// LoadConfig reads the payment service configuration. See pkg/config for
// file lookup and PAYMENT_* environment overrides.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := pkgconfig.Load(serviceName, defaults(), &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks what the process cannot start without. Razorpay
// credentials are optional; their absence only disables that provider.
func (c *Config) Validate() error {
	if c.Stripe.SecretKey == "" {
		return fmt.Errorf("stripe.secret_key is required")
	}
	if c.Stripe.PublishableKey == "" {
		return fmt.Errorf("stripe.publishable_key is required")
	}
	if c.Commission.Rate < 0 || c.Commission.Rate >= 1 {
		return fmt.Errorf("commission.rate must be in [0, 1), got %v", c.Commission.Rate)
	}
	if c.Database.Driver != "postgres" && c.Database.Driver != "sqlite" {
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit.requests and rate_limit.window must be positive")
	}
	if c.Razorpay.FetchRetries < 0 {
		return fmt.Errorf("razorpay.fetch_retries must not be negative")
	}
	for _, cidr := range c.Server.HTTP.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			return fmt.Errorf("server.http.trusted_proxies: invalid CIDR %q", cidr)
		}
	}
	return nil
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"service.name":        serviceName,
		"service.environment": "development",
		"service.client_url":  "*",

		"server.http.host":            "0.0.0.0",
		"server.http.port":            3000,
		"server.http.trusted_proxies": []string{},
		"server.grpc.host":            "0.0.0.0",
		"server.grpc.port":            50053,

		"database.driver":             "postgres",
		"database.host":               "localhost",
		"database.port":               5432,
		"database.name":               "payment",
		"database.user":               "postgres",
		"database.password":           "",
		"database.sslmode":            "disable",
		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  "30m",
		"database.conn_max_idle_time": "5m",

		"log.level":       "info",
		"log.format":      "json",
		"log.output":      "stdout",
		"log.file_path":   "",
		"log.development": false,

		"auth.jwt_secret": "",

		"stripe.secret_key":            "",
		"stripe.publishable_key":       "",
		"stripe.webhook_secret":        "",
		"stripe.ephemeral_key_version": "2025-02-24.acacia",
		"stripe.timeout":               "30s",

		"razorpay.key_id":         "",
		"razorpay.key_secret":     "",
		"razorpay.fetch_timeout":  "5s",
		"razorpay.fetch_retries":  2,
		"razorpay.retry_interval": "500ms",

		"commission.rate": 0.05,

		"routing.file": "",

		"rate_limit.requests": 100,
		"rate_limit.window":   "15m",

		"redis.addr":     "",
		"redis.password": "",
		"redis.db":       0,
		"redis.channel":  "payment.events",

		"geoip.database_path": "",
	}
}
