package config

import "time"

type ServiceConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	ClientURL   string `mapstructure:"client_url"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"`
	Output      string `mapstructure:"output"`
	FilePath    string `mapstructure:"file_path"`
	Development bool   `mapstructure:"development"`
}

// AuthConfig configures bearer token validation. An empty secret disables auth.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

func (c AuthConfig) Enabled() bool {
	return c.JWTSecret != ""
}

type StripeConfig struct {
	SecretKey      string `mapstructure:"secret_key"`
	PublishableKey string `mapstructure:"publishable_key"`
	WebhookSecret  string `mapstructure:"webhook_secret"`
	// EphemeralKeyVersion is the API version the mobile SDK expects
	EphemeralKeyVersion string        `mapstructure:"ephemeral_key_version"`
	Timeout             time.Duration `mapstructure:"timeout"`
}

type RazorpayConfig struct {
	KeyID         string        `mapstructure:"key_id"`
	KeySecret     string        `mapstructure:"key_secret"`
	FetchTimeout  time.Duration `mapstructure:"fetch_timeout"`
	FetchRetries  int           `mapstructure:"fetch_retries"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
}

// Configured reports whether both Razorpay credentials are present
func (c RazorpayConfig) Configured() bool {
	return c.KeyID != "" && c.KeySecret != ""
}

type CommissionConfig struct {
	Rate float64 `mapstructure:"rate"`
}

// RoutingConfig points at the region table. Empty uses the built-in table.
type RoutingConfig struct {
	File string `mapstructure:"file"`
}

type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// RedisConfig is optional; without an address events are not published
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

type GeoIPConfig struct {
	DatabasePath string `mapstructure:"database_path"`
}
