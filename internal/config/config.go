package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Payment  PaymentConfig  `mapstructure:"payment"  validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
	// QueryTimeoutSeconds bounds every store call; on expiry the operation
	// fails as storage-unavailable instead of blocking the worker.
	QueryTimeoutSeconds int `mapstructure:"query_timeout_seconds" validate:"gte=0"`
}

// QueryTimeout returns the store call budget as a duration.
// Zero disables the bound.
func (c DatabaseConfig) QueryTimeout() time.Duration {
	return time.Duration(c.QueryTimeoutSeconds) * time.Second
}

// AuthConfig contains authentication and authorization settings.
type AuthConfig struct {
	// AdminKeyHash is the bcrypt hash of the operator's admin key.
	// Generate one with cmd/keygen.
	AdminKeyHash string `mapstructure:"admin_key_hash" validate:"required"`
	JWTSecret    string `mapstructure:"jwt_secret"     validate:"required,min=32"`
	// TokenLifetimeMinutes is the session token lifetime issued at sign-in.
	TokenLifetimeMinutes int `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	// ExpiredReadGrace permits read-only access for identities whose payment
	// status is expired. Unpaid identities never get grace.
	ExpiredReadGrace bool `mapstructure:"expired_read_grace"`
}

// PaymentConfig configures the external payment verifier.
type PaymentConfig struct {
	VerifierURL    string `mapstructure:"verifier_url" validate:"required"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	// PolicyWindowDays keeps a previously active status trusted when the
	// verifier is unreachable, counted from the last successful verification.
	PolicyWindowDays int `mapstructure:"policy_window_days" validate:"required,gt=0"`
}

// RedisConfig configures the optional payment-status cache.
// An empty Addr disables caching entirely.
type RedisConfig struct {
	Addr       string `mapstructure:"addr"`
	TTLSeconds int    `mapstructure:"ttl_seconds" validate:"gte=0"`
}
