package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional config
// file. Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults for everything that has a sensible one.
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("database.query_timeout_seconds", 10)
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.expired_read_grace", true)
	v.SetDefault("payment.timeout_seconds", 10)
	v.SetDefault("payment.policy_window_days", 31)
	v.SetDefault("redis.ttl_seconds", 60)

	// Required keys get empty defaults so AutomaticEnv can see them;
	// validation below rejects the empty values.
	v.SetDefault("database.url", "")
	v.SetDefault("auth.admin_key_hash", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("payment.verifier_url", "")
	v.SetDefault("redis.addr", "")

	// Optional config file in the working directory.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Missing file is fine; environment variables may carry everything.
	}

	// Environment variables: DAYPLAN_SERVER_PORT, DAYPLAN_DATABASE_URL, etc.
	v.SetEnvPrefix("DAYPLAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
