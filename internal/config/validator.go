package config

import (
	"fmt"
	"net/url"
	"strings"

	"seotooler/internal/constants"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateStatic(cfg *Config) error {
	var errors []error

	if err := validateServer(cfg.Server); err != nil {
		errors = append(errors, err)
	}

	if err := validateRateLimit(cfg.RateLimit); err != nil {
		errors = append(errors, err)
	}

	if cfg.RateLimit.Store == constants.StoreRedis {
		if err := validateRedis(cfg.Redis); err != nil {
			errors = append(errors, err)
		}
	}

	if err := validateRelay(cfg.Relay); err != nil {
		errors = append(errors, err)
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}

func validateServer(cfg ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.ReadTimeout <= 0 {
		return &ValidationError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		}
	}

	if cfg.WriteTimeout <= 0 {
		return &ValidationError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		}
	}

	if !strings.HasPrefix(cfg.ContactPath, "/") {
		return &ValidationError{
			Field:   "server.contact_path",
			Message: fmt.Sprintf("contact path must start with '/', got %q", cfg.ContactPath),
		}
	}

	if cfg.MaxBodyBytes <= 0 {
		return &ValidationError{
			Field:   "server.max_body_bytes",
			Message: "max body size must be positive",
		}
	}

	return nil
}

func validateRateLimit(cfg RateLimitConfig) error {
	if cfg.MaxRequests < 1 {
		return &ValidationError{
			Field:   "rate_limit.max_requests",
			Message: fmt.Sprintf("max_requests must be at least 1, got %d", cfg.MaxRequests),
		}
	}

	if cfg.Window <= 0 {
		return &ValidationError{
			Field:   "rate_limit.window",
			Message: "window must be positive",
		}
	}

	switch cfg.Store {
	case constants.StoreMemory, constants.StoreRedis:
	default:
		return &ValidationError{
			Field:   "rate_limit.store",
			Message: fmt.Sprintf("unknown store: %s (supported: memory, redis)", cfg.Store),
		}
	}

	switch cfg.OnStoreError {
	case constants.FallbackAllow, constants.FallbackDeny:
	default:
		return &ValidationError{
			Field:   "rate_limit.on_store_error",
			Message: fmt.Sprintf("invalid on_store_error value: %s (valid: allow, deny)", cfg.OnStoreError),
		}
	}

	return nil
}

func validateRedis(cfg RedisConfig) error {
	if cfg.Host == "" {
		return &ValidationError{
			Field:   "redis.host",
			Message: "Redis host is required when rate_limit.store is redis",
		}
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "redis.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	return nil
}

// validateRelay ignores missing credentials: an unconfigured relay is a
// valid state that fails each submission closed.
func validateRelay(cfg RelayConfig) error {
	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &ValidationError{
			Field:   "relay.api_base_url",
			Message: fmt.Sprintf("api base url must be an absolute URL, got %q", cfg.APIBaseURL),
		}
	}

	if cfg.Timeout < 0 {
		return &ValidationError{
			Field:   "relay.timeout",
			Message: "timeout must be non-negative",
		}
	}

	if cfg.RatePerSecond < 0 {
		return &ValidationError{
			Field:   "relay.rate_per_second",
			Message: "rate_per_second must be non-negative",
		}
	}

	if cfg.RatePerSecond > 0 && cfg.Burst < 1 {
		return &ValidationError{
			Field:   "relay.burst",
			Message: "burst must be at least 1 when rate_per_second is set",
		}
	}

	cb := cfg.CircuitBreaker
	if cb.Enabled && (cb.FailureRatio <= 0 || cb.FailureRatio > 1) {
		return &ValidationError{
			Field:   "relay.circuit_breaker.failure_ratio",
			Message: fmt.Sprintf("failure_ratio must be in (0, 1], got %v", cb.FailureRatio),
		}
	}

	return nil
}
