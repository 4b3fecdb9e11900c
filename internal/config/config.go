package config

import (
	"time"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Relay     RelayConfig     `mapstructure:"relay"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	ContactPath  string        `mapstructure:"contact_path"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RateLimitConfig struct {
	MaxRequests     int           `mapstructure:"max_requests"`
	Window          time.Duration `mapstructure:"window"`
	Store           string        `mapstructure:"store"` // "memory" or "redis"
	KeyPrefix       string        `mapstructure:"key_prefix"`
	IdentityHeaders []string      `mapstructure:"identity_headers"`
	OnStoreError    string        `mapstructure:"on_store_error"` // "allow" or "deny"
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type RelayConfig struct {
	APIBaseURL     string               `mapstructure:"api_base_url"`
	BotToken       string               `mapstructure:"bot_token"`
	ChatID         string               `mapstructure:"chat_id"`
	ParseMode      string               `mapstructure:"parse_mode"`
	Timeout        time.Duration        `mapstructure:"timeout"`
	RatePerSecond  float64              `mapstructure:"rate_per_second"`
	Burst          int                  `mapstructure:"burst"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// Configured reports whether both relay credentials are present.
func (c RelayConfig) Configured() bool {
	return c.BotToken != "" && c.ChatID != ""
}

type CircuitBreakerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
	MinRequests  uint32        `mapstructure:"min_requests"`
}

type TracingConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	ServiceName string        `mapstructure:"service_name"`
	OTLP        OTLPConfig    `mapstructure:"otlp"`
	Sampler     SamplerConfig `mapstructure:"sampler"`
}

type OTLPConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
}

type SamplerConfig struct {
	Type  string  `mapstructure:"type"`
	Param float64 `mapstructure:"param"`
}

func Load(configFile string) (*Config, error) {
	return LoadConfig(configFile)
}
