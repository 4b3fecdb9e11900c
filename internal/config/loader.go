package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"seotooler/internal/constants"
)

// LoadConfig reads configFile (optional) and layers environment variables
// on top. Every key has a default, so an empty configFile is valid.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	bindEnvVariables(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(v, &cfg)

	if err := ValidateStatic(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", constants.DefaultPort)
	v.SetDefault("server.read_timeout", constants.DefaultReadTimeout)
	v.SetDefault("server.write_timeout", constants.DefaultWriteTimeout)
	v.SetDefault("server.contact_path", constants.DefaultContactPath)
	v.SetDefault("server.max_body_bytes", constants.DefaultMaxBodyBytes)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("rate_limit.max_requests", constants.DefaultMaxRequests)
	v.SetDefault("rate_limit.window", constants.DefaultWindow)
	v.SetDefault("rate_limit.store", constants.StoreMemory)
	v.SetDefault("rate_limit.key_prefix", constants.CacheKeyPrefixRateLimit)
	v.SetDefault("rate_limit.identity_headers", constants.DefaultIdentityHeaders)
	v.SetDefault("rate_limit.on_store_error", constants.FallbackAllow)

	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("relay.api_base_url", constants.DefaultTelegramAPIBaseURL)
	v.SetDefault("relay.bot_token", "")
	v.SetDefault("relay.chat_id", "")
	v.SetDefault("relay.parse_mode", constants.DefaultParseMode)
	v.SetDefault("relay.timeout", constants.DefaultHTTPTimeout)
	v.SetDefault("relay.rate_per_second", 0)
	v.SetDefault("relay.burst", 1)
	v.SetDefault("relay.circuit_breaker.enabled", false)
	v.SetDefault("relay.circuit_breaker.max_requests", 1)
	v.SetDefault("relay.circuit_breaker.interval", "60s")
	v.SetDefault("relay.circuit_breaker.timeout", "30s")
	v.SetDefault("relay.circuit_breaker.failure_ratio", 0.5)
	v.SetDefault("relay.circuit_breaker.min_requests", 3)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", constants.ServiceName)
	v.SetDefault("tracing.sampler.type", "always_on")
}

func bindEnvVariables(v *viper.Viper) {
	v.BindEnv("relay.bot_token", "TELEGRAM_BOT_TOKEN", "RELAY_BOT_TOKEN")
	v.BindEnv("relay.chat_id", "TELEGRAM_CHAT_ID", "RELAY_CHAT_ID")
	v.BindEnv("relay.api_base_url", "RELAY_API_BASE_URL")

	v.BindEnv("rate_limit.max_requests", "RATE_LIMIT_MAX_REQUESTS")
	v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	v.BindEnv("rate_limit.store", "RATE_LIMIT_STORE")
	v.BindEnv("rate_limit.on_store_error", "RATE_LIMIT_ON_STORE_ERROR")

	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")

	v.BindEnv("server.port", "SERVER_PORT", "PORT")
	v.BindEnv("server.contact_path", "SERVER_CONTACT_PATH")

	v.BindEnv("logging.level", "LOGGING_LEVEL", "LOG_LEVEL")
	v.BindEnv("logging.format", "LOGGING_FORMAT", "LOG_FORMAT")

	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.service_name", "TRACING_SERVICE_NAME")
	v.BindEnv("tracing.otlp.endpoint", "TRACING_OTLP_ENDPOINT")
	v.BindEnv("tracing.otlp.insecure", "TRACING_OTLP_INSECURE")
}

func applyEnvOverrides(v *viper.Viper, cfg *Config) {
	// A comma-separated env value arrives as a single element.
	if headersEnv := v.GetString("RATE_LIMIT_IDENTITY_HEADERS"); headersEnv != "" {
		headers := strings.Split(headersEnv, ",")
		out := make([]string, 0, len(headers))
		for _, h := range headers {
			if h = strings.TrimSpace(h); h != "" {
				out = append(out, h)
			}
		}
		if len(out) > 0 {
			cfg.RateLimit.IdentityHeaders = out
		}
	}

	cfg.Relay.BotToken = strings.TrimSpace(cfg.Relay.BotToken)
	cfg.Relay.ChatID = strings.TrimSpace(cfg.Relay.ChatID)
	cfg.RateLimit.Store = strings.ToLower(strings.TrimSpace(cfg.RateLimit.Store))
	cfg.RateLimit.OnStoreError = strings.ToLower(strings.TrimSpace(cfg.RateLimit.OnStoreError))
}
