package constants

import "time"

const (
	ServiceName = "contact-service"
)

const (
	DefaultPort         = 8080
	DefaultReadTimeout  = 15 * time.Second
	DefaultWriteTimeout = 30 * time.Second
	DefaultContactPath  = "/api/contact"
	DefaultMaxBodyBytes = 64 << 10
)

const (
	DefaultHTTPTimeout = 10 * time.Second
)

const (
	DefaultMaxRequests = 3
	DefaultWindow      = time.Hour
)

const (
	CacheKeyPrefixRateLimit = "contact:ratelimit:"
)

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

const (
	FallbackAllow = "allow"
	FallbackDeny  = "deny"
)

const (
	HeaderForwardedFor = "X-Forwarded-For"
	HeaderClientIP     = "Client-Ip"
	UnknownIdentity    = "unknown"
	MaxIdentityLength  = 256
)

var DefaultIdentityHeaders = []string{HeaderForwardedFor, HeaderClientIP}

const (
	MaxFieldLength        = 1000
	MaxNotificationLength = 4096
)

const (
	DefaultTelegramAPIBaseURL = "https://api.telegram.org"
	DefaultParseMode          = "HTML"
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	HTTPStatusOKMin = 200
	HTTPStatusOKMax = 300
)
