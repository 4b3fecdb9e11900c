package ratelimit

import (
	"context"
	"time"

	"seotooler/internal/constants"
	"seotooler/internal/logger"
	"seotooler/pkg/metrics"
)

type Config struct {
	MaxRequests  int
	Window       time.Duration
	OnStoreError string
}

func DefaultConfig() Config {
	return Config{
		MaxRequests:  constants.DefaultMaxRequests,
		Window:       constants.DefaultWindow,
		OnStoreError: constants.FallbackAllow,
	}
}

// Decision is the outcome of one quota check. RetryAfter is only set on
// rejections.
type Decision struct {
	Allowed    bool
	Remaining  int
	Limit      int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Limiter enforces a fixed-window quota per identity.
type Limiter struct {
	store  Store
	cfg    Config
	now    func() time.Time
	logger logger.Logger
}

type Option func(*Limiter)

func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

func WithLogger(log logger.Logger) Option {
	return func(l *Limiter) { l.logger = log }
}

func NewLimiter(store Store, cfg Config, opts ...Option) *Limiter {
	def := DefaultConfig()
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = def.MaxRequests
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.OnStoreError == "" {
		cfg.OnStoreError = def.OnStoreError
	}

	l := &Limiter{
		store:  store,
		cfg:    cfg,
		now:    time.Now,
		logger: logger.NopLogger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Limiter) MaxRequests() int { return l.cfg.MaxRequests }
func (l *Limiter) Window() time.Duration { return l.cfg.Window }

// CheckAndConsume admits or rejects one request for identity and records it.
// A rejected request does not touch the stored count.
func (l *Limiter) CheckAndConsume(ctx context.Context, identity string) Decision {
	now := l.now()

	removed, err := l.store.Sweep(ctx, now, l.cfg.Window)
	if err != nil {
		metrics.IncRateLimitStoreError("sweep")
		l.logger.WarnwCtx(ctx, "Rate limit sweep failed", "error", err)
	}
	metrics.AddSweptRecords(removed)

	rec, found, err := l.store.Get(ctx, identity)
	if err != nil {
		metrics.IncRateLimitStoreError("get")
		return l.fallback(ctx, now, err)
	}

	var dec Decision
	switch {
	case !found || rec.Expired(now, l.cfg.Window):
		rec = Record{Count: 1, WindowStart: now}
		dec = Decision{Allowed: true, Remaining: l.cfg.MaxRequests - 1}
	case rec.Count < l.cfg.MaxRequests:
		rec.Count++
		dec = Decision{Allowed: true, Remaining: l.cfg.MaxRequests - rec.Count}
	default:
		dec = Decision{Allowed: false, Remaining: 0}
	}
	dec.Limit = l.cfg.MaxRequests
	dec.ResetAt = rec.WindowStart.Add(l.cfg.Window)
	if !dec.Allowed {
		dec.RetryAfter = dec.ResetAt.Sub(now)
	}

	if dec.Allowed {
		if err := l.store.Set(ctx, identity, rec); err != nil {
			metrics.IncRateLimitStoreError("set")
			return l.fallback(ctx, now, err)
		}
	}

	metrics.IncRateLimitDecision(dec.Allowed)
	return dec
}

func (l *Limiter) fallback(ctx context.Context, now time.Time, err error) Decision {
	dec := Decision{
		Limit:   l.cfg.MaxRequests,
		ResetAt: now.Add(l.cfg.Window),
	}

	if l.cfg.OnStoreError == constants.FallbackDeny {
		metrics.IncFallbackUsage("ratelimit", "deny_on_error")
		l.logger.ErrorwCtx(ctx, "Rate limit store error, rejecting request (fallback: deny)", "error", err)
		dec.RetryAfter = l.cfg.Window
		metrics.IncRateLimitDecision(false)
		return dec
	}

	metrics.IncFallbackUsage("ratelimit", "allow_on_error")
	l.logger.WarnwCtx(ctx, "Rate limit store error, allowing request (fallback: allow)", "error", err)
	dec.Allowed = true
	dec.Remaining = l.cfg.MaxRequests - 1
	metrics.IncRateLimitDecision(true)
	return dec
}
