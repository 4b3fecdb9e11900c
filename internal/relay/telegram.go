package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"seotooler/internal/config"
	"seotooler/internal/constants"
	"seotooler/internal/logger"
	"seotooler/pkg/circuitbreaker"
	"seotooler/pkg/metrics"
	"seotooler/pkg/tracing"
)

// Relay delivers a formatted notification. Send reports success as a bool
// and never returns an error or panics past this boundary.
type Relay interface {
	Send(ctx context.Context, text string) bool
}

const relayName = "telegram"

var errNotConfigured = errors.New("relay credentials are not configured")

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
	ErrorCode   int    `json:"error_code,omitempty"`
}

// TelegramRelay posts to the Bot API sendMessage method. Each Send is a
// single attempt.
type TelegramRelay struct {
	client    *http.Client
	baseURL   string
	token     string
	chatID    string
	parseMode string
	pacer     *rate.Limiter
	breaker   *circuitbreaker.Wrapper
	logger    logger.Logger
}

type Option func(*TelegramRelay)

func WithHTTPClient(client *http.Client) Option {
	return func(r *TelegramRelay) { r.client = client }
}

func WithLogger(log logger.Logger) Option {
	return func(r *TelegramRelay) { r.logger = log }
}

func NewTelegramRelay(cfg config.RelayConfig, opts ...Option) *TelegramRelay {
	r := &TelegramRelay{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: tracing.NewTransport(nil),
		},
		baseURL:   strings.TrimRight(cfg.APIBaseURL, "/"),
		token:     cfg.BotToken,
		chatID:    cfg.ChatID,
		parseMode: cfg.ParseMode,
		logger:    logger.NopLogger(),
	}
	if r.baseURL == "" {
		r.baseURL = constants.DefaultTelegramAPIBaseURL
	}
	if r.parseMode == "" {
		r.parseMode = constants.DefaultParseMode
	}

	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		r.pacer = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	if cfg.CircuitBreaker.Enabled {
		cbCfg := circuitbreaker.DefaultConfig(relayName + "-relay")
		if cfg.CircuitBreaker.MaxRequests > 0 {
			cbCfg.MaxRequests = cfg.CircuitBreaker.MaxRequests
		}
		if cfg.CircuitBreaker.Interval > 0 {
			cbCfg.Interval = cfg.CircuitBreaker.Interval
		}
		if cfg.CircuitBreaker.Timeout > 0 {
			cbCfg.Timeout = cfg.CircuitBreaker.Timeout
		}
		if cfg.CircuitBreaker.FailureRatio > 0 {
			cbCfg.FailureRatio = cfg.CircuitBreaker.FailureRatio
		}
		if cfg.CircuitBreaker.MinRequests > 0 {
			cbCfg.MinRequests = cfg.CircuitBreaker.MinRequests
		}
		cbCfg.OnStateChange = func(name string, from, to gobreaker.State) {
			r.logger.Warnw("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		}
		r.breaker = circuitbreaker.NewWrapper(cbCfg)
	}

	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *TelegramRelay) Send(ctx context.Context, text string) (ok bool) {
	start := time.Now()
	status := "error"
	var err error

	ctx, span := tracing.StartRelaySpan(ctx, relayName)
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.ErrorwCtx(ctx, "Relay panicked", "panic", fmt.Sprint(rec))
			ok = false
			status = "error"
			err = fmt.Errorf("relay panicked: %v", rec)
		}
		metrics.ObserveRelay(time.Since(start), status)
		tracing.EndRelaySpan(span, status, err)
	}()

	if r.token == "" || r.chatID == "" {
		err = errNotConfigured
		r.logger.ErrorwCtx(ctx, "Failed to relay message", "error", err)
		status = "not_configured"
		return false
	}

	if r.pacer != nil {
		if err = r.pacer.Wait(ctx); err != nil {
			r.logger.WarnwCtx(ctx, "Relay pacing wait aborted", "error", err)
			return false
		}
	}

	if r.breaker != nil {
		_, err = r.breaker.Execute(ctx, func() (interface{}, error) {
			return nil, r.post(ctx, text)
		})
	} else {
		err = r.post(ctx, text)
	}

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			status = "circuit_open"
		}
		r.logger.ErrorwCtx(ctx, "Failed to relay message", "error", err)
		return false
	}

	status = "success"
	r.logger.InfowCtx(ctx, "Message relayed")
	return true
}

func (r *TelegramRelay) post(ctx context.Context, text string) error {
	payload, err := json.Marshal(sendMessageRequest{
		ChatID:    r.chatID,
		Text:      text,
		ParseMode: r.parseMode,
	})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", r.baseURL, r.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("relay request failed: %w", redactToken(err, r.token))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var result sendMessageResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}
	if !result.OK || resp.StatusCode < constants.HTTPStatusOKMin || resp.StatusCode >= constants.HTTPStatusOKMax {
		return fmt.Errorf("relay rejected message (status %d): %s", resp.StatusCode, result.Description)
	}
	return nil
}

// redactToken keeps the bot token out of logged URL errors.
func redactToken(err error, token string) error {
	if token == "" || !strings.Contains(err.Error(), token) {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), token, "<redacted>"))
}
