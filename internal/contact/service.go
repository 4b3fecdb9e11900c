package contact

import (
	"context"
	"time"

	"seotooler/internal/logger"
	"seotooler/internal/relay"
	"seotooler/internal/submission"
	apperrors "seotooler/pkg/errors"
	"seotooler/pkg/metrics"
)

// Service turns an admitted submission into a relayed notification.
type Service struct {
	relay  relay.Relay
	logger logger.Logger
	now    func() time.Time
}

type ServiceOption func(*Service)

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

func NewService(r relay.Relay, log logger.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		relay:  r,
		logger: log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Deliver validates the raw fields, then sanitizes, formats and relays
// them in a single attempt. Returned errors are *apperrors.Error values
// ready for the HTTP boundary.
func (s *Service) Deliver(ctx context.Context, fields submission.Fields, identity, userAgent string) error {
	if err := submission.Validate(fields); err != nil {
		metrics.IncSubmission("invalid")
		s.logger.InfowCtx(ctx, "Submission rejected", "reason", err.Error())
		return err
	}

	sub := submission.New(fields, identity, userAgent, s.now())

	if !s.relay.Send(ctx, submission.Format(sub)) {
		metrics.IncSubmission("relay_failed")
		return apperrors.ErrRelayUnavailable
	}

	metrics.IncSubmission("sent")
	s.logger.InfowCtx(ctx, "Submission relayed", "subject", sub.Subject)
	return nil
}
