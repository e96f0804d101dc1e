// Package notifier provides the non-WhatsApp notifier backends and the
// rate-limiting decorator.
package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/runoshun/whatstask/internal/domain"
	"github.com/runoshun/whatstask/internal/infra/ratelimit"
)

// Errors returned by notifiers in this package.
var (
	ErrNoChannel   = errors.New("no notification channel configured")
	ErrRateLimited = errors.New("recipient rate limit exceeded")
)

// Log records notifications in the operational log instead of sending them.
type Log struct {
	logger domain.Logger
	render func(domain.Notification) string
}

// NewLog creates a Log notifier. render formats the message body.
func NewLog(logger domain.Logger, render func(domain.Notification) string) *Log {
	return &Log{logger: logger, render: render}
}

// Send writes the rendered message to the task log.
func (l *Log) Send(_ context.Context, phone string, n domain.Notification) error {
	body := string(n.UpdateType)
	if l.render != nil {
		body = l.render(n)
	}
	l.logger.Info(n.TaskID, "notify", fmt.Sprintf("to %s (%s): %s", domain.NormalizePhone(phone), n.UpdateType, body))
	return nil
}

// Nop fails every send, so each delivery is recorded as notification_failed.
type Nop struct{}

// Send returns ErrNoChannel.
func (Nop) Send(context.Context, string, domain.Notification) error {
	return ErrNoChannel
}

// RateLimited drops sends that exceed the per-recipient limit.
type RateLimited struct {
	next    domain.Notifier
	limiter ratelimit.Limiter
}

// NewRateLimited wraps next. A nil limiter returns next unchanged.
func NewRateLimited(next domain.Notifier, limiter ratelimit.Limiter) domain.Notifier {
	if limiter == nil {
		return next
	}
	return &RateLimited{next: next, limiter: limiter}
}

// Send forwards to the wrapped notifier when the recipient has budget left.
func (r *RateLimited) Send(ctx context.Context, phone string, n domain.Notification) error {
	ok, err := r.limiter.Allow(ctx, domain.NormalizePhone(phone))
	if err != nil {
		return fmt.Errorf("rate limit check: %w", err)
	}
	if !ok {
		return ErrRateLimited
	}
	return r.next.Send(ctx, phone, n)
}

var (
	_ domain.Notifier = (*Log)(nil)
	_ domain.Notifier = Nop{}
	_ domain.Notifier = (*RateLimited)(nil)
)
