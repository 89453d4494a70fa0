package mailer

import (
	"context"
	"errors"
	"sync"
	"time"

	"festive/internal/domain/inquiry"

	"go.uber.org/zap"
)

// Throttled lets one message per sender phone number through every
// interval, the same limit the browser SDK applied per visitor.
type Throttled struct {
	next     Client
	interval time.Duration
	now      func() time.Time

	mu   sync.Mutex
	last map[string]time.Time
}

func NewThrottled(next Client, interval time.Duration) *Throttled {
	return &Throttled{
		next:     next,
		interval: interval,
		now:      time.Now,
		last:     make(map[string]time.Time),
	}
}

func (t *Throttled) Send(ctx context.Context, q inquiry.Inquiry) (int, error) {
	key := inquiry.NormalizePhone(q.Phone)
	now := t.now()

	t.mu.Lock()
	for k, at := range t.last {
		if now.Sub(at) >= t.interval {
			delete(t.last, k)
		}
	}
	if _, busy := t.last[key]; busy {
		t.mu.Unlock()
		return 429, ErrThrottled
	}
	t.last[key] = now
	t.mu.Unlock()

	return t.next.Send(ctx, q)
}

// Fallback sends through primary and, if that fails for any reason other
// than bad form data, through secondary.
type Fallback struct {
	primary   Client
	secondary Client
	logger    *zap.SugaredLogger
}

func NewFallback(primary, secondary Client, logger *zap.SugaredLogger) *Fallback {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Fallback{primary: primary, secondary: secondary, logger: logger}
}

func (f *Fallback) Send(ctx context.Context, q inquiry.Inquiry) (int, error) {
	status, err := f.primary.Send(ctx, q)
	if err == nil || errors.Is(err, ErrInvalidForm) || ctx.Err() != nil {
		return status, err
	}
	f.logger.Warnw("primary mailer failed, trying secondary", "status", status, "error", err)

	status2, err2 := f.secondary.Send(ctx, q)
	if err2 != nil {
		return status, errors.Join(err, err2)
	}
	return status2, nil
}
