// Package jobs runs the gateway's background work.
package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/loganlanou/campusconnect/internal/email"
)

const (
	DefaultQueueSize = 64
	DefaultAttempts  = 3
	DefaultBackoff   = 2 * time.Second
)

var ErrQueueFull = errors.New("mail queue is full")

// Sender is what the mailer hands each email to
type Sender interface {
	Send(ctx context.Context, e *email.Email) error
}

// Mailer sends email off the request path. Failed sends are retried with a
// doubling backoff; an email that still fails is logged and dropped.
type Mailer struct {
	sender   Sender
	queue    chan *email.Email
	attempts int
	backoff  time.Duration

	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
	cancel  context.CancelFunc
}

type MailerOption func(*Mailer)

func WithRetry(attempts int, backoff time.Duration) MailerOption {
	return func(m *Mailer) {
		if attempts > 0 {
			m.attempts = attempts
		}
		if backoff > 0 {
			m.backoff = backoff
		}
	}
}

func WithQueueSize(n int) MailerOption {
	return func(m *Mailer) {
		if n > 0 {
			m.queue = make(chan *email.Email, n)
		}
	}
}

func NewMailer(sender Sender, opts ...MailerOption) *Mailer {
	m := &Mailer{
		sender:   sender,
		queue:    make(chan *email.Email, DefaultQueueSize),
		attempts: DefaultAttempts,
		backoff:  DefaultBackoff,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start begins sending queued email until Stop is called or ctx ends
func (m *Mailer) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)
	slog.Info("starting mailer", "queue", cap(m.queue), "attempts", m.attempts)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		for e := range m.queue {
			m.deliver(ctx, e)
		}
		slog.Info("mailer stopped")
	}()
}

// Enqueue queues e without blocking
func (m *Mailer) Enqueue(e *email.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return errors.New("mailer is stopped")
	}
	select {
	case m.queue <- e:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop closes the queue and waits for queued email to drain. When ctx ends
// first, pending retries are abandoned.
func (m *Mailer) Stop(ctx context.Context) error {
	m.mu.Lock()
	if !m.stopped {
		m.stopped = true
		close(m.queue)
	}
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		if m.cancel != nil {
			m.cancel()
		}
		<-done
		return ctx.Err()
	}
}

func (m *Mailer) deliver(ctx context.Context, e *email.Email) {
	wait := m.backoff
	for attempt := 1; ; attempt++ {
		err := m.sender.Send(ctx, e)
		if err == nil {
			return
		}
		if attempt >= m.attempts || errors.Is(err, email.ErrNotConfigured) {
			slog.Error("giving up on email", "to", e.To, "subject", e.Subject, "attempts", attempt, "error", err)
			return
		}
		slog.Warn("email send failed, retrying", "to", e.To, "attempt", attempt, "retry_in", wait, "error", err)

		select {
		case <-time.After(wait):
			wait *= 2
		case <-ctx.Done():
			slog.Warn("dropping email on shutdown", "to", e.To, "subject", e.Subject)
			return
		}
	}
}
