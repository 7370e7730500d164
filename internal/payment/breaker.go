package payment

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrBreakerOpen = errors.New("payment provider circuit open")

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

// Breaker is a small circuit breaker for provider calls: after
// maxConsecutive failures it rejects calls for cooldown, then lets a single
// probe through.
type Breaker struct {
	maxConsecutive int
	cooldown       time.Duration

	mu       sync.Mutex
	state    breakerState
	failures int
	openedAt time.Time
}

func NewBreaker(maxConsecutive int, cooldown time.Duration) *Breaker {
	return &Breaker{
		maxConsecutive: maxConsecutive,
		cooldown:       cooldown,
		state:          breakerClosed,
	}
}

func (b *Breaker) allow(now time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == breakerOpen {
		if now.Sub(b.openedAt) < b.cooldown {
			return ErrBreakerOpen
		}
		b.state = breakerHalfOpen
	}
	return nil
}

func (b *Breaker) record(success bool, now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if success {
		b.state = breakerClosed
		b.failures = 0
		return
	}

	b.failures++
	if b.state == breakerHalfOpen || b.failures >= b.maxConsecutive {
		b.state = breakerOpen
		b.openedAt = now
	}
}

// Do runs fn under the breaker.
func (b *Breaker) Do(fn func() error) error {
	if err := b.allow(time.Now()); err != nil {
		return err
	}
	err := fn()
	b.record(err == nil, time.Now())
	return err
}

// BreakerProvider wraps a Provider with the breaker and a bounded per-call
// timeout.
type BreakerProvider struct {
	inner   Provider
	breaker *Breaker
	timeout time.Duration
}

func NewBreakerProvider(inner Provider, breaker *Breaker, timeout time.Duration) *BreakerProvider {
	return &BreakerProvider{
		inner:   inner,
		breaker: breaker,
		timeout: timeout,
	}
}

func (p *BreakerProvider) Refund(ctx context.Context, reference string, amount float64, currency string) error {
	return p.breaker.Do(func() error {
		ctx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()
		return p.inner.Refund(ctx, reference, amount, currency)
	})
}
