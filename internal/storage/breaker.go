package storage

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sony/gobreaker/v2"
)

// Breaker fails fast once the wrapped store keeps failing, so a dead remote
// backend does not stall every cart mutation on its dial timeout.
type Breaker struct {
	next Store
	cb   *gobreaker.CircuitBreaker[[]byte]
}

type BreakerSettings struct {
	Name          string
	MaxFailures   uint32
	OpenTimeout   time.Duration
	OnStateChange func(name string, from, to gobreaker.State)
}

func NewBreaker(next Store, s BreakerSettings) *Breaker {
	if s.MaxFailures == 0 {
		s.MaxFailures = 5
	}
	if s.OpenTimeout == 0 {
		s.OpenTimeout = 30 * time.Second
	}
	maxFailures := s.MaxFailures
	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    s.Name,
		Timeout: s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		// a missing key is an answer, not a backend failure
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: s.OnStateChange,
	})
	return &Breaker{next: next, cb: cb}
}

func (b *Breaker) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := b.cb.Execute(func() ([]byte, error) {
		return b.next.Get(ctx, key)
	})
	return v, wrapBreakerErr(err)
}

func (b *Breaker) Set(ctx context.Context, key string, value []byte) error {
	_, err := b.cb.Execute(func() ([]byte, error) {
		return nil, b.next.Set(ctx, key, value)
	})
	return wrapBreakerErr(err)
}

func (b *Breaker) Delete(ctx context.Context, key string) error {
	_, err := b.cb.Execute(func() ([]byte, error) {
		return nil, b.next.Delete(ctx, key)
	})
	return wrapBreakerErr(err)
}

func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

func wrapBreakerErr(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return pkgerrors.Wrap(err, "storage unavailable")
	}
	return err
}
