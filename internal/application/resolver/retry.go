package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crypto-valuation-service/internal/domain/entities"
	"crypto-valuation-service/internal/infrastructure/config"

	"github.com/avast/retry-go/v4"
)

const (
	DefaultMaxAttempts = 3
	MaxAttemptsCeiling = config.MaxRetryAttempts
)

// Policy is a bounded fixed-delay retry
type Policy struct {
	MaxAttempts   int
	MinTimeout    time.Duration
	RetryUnusable bool
}

// NoRetry runs the operation exactly once
func NoRetry() Policy {
	return Policy{MaxAttempts: 1}
}

// PolicyFromConfig converts a configured retry block
func PolicyFromConfig(cfg config.RetryConfig) Policy {
	return Policy{
		MaxAttempts:   cfg.MaxAttempts,
		MinTimeout:    cfg.MinTimeout,
		RetryUnusable: cfg.RetryUnusable,
	}
}

// Attempts returns the effective number of invocations, never unbounded
func (p Policy) Attempts() uint {
	switch {
	case p.MaxAttempts <= 0:
		return DefaultMaxAttempts
	case p.MaxAttempts > MaxAttemptsCeiling:
		return MaxAttemptsCeiling
	default:
		return uint(p.MaxAttempts)
	}
}

// Hooks customize one Do call
type Hooks[T any] struct {
	// Validate turns a successful result into a retryable failure
	Validate func(T) error
	// BeforeRetry runs right before every attempt after the first
	BeforeRetry func(attempt uint)
	// OnRetry runs after a failed attempt that will be retried
	OnRetry func(attempt uint, err error)
}

// Do invokes op until it succeeds or the policy is exhausted. On exhaustion
// it returns the last value op produced without error (if any) and the final error.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error), hooks Hooks[T]) (T, error) {
	var (
		last    T
		attempt uint
	)
	attempts := p.Attempts()

	value, err := retry.DoWithData(
		func() (T, error) {
			attempt++
			if attempt > 1 && hooks.BeforeRetry != nil {
				hooks.BeforeRetry(attempt)
			}

			v, err := op(ctx)
			if err != nil {
				return v, err
			}
			last = v

			if hooks.Validate != nil {
				if verr := hooks.Validate(v); verr != nil {
					return v, verr
				}
			}
			return v, nil
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(p.MinTimeout),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return ctx.Err() == nil && IsRetryable(err)
		}),
		retry.OnRetry(func(n uint, err error) {
			// retry-go también avisa tras el último intento
			if n+1 >= attempts || hooks.OnRetry == nil {
				return
			}
			hooks.OnRetry(n+1, err)
		}),
	)
	if err != nil {
		return last, err
	}
	return value, nil
}

// DoQuote is Do for quotes; with RetryUnusable an unusable price is retried as ErrUnusablePrice
func DoQuote(ctx context.Context, p Policy, op func(context.Context) (*entities.Quote, error), hooks Hooks[*entities.Quote]) (*entities.Quote, error) {
	if p.RetryUnusable && hooks.Validate == nil {
		hooks.Validate = validateUsable
	}
	return Do(ctx, p, op, hooks)
}

// IsRetryable reports whether a failed attempt may be retried. A request
// timeout is retryable; a cancelled caller is handled by Do itself.
// HTTP answers other than 429 and 5xx will not change on a second try.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, entities.ErrUnsupportedNumerator) {
		return false
	}
	var transport *entities.TransportError
	if errors.As(err, &transport) {
		return transport.Temporary()
	}
	return true
}

func validateUsable(q *entities.Quote) error {
	if q.Usable() {
		return nil
	}
	price := 0.0
	if q != nil {
		price = q.Price
	}
	return fmt.Errorf("%w: got %v", entities.ErrUnusablePrice, price)
}
