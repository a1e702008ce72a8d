package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"loan-marketplace/internal/infrastructure/monitoring"
	"loan-marketplace/internal/pkg/apperrors"
)

type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

var DefaultRetryConfig = RetryConfig{
	MaxRetries: 2,
	BaseDelay:  500 * time.Millisecond,
	MaxDelay:   4 * time.Second,
}

// Chain tries providers in order, retrying transient failures on each with
// exponential backoff. When every provider is exhausted, or the overall
// deadline passes, it returns a fallback result instead of an error.
type Chain struct {
	providers       []Provider
	retry           RetryConfig
	callTimeout     time.Duration
	overallDeadline time.Duration
	logger          *slog.Logger
}

func NewChain(providers []Provider, retry RetryConfig, callTimeout, overallDeadline time.Duration, logger *slog.Logger) *Chain {
	return &Chain{
		providers:       providers,
		retry:           retry,
		callTimeout:     callTimeout,
		overallDeadline: overallDeadline,
		logger:          logger.With("component", "ExtractionChain"),
	}
}

func (c *Chain) Extract(ctx context.Context, req Request) Result {
	if c.overallDeadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.overallDeadline)
		defer cancel()
	}

	attempts := 0
	var lastErr error = ErrNoProviders

	for _, p := range c.providers {
		res, n, err := c.tryProvider(ctx, p, req)
		attempts += n
		if err == nil {
			res.Attempts = attempts
			c.logger.InfoContext(ctx, "Document extracted",
				"provider", p.ID(), "category", req.Category, "attempts", attempts, "confidence", res.Confidence)
			return res
		}
		lastErr = err
		c.logger.WarnContext(ctx, "Provider exhausted, trying next",
			"provider", p.ID(), "category", req.Category, "error", err)

		if ctx.Err() != nil {
			lastErr = fmt.Errorf("extraction deadline passed: %w", ctx.Err())
			break
		}
	}

	monitoring.RecordExtractionFallback(req.Category)
	c.logger.WarnContext(ctx, "All providers failed, recording fallback for manual review",
		"category", req.Category, "attempts", attempts, "error", lastErr)
	return FallbackResult(attempts, fmt.Errorf("%w: %w", apperrors.ErrProviderExhausted, lastErr))
}

func (c *Chain) tryProvider(ctx context.Context, p Provider, req Request) (Result, int, error) {
	attempts := 0
	operation := func() (Result, error) {
		attempts++
		res, err := c.call(ctx, p, req)
		if err == nil {
			monitoring.RecordExtractionAttempt(p.ID(), "success")
			return res, nil
		}
		monitoring.RecordExtractionAttempt(p.ID(), string(GetCategory(err)))
		if !IsRetryable(err) {
			return Result{}, backoff.Permanent(err)
		}
		return Result{}, err
	}

	res, err := backoff.RetryWithData(operation, backoff.WithContext(c.retryPolicy(), ctx))
	if err != nil && ctx.Err() != nil {
		return Result{}, attempts, fmt.Errorf("provider %s cancelled after %d attempts: %w", p.ID(), attempts, ctx.Err())
	}
	return res, attempts, err
}

// retryPolicy doubles the wait from BaseDelay up to MaxDelay, without jitter,
// for at most MaxRetries retries.
func (c *Chain) retryPolicy() backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retry.BaseDelay
	policy.Multiplier = 2
	policy.RandomizationFactor = 0
	policy.MaxElapsedTime = 0
	if c.retry.MaxDelay > 0 {
		policy.MaxInterval = c.retry.MaxDelay
	}
	policy.Reset()

	maxRetries := c.retry.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	return backoff.WithMaxRetries(policy, uint64(maxRetries))
}

func (c *Chain) call(ctx context.Context, p Provider, req Request) (Result, error) {
	if c.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
	}
	return p.Extract(ctx, req)
}

// FallbackResult is substituted when no provider produced a usable reading.
func FallbackResult(attempts int, cause error) Result {
	return Result{
		Fields:     map[string]any{},
		Confidence: FallbackConfidence,
		Provider:   "fallback",
		Fallback:   true,
		Attempts:   attempts,
		Cause:      cause,
	}
}
